package graph

import (
	"testing"
)

func TestFixedPointRoundTrip(t *testing.T) {
	for _, fbits := range []int{0, 1, 4, 8, 15} {
		p := PortSpec{Name: "y", IntegerBits: 16 - fbits, FractionalBits: fbits, BatchSize: 1, FifoDepth: 1}
		raw := p.One()
		if raw != int64(1)<<uint(fbits) {
			t.Fatalf("encoding 1.0 with %d fractional bits: got %d", fbits, raw)
		}
		if v := p.Decode(raw); v != 1.0 {
			t.Fatalf("decoding %d with %d fractional bits: got %f", raw, fbits, v)
		}
	}
}

func TestPortSpecValidate(t *testing.T) {
	good := PortSpec{Name: "x", IntegerBits: 4, FractionalBits: 4, BatchSize: 1, FifoDepth: 1}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid port rejected: %s", err)
	}

	bad := []PortSpec{
		{Name: "", IntegerBits: 4, FractionalBits: 4, BatchSize: 1, FifoDepth: 1},
		{Name: "x", IntegerBits: 0, FractionalBits: 0, BatchSize: 1, FifoDepth: 1},
		{Name: "x", IntegerBits: 4, FractionalBits: 4, BatchSize: 0, FifoDepth: 1},
		{Name: "x", IntegerBits: 4, FractionalBits: 4, BatchSize: 1, FifoDepth: 0},
	}
	for _, p := range bad {
		if err := p.Validate(); err == nil {
			t.Fatalf("invalid port accepted: %+v", p)
		}
	}
}

func TestNetworkConfigLookup(t *testing.T) {
	cfg := NetworkConfig{
		Inputs:  []PortSpec{{Name: "in1", IntegerBits: 4, FractionalBits: 4, BatchSize: 1, FifoDepth: 1}},
		Outputs: []PortSpec{{Name: "out1", IntegerBits: 8, FractionalBits: 8, BatchSize: 2, FifoDepth: 3}},
	}
	if _, ok := cfg.Input("in1"); !ok {
		t.Fatal("input lookup failed")
	}
	if _, ok := cfg.Output("in1"); ok {
		t.Fatal("input found among outputs")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestLoadGraph(t *testing.T) {
	data := []byte(`
layers:
  - name: input1
    variables:
      - name: input1
        type: input_t
        type_spec: ap_fixed<16,6>
        dims: [{name: N_INPUT_1, value: 4}]
  - name: dense1
    variables:
      - name: layer2_out
        type: layer2_t
        type_spec: ap_fixed<16,6>
        dims: [{name: N_LAYER_2, value: 8}]
        pragma: {mode: partition}
    weights:
      - name: w2
        type: weight2_t
        type_spec: ap_fixed<16,6>
        dims: [{name: N_W2, value: 32}]
        encoding: compressed
        non_zeros: 12
        values: ["1", "2"]
    function: ["nnet::dense<input_t, layer2_t, config2>(input1, layer2_out, w2, b2);"]
    includes: [nnet_dense.h]
inputs: [input1]
outputs: [layer2_out]
`)
	g, err := parseGraph(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Layers) != 2 || len(g.Inputs) != 1 || len(g.Outputs) != 1 {
		t.Fatalf("unexpected graph shape: %d layers, %d inputs, %d outputs", len(g.Layers), len(g.Inputs), len(g.Outputs))
	}
	w := g.Weights()[0]
	if w.Encoding != EncodingCompressed || w.NonZeros != 12 {
		t.Fatalf("unexpected weight: %+v", w)
	}
	if g.Layers[1].Variables[0].Pragma == nil {
		t.Fatal("pragma not loaded")
	}
}

func TestLoadGraphRejectsUnknownPragma(t *testing.T) {
	data := []byte(`
layers:
  - name: input1
    variables:
      - name: input1
        type: input_t
        dims: [{name: N, value: 1}]
        pragma: {mode: unroll}
`)
	if _, err := parseGraph(data); err == nil {
		t.Fatal("expected configuration error for unknown pragma mode")
	}
}
