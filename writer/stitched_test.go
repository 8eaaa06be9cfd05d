package writer

import (
	"os"
	"path"
	"strings"
	"testing"

	"github.com/ml2hw/ml2hw/graph"
)

// fixtureSubGraphs builds two single-output graphs where the first graph's
// output shape matches the second graph's input.
func fixtureSubGraphs() []SubProject {
	first := fixtureGraph()
	second := &graph.Graph{
		Inputs: []*graph.Variable{{
			Name:   "graph2_in",
			Type:   graph.Type{Name: "input2_t", Spec: "ap_fixed<16,6>"},
			Dims:   []graph.Dim{{Name: "N_LAYER_3", Value: 2}},
			Pragma: graph.NewPragma(graph.PragmaPartition),
		}},
		Outputs: []*graph.Variable{{
			Name:   "layer5_out",
			Type:   graph.Type{Name: "result_t", Spec: "ap_fixed<16,6>"},
			Dims:   []graph.Dim{{Name: "N_LAYER_5", Value: 2}},
			Pragma: graph.NewPragma(graph.PragmaPartition),
		}},
	}
	second.Layers = []*graph.Layer{{
		Name:      "dense2",
		Variables: second.Outputs,
		Function:  []string{"nnet::dense<input2_t, result_t, config5>(graph2_in, layer5_out);"},
	}}
	return []SubProject{
		{Name: "resnet_graph1", Dir: "resnet_graph1", Graph: first},
		{Name: "resnet_graph2", Dir: "resnet_graph2", Graph: second},
	}
}

func testStitchedWriter(t *testing.T) *StitchedWriter {
	t.Helper()
	cfg := testConfig()
	cfg.ProjectName = "resnet_stitched"
	cfg.OutputDir = path.Join(t.TempDir(), "stitched")
	cfg.Stamp = "feed1234"
	return NewStitched(cfg, "resnet", fixtureSubGraphs(), nil)
}

func TestStitchedChainedIncludes(t *testing.T) {
	s := testStitchedWriter(t)
	text, err := s.expandChainedIncludes(s.bridgeContext(), "#include \"firmware/myproject.h\"")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		"#include \"firmware/resnet_graph1.h\"",
		"#include \"firmware/resnet_graph2.h\"",
		"#define result_t result_graph1_t",
		"#define result_t result_graph2_t",
		"typedef result_graph1_t graph1_result_t;",
		"typedef result_graph2_t graph2_result_t;",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in:\n%s", want, text)
		}
	}
	if strings.Count(text, "#undef DEFINES_H_") != 2 {
		t.Errorf("defines guard must be reset per graph:\n%s", text)
	}
	if strings.Count(text, "#undef result_t") != 1 {
		t.Errorf("result type must stay defined after the last graph:\n%s", text)
	}
	first := strings.Index(text, "resnet_graph1.h")
	second := strings.Index(text, "resnet_graph2.h")
	if first < 0 || second < 0 || first > second {
		t.Errorf("includes out of order:\n%s", text)
	}
}

func TestStitchedChainedWrapper(t *testing.T) {
	s := testStitchedWriter(t)
	text, err := s.expandChainedWrapper(s.bridgeContext(), markerWrapper+" #float")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		"nnet::convert_data<float, input_t, N_INPUT_1_1>(input_1, input_1_ap);",
		"graph1_result_t layer3_out_ap[N_LAYER_3];",
		"graph2_result_t layer5_out_ap[N_LAYER_5];",
		"resnet_graph1(input_1_ap,layer3_out_ap);",
		"resnet_graph2(layer3_out_ap,layer5_out_ap);",
		"nnet::convert_data<graph2_result_t, float, N_LAYER_5>(layer5_out_ap, layer5_out);",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in:\n%s", want, text)
		}
	}
	call1 := strings.Index(text, "resnet_graph1(")
	call2 := strings.Index(text, "resnet_graph2(")
	if !(call1 >= 0 && call2 >= 0 && call1 < call2) {
		t.Errorf("sub-project calls out of order:\n%s", text)
	}
}

func TestStitchedWriteProject(t *testing.T) {
	s := testStitchedWriter(t)
	if err := s.WriteProject(); err != nil {
		t.Fatalf("WriteProject: %v", err)
	}

	data, err := os.ReadFile(path.Join(s.cfg.OutputDir, "resnet_stitched_bridge.cpp"))
	if err != nil {
		t.Fatalf("bridge missing: %v", err)
	}
	bridge := string(data)
	if !strings.Contains(bridge, "resnet_graph1(") || !strings.Contains(bridge, "resnet_graph2(") {
		t.Errorf("chained calls missing from bridge:\n%s", bridge)
	}

	data, err = os.ReadFile(path.Join(s.cfg.OutputDir, "build_lib.sh"))
	if err != nil {
		t.Fatalf("build script missing: %v", err)
	}
	script := string(data)
	for _, want := range []string{"resnet_stitched", "\"resnet_graph1\" \"resnet_graph2\"", "feed1234"} {
		if !strings.Contains(script, want) {
			t.Errorf("missing %q in build_lib.sh:\n%s", want, script)
		}
	}
	for _, leftover := range []string{"myproject", "mystamp", "mygraph_name_list"} {
		if strings.Contains(script, leftover) {
			t.Errorf("unsubstituted token %q in build_lib.sh:\n%s", leftover, script)
		}
	}
}

func TestStitchedWriteProjectEmpty(t *testing.T) {
	cfg := testConfig()
	cfg.OutputDir = path.Join(t.TempDir(), "stitched")
	s := NewStitched(cfg, "resnet", nil, nil)
	if err := s.WriteProject(); err == nil {
		t.Fatal("expected error for empty sub-project list")
	}
}
