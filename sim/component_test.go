package sim

import (
	"os"
	"path"
	"testing"
)

const componentFixture = `<?xml version="1.0" encoding="UTF-8"?>
<spirit:component xmlns:spirit="http://www.spiritconsortium.org/XMLSchema/SPIRIT/1685-2009" xmlns:xilinx="http://www.xilinx.com">
  <spirit:name>stitched_design</spirit:name>
  <spirit:model>
    <spirit:ports>
      <spirit:port>
        <spirit:name>ap_clk</spirit:name>
        <spirit:wire>
          <spirit:direction>in</spirit:direction>
        </spirit:wire>
      </spirit:port>
      <spirit:port>
        <spirit:name>input_1_tdata</spirit:name>
        <spirit:wire>
          <spirit:direction>in</spirit:direction>
          <spirit:vector>
            <spirit:left>15</spirit:left>
            <spirit:right>0</spirit:right>
          </spirit:vector>
        </spirit:wire>
      </spirit:port>
      <spirit:port>
        <spirit:name>layer5_out_tdata</spirit:name>
        <spirit:wire>
          <spirit:direction>out</spirit:direction>
          <spirit:vector>
            <spirit:left>0</spirit:left>
            <spirit:right>15</spirit:right>
          </spirit:vector>
        </spirit:wire>
      </spirit:port>
      <spirit:port>
        <spirit:name>no_wire</spirit:name>
      </spirit:port>
    </spirit:ports>
  </spirit:model>
</spirit:component>
`

func writeComponentFixture(t *testing.T) string {
	t.Helper()
	file := path.Join(t.TempDir(), "component.xml")
	if err := os.WriteFile(file, []byte(componentFixture), 0664); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return file
}

func TestParseComponentXML(t *testing.T) {
	inputs, outputs, err := ParseComponentXML(writeComponentFixture(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(inputs) != 2 {
		t.Fatalf("expected 2 inputs, got %d: %v", len(inputs), inputs)
	}
	if inputs[0].Name != "ap_clk" || inputs[0].Width != 1 {
		t.Errorf("scalar port must default to width 1: %+v", inputs[0])
	}
	if inputs[1].Name != "input_1_tdata" || inputs[1].Width != 16 {
		t.Errorf("vector [15:0] must have width 16: %+v", inputs[1])
	}

	if len(outputs) != 1 {
		t.Fatalf("expected 1 output, got %d: %v", len(outputs), outputs)
	}
	// Reversed bounds [0:15] still give 16 bits.
	if outputs[0].Name != "layer5_out_tdata" || outputs[0].Width != 16 {
		t.Errorf("reversed vector bounds mishandled: %+v", outputs[0])
	}
}

func TestParseComponentXMLMissingFile(t *testing.T) {
	_, _, err := ParseComponentXML(path.Join(t.TempDir(), "component.xml"))
	if !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
