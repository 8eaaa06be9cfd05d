// Package sim generates and reads back the behavioral simulation harness of
// a stitched design: a self-contained Verilog testbench driving the
// composite over its streaming interfaces, the component descriptor parser
// recovering port shapes from the packaged module, and the reader for the
// structured log the testbench emits.
package sim

import (
	"fmt"
	"strings"

	"github.com/ml2hw/ml2hw/graph"
	"github.com/ml2hw/ml2hw/util"
)

// TestbenchFileName is the name of the generated harness inside the
// stitched-design directory.
const TestbenchFileName = "testbench.v"

// LogFileName is the name of the structured log the harness writes.
const LogFileName = "testbench_log.csv"

// EmptyInterfaceError reports a testbench request over a network with no
// inputs or no outputs. Completion is only observable through an output, so
// the harness structurally requires at least one port on each side.
type EmptyInterfaceError struct {
	Side string
}

func (e *EmptyInterfaceError) Error() string {
	return "cannot generate testbench: network has no " + e.Side + " ports"
}

// GenerateTestbench renders the simulation harness for the given network as
// Verilog text. It is a pure function of the port descriptors: clock and
// reset sequencing, three stimulus patterns per input (zeros, the
// fixed-point one, zeros again) each held for the port's FIFO depth, and a
// clocked capture process per output appending decoded samples to the
// structured log. Latency is measured from the start of the third pattern
// to the completion signal.
func GenerateTestbench(net *graph.NetworkConfig) (string, error) {
	if len(net.Inputs) == 0 {
		return "", &EmptyInterfaceError{Side: "input"}
	}
	if len(net.Outputs) == 0 {
		return "", &EmptyInterfaceError{Side: "output"}
	}
	if err := net.Validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	writeTestbenchHeader(&b, net)
	writeTestbenchDUT(&b, net)
	writeTestbenchClocking(&b, net)
	writeTestbenchStimulus(&b, net)
	writeTestbenchCapture(&b, net)
	fmt.Fprintf(&b, "endmodule\n")
	return b.String(), nil
}

// WriteTestbench renders the harness and writes it to the given file.
func WriteTestbench(net *graph.NetworkConfig, file string) error {
	text, err := GenerateTestbench(net)
	if err != nil {
		return err
	}
	return util.WriteFile(file, []byte(text))
}

func writeTestbenchHeader(b *strings.Builder, net *graph.NetworkConfig) {
	fmt.Fprintf(b, "`timescale 1ns / 1ps\n\n")
	fmt.Fprintf(b, "module tb_stitched_design;\n\n")
	fmt.Fprintf(b, "    // Clock and reset\n")
	fmt.Fprintf(b, "    reg ap_clk;\n")
	fmt.Fprintf(b, "    reg ap_rst_n;\n\n")
	fmt.Fprintf(b, "    // Control\n")
	fmt.Fprintf(b, "    reg ap_start;\n")
	fmt.Fprintf(b, "    wire ap_done;\n\n")

	for _, p := range net.Inputs {
		fmt.Fprintf(b, "    reg [%d:0] %s_tdata;\n", p.Width()*p.BatchSize-1, p.Name)
		fmt.Fprintf(b, "    reg %s_tvalid;\n", p.Name)
		fmt.Fprintf(b, "    wire %s_tready;\n\n", p.Name)
	}
	for _, p := range net.Outputs {
		fmt.Fprintf(b, "    wire [%d:0] %s_tdata;\n", p.Width()*p.BatchSize-1, p.Name)
		fmt.Fprintf(b, "    wire %s_tvalid;\n", p.Name)
		fmt.Fprintf(b, "    reg %s_tready;\n\n", p.Name)
	}

	fmt.Fprintf(b, "    integer csv_file;\n\n")
}

func writeTestbenchDUT(b *strings.Builder, net *graph.NetworkConfig) {
	fmt.Fprintf(b, "    // Device under test\n")
	fmt.Fprintf(b, "    stitched_design dut (\n")
	fmt.Fprintf(b, "        .ap_clk(ap_clk),\n")
	fmt.Fprintf(b, "        .ap_done(ap_done),\n")
	fmt.Fprintf(b, "        .ap_rst_n(ap_rst_n),\n")
	fmt.Fprintf(b, "        .ap_start(ap_start),\n")
	for _, p := range net.Inputs {
		fmt.Fprintf(b, "        .%s_tdata(%s_tdata),\n", p.Name, p.Name)
		fmt.Fprintf(b, "        .%s_tready(%s_tready),\n", p.Name, p.Name)
		fmt.Fprintf(b, "        .%s_tvalid(%s_tvalid),\n", p.Name, p.Name)
	}
	// The last output port must not carry a trailing comma.
	for i, p := range net.Outputs {
		fmt.Fprintf(b, "        .%s_tdata(%s_tdata),\n", p.Name, p.Name)
		fmt.Fprintf(b, "        .%s_tready(%s_tready),\n", p.Name, p.Name)
		if i < len(net.Outputs)-1 {
			fmt.Fprintf(b, "        .%s_tvalid(%s_tvalid),\n", p.Name, p.Name)
		} else {
			fmt.Fprintf(b, "        .%s_tvalid(%s_tvalid)\n", p.Name, p.Name)
		}
	}
	fmt.Fprintf(b, "    );\n\n")
}

func writeTestbenchClocking(b *strings.Builder, net *graph.NetworkConfig) {
	fmt.Fprintf(b, "    // Clock generation (100 MHz)\n")
	fmt.Fprintf(b, "    initial begin\n")
	fmt.Fprintf(b, "        ap_clk = 0;\n")
	fmt.Fprintf(b, "        forever #5 ap_clk = ~ap_clk;\n")
	fmt.Fprintf(b, "    end\n\n")

	fmt.Fprintf(b, "    // Reset generation\n")
	fmt.Fprintf(b, "    initial begin\n")
	fmt.Fprintf(b, "        ap_rst_n = 0;\n")
	fmt.Fprintf(b, "        repeat (5) @(posedge ap_clk);\n")
	fmt.Fprintf(b, "        ap_rst_n = 1;\n")
	fmt.Fprintf(b, "    end\n\n")

	fmt.Fprintf(b, "    // Control initialization\n")
	fmt.Fprintf(b, "    initial begin\n")
	fmt.Fprintf(b, "        ap_start = 0;\n")
	for _, p := range net.Inputs {
		fmt.Fprintf(b, "        %s_tvalid = 0;\n", p.Name)
	}
	for _, p := range net.Outputs {
		fmt.Fprintf(b, "        %s_tready = 1;\n", p.Name)
	}
	fmt.Fprintf(b, "        csv_file = $fopen(\"%s\", \"w\");\n", LogFileName)
	fmt.Fprintf(b, "        $fwrite(csv_file, \"output_name,index,value\\n\");\n")
	fmt.Fprintf(b, "    end\n\n")

	fmt.Fprintf(b, "    // Cycle counter, reset-synchronous\n")
	fmt.Fprintf(b, "    reg [63:0] cycle_count = 0;\n")
	fmt.Fprintf(b, "    reg [63:0] start_cycle = 0;\n")
	fmt.Fprintf(b, "    reg [63:0] end_cycle = 0;\n")
	fmt.Fprintf(b, "    always @(posedge ap_clk) begin\n")
	fmt.Fprintf(b, "        if (!ap_rst_n)\n")
	fmt.Fprintf(b, "            cycle_count <= 0;\n")
	fmt.Fprintf(b, "        else\n")
	fmt.Fprintf(b, "            cycle_count <= cycle_count + 1;\n")
	fmt.Fprintf(b, "    end\n\n")
}

// writePattern emits one stimulus pattern for one input: the value is held
// on every batch slot for fifo_depth beats, each beat gated on the ready line.
func writePattern(b *strings.Builder, p graph.PortSpec, value string, comment string) {
	fmt.Fprintf(b, "        // %s for %s\n", comment, p.Name)
	fmt.Fprintf(b, "        %s_tvalid = 1;\n", p.Name)
	fmt.Fprintf(b, "        for (j = 0; j < %d; j = j + 1) begin\n", p.FifoDepth)
	for k := 0; k < p.BatchSize; k++ {
		upper := (k+1)*p.Width() - 1
		lower := k * p.Width()
		fmt.Fprintf(b, "            %s_tdata[%d:%d] = %s;\n", p.Name, upper, lower, value)
	}
	fmt.Fprintf(b, "            while (%s_tready == 0) @(posedge ap_clk);\n", p.Name)
	fmt.Fprintf(b, "            @(posedge ap_clk);\n")
	fmt.Fprintf(b, "        end\n")
	fmt.Fprintf(b, "        %s_tvalid = 0;\n\n", p.Name)
}

func writeTestbenchStimulus(b *strings.Builder, net *graph.NetworkConfig) {
	fmt.Fprintf(b, "    // Stimulus\n")
	fmt.Fprintf(b, "    integer j;\n")
	fmt.Fprintf(b, "    initial begin\n")
	fmt.Fprintf(b, "        wait (ap_rst_n == 1);\n")
	fmt.Fprintf(b, "        repeat (2) @(posedge ap_clk);\n\n")
	fmt.Fprintf(b, "        ap_start = 1;\n")

	for _, p := range net.Inputs {
		writePattern(b, p, "0", "Pattern 1: all zeros")
	}
	for _, p := range net.Inputs {
		writePattern(b, p, fmt.Sprintf("%d", p.One()), "Pattern 2: fixed-point one")
	}
	fmt.Fprintf(b, "        start_cycle = cycle_count;\n\n")
	for _, p := range net.Inputs {
		writePattern(b, p, "0", "Pattern 3: all zeros, measured")
	}

	fmt.Fprintf(b, "        wait (ap_done == 1);\n")
	fmt.Fprintf(b, "        end_cycle = cycle_count;\n")
	fmt.Fprintf(b, "        $fwrite(csv_file, \"latency_cycles,0,%%0d\\n\", end_cycle - start_cycle);\n")
	fmt.Fprintf(b, "        $fclose(csv_file);\n")
	fmt.Fprintf(b, "        repeat (5) @(posedge ap_clk);\n")
	fmt.Fprintf(b, "        $finish;\n")
	fmt.Fprintf(b, "    end\n\n")
}

func writeTestbenchCapture(b *strings.Builder, net *graph.NetworkConfig) {
	fmt.Fprintf(b, "    // Output capture: decode each batch slot as fixed point and log it\n")
	for _, p := range net.Outputs {
		signedness := ""
		if p.Signed {
			signedness = "signed "
		}
		fmt.Fprintf(b, "    integer idx_%s;\n", p.Name)
		fmt.Fprintf(b, "    integer count_%s = 0;\n", p.Name)
		fmt.Fprintf(b, "    reg %s[%d:0] fixed_val_%s;\n", signedness, p.Width()-1, p.Name)
		fmt.Fprintf(b, "    real real_val_%s;\n", p.Name)
		fmt.Fprintf(b, "    always @(posedge ap_clk) begin\n")
		fmt.Fprintf(b, "        if (%s_tvalid && %s_tready) begin\n", p.Name, p.Name)
		fmt.Fprintf(b, "            for (idx_%s = 0; idx_%s < %d; idx_%s = idx_%s + 1) begin\n",
			p.Name, p.Name, p.BatchSize, p.Name, p.Name)
		fmt.Fprintf(b, "                fixed_val_%s = %s_tdata[(idx_%s+1)*%d-1 -: %d];\n",
			p.Name, p.Name, p.Name, p.Width(), p.Width())
		fmt.Fprintf(b, "                real_val_%s = fixed_val_%s / (1.0 * (1 << %d));\n",
			p.Name, p.Name, p.FractionalBits)
		fmt.Fprintf(b, "                $fwrite(csv_file, \"%s,%%0d,%%f\\n\", count_%s, real_val_%s);\n",
			p.Name, p.Name, p.Name)
		fmt.Fprintf(b, "                count_%s = count_%s + 1;\n", p.Name, p.Name)
		fmt.Fprintf(b, "            end\n")
		fmt.Fprintf(b, "        end\n")
		fmt.Fprintf(b, "    end\n\n")
	}
}
