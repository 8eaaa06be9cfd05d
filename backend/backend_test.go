package backend

import (
	"strings"
	"testing"

	"github.com/ml2hw/ml2hw/sim"
	"github.com/ml2hw/ml2hw/util"
)

func TestBuildArgs(t *testing.T) {
	args := buildArgs(DefaultBuildOptions())
	if len(args) != 3 || args[0] != "-f" || args[1] != "build_prj.tcl" {
		t.Fatalf("unexpected args: %v", args)
	}
	want := "reset=false csim=true synth=true cosim=false validation=false export=false vsynth=false fifo_opt=false"
	if args[2] != want {
		t.Errorf("flags = %q, want %q", args[2], want)
	}
}

func TestBuildArgsAllStages(t *testing.T) {
	args := buildArgs(BuildOptions{
		Reset: true, CSim: true, Synth: true, Cosim: true,
		Validation: true, Export: true, VSynth: true, FifoOpt: true,
	})
	flags := args[len(args)-1]
	for _, stage := range []string{"reset", "csim", "synth", "cosim", "validation", "export", "vsynth", "fifo_opt"} {
		if !strings.Contains(flags, stage+"=true") {
			t.Errorf("stage %s not enabled in %q", stage, flags)
		}
	}
}

func TestStitchArgs(t *testing.T) {
	args := stitchArgs(StitchOptions{Sim: true, Export: false})
	joined := strings.Join(args, " ")
	for _, want := range []string{
		"-mode batch",
		"-nojournal",
		"-nolog",
		"-notrace",
		"-source vivado_stitched_design/ip_stitcher.tcl",
		"-tclargs",
		"sim_design=1",
		"export_design=0",
		"sim_verilog_file=vivado_stitched_design/" + sim.TestbenchFileName,
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing %q in %q", want, joined)
		}
	}

	args = stitchArgs(StitchOptions{Sim: false, Export: true})
	joined = strings.Join(args, " ")
	if !strings.Contains(joined, "sim_design=0") || !strings.Contains(joined, "export_design=1") {
		t.Errorf("option encoding wrong: %q", joined)
	}
}

func TestFormatSimResults(t *testing.T) {
	outputs := util.NewOrderedMap[string, []float64]()
	outputs.Insert("z", []float64{1})
	outputs.Insert("y", []float64{0.5, -0.25})
	trace := &sim.TraceData{Outputs: outputs, LatencyCycles: 42}

	results := formatSimResults(trace)
	if len(results) != 2 {
		t.Fatalf("expected 2 sequences, got %d", len(results))
	}
	// Name order: y before z.
	if results[0][0] != "0.500000" || results[0][1] != "-0.250000" {
		t.Errorf("y sequence = %v", results[0])
	}
	if results[1][0] != "1.000000" {
		t.Errorf("z sequence = %v", results[1])
	}
}

func TestBuildErrorMessage(t *testing.T) {
	err := &BuildError{Project: "resnet_graph1", StdoutLog: "a/build_stdout.log", StderrLog: "a/build_stderr.log"}
	msg := err.Error()
	for _, want := range []string{"resnet_graph1", "build_stdout.log", "build_stderr.log"} {
		if !strings.Contains(msg, want) {
			t.Errorf("missing %q in %q", want, msg)
		}
	}
}
