package backend

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path"

	"github.com/ml2hw/ml2hw/assets"
	"github.com/ml2hw/ml2hw/graph"
	"github.com/ml2hw/ml2hw/report"
	"github.com/ml2hw/ml2hw/sim"
	"github.com/ml2hw/ml2hw/util"
)

// StitchDirName is the working subdirectory of a stitch run, below the
// project output directory.
const StitchDirName = "vivado_stitched_design"

// simLogPath is where the behavioral simulation leaves the testbench log,
// relative to the stitch directory.
const simLogPath = "vivado_stitched_design.sim/sim_1/behav/xsim/testbench_log.csv"

// StitchOptions control one stitch invocation.
type StitchOptions struct {
	// Sim runs a behavioral simulation of the stitched design and folds
	// its results into the combined report.
	Sim bool
	// Export packages the stitched design as a reusable artifact.
	Export bool
}

// stitchArgs renders the fixed argument list of the block-design tool.
func stitchArgs(opts StitchOptions) []string {
	boolArg := func(b bool) int {
		if b {
			return 1
		}
		return 0
	}
	return []string{
		"-mode", "batch", "-nojournal", "-nolog", "-notrace",
		"-source", path.Join(StitchDirName, "ip_stitcher.tcl"),
		"-tclargs",
		fmt.Sprintf("sim_design=%d", boolArg(opts.Sim)),
		fmt.Sprintf("export_design=%d", boolArg(opts.Export)),
		"sim_verilog_file=" + path.Join(StitchDirName, sim.TestbenchFileName),
	}
}

// Stitch composes the already-built sub-projects under outputDir into one
// design: it prepares the stitch working directory (control script, network
// descriptor, optionally the simulation testbench), runs the external
// block-design tool and merges the supplied per-subgraph reports into the
// combined report. With the Sim option the simulation's testbench log is
// read back and its per-output values and measured latency are folded in.
func Stitch(outputDir, projectName string, opts StitchOptions, net *graph.NetworkConfig,
	results map[string]report.Report) (report.Combined, error) {

	var combined report.Combined
	if opts.Sim && net == nil {
		return combined, &graph.ConfigurationError{Reason: "simulation requested without a network configuration"}
	}

	stitchDir := path.Join(outputDir, StitchDirName)
	if err := util.EnsureDir(stitchDir); err != nil {
		return combined, err
	}

	stitcher, err := assets.Read("vivado/ip_stitcher.tcl")
	if err != nil {
		return combined, err
	}
	if err := util.WriteFile(path.Join(stitchDir, "ip_stitcher.tcl"), stitcher); err != nil {
		return combined, err
	}

	if net != nil {
		data, err := json.MarshalIndent(net, "", "    ")
		if err != nil {
			return combined, err
		}
		if err := util.WriteFile(path.Join(stitchDir, "nn_config.json"), data); err != nil {
			return combined, err
		}
	}

	if opts.Sim {
		if err := sim.WriteTestbench(net, path.Join(stitchDir, sim.TestbenchFileName)); err != nil {
			return combined, err
		}
	}

	stdoutLog := path.Join(stitchDir, "stitcher_stdout.log")
	stderrLog := path.Join(stitchDir, "stitcher_stderr.log")
	stdout, err := os.Create(stdoutLog)
	if err != nil {
		return combined, err
	}
	defer stdout.Close()
	stderr, err := os.Create(stderrLog)
	if err != nil {
		return combined, err
	}
	defer stderr.Close()

	cmd := exec.Command("vivado", stitchArgs(opts)...)
	cmd.Dir = outputDir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return combined, &StitchError{Project: projectName, StdoutLog: stdoutLog, StderrLog: stderrLog}
	}

	combined = report.Aggregate(results)

	if opts.Sim {
		trace, err := sim.ReadTestbenchLog(path.Join(stitchDir, simLogPath))
		if err != nil {
			return combined, err
		}
		combined.CSimResults = formatSimResults(trace)
		combined.StitchedDesignLatency = trace.LatencyCycles
	}
	return combined, nil
}

// formatSimResults renders each output's decoded sample sequence as
// fixed-precision text, one sequence per output in name order.
func formatSimResults(trace *sim.TraceData) [][]string {
	results := [][]string{}
	for _, entry := range trace.Outputs.Entries() {
		results = append(results, util.MappedSlice(entry.Value, func(v float64) string {
			return fmt.Sprintf("%.6f", v)
		}))
	}
	return results
}
