// Package backend drives the external synthesis toolchain: single-project
// builds through the HLS compiler and multi-project stitching through the
// block-design tool. Every invocation is a single blocking child process
// whose output is captured to log files next to the project; failures point
// at those logs instead of adding a diagnostic layer of their own.
package backend

import (
	"fmt"
	"os"
	"os/exec"
	"path"
)

// BuildOptions are the build-stage flags passed through to the HLS
// compiler's project script. Their semantics are opaque to this tool.
type BuildOptions struct {
	Reset      bool
	CSim       bool
	Synth      bool
	Cosim      bool
	Validation bool
	Export     bool
	VSynth     bool
	FifoOpt    bool
}

// DefaultBuildOptions enables C simulation and synthesis, matching the
// stages a first build of a fresh project needs.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{CSim: true, Synth: true}
}

// BuildError reports a failed synthesis run. The captured logs hold the
// toolchain's own diagnostics.
type BuildError struct {
	Project   string
	StdoutLog string
	StderrLog string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build failed for '%s', see '%s' and '%s' for details",
		e.Project, e.StdoutLog, e.StderrLog)
}

// StitchError reports a failed stitching run.
type StitchError struct {
	Project   string
	StdoutLog string
	StderrLog string
}

func (e *StitchError) Error() string {
	return fmt.Sprintf("stitching failed for '%s', see '%s' and '%s' for details",
		e.Project, e.StdoutLog, e.StderrLog)
}

// buildArgs renders the fixed-shape argument list of the HLS compiler: the
// project script plus one quoted string carrying all stage flags.
func buildArgs(opts BuildOptions) []string {
	flags := fmt.Sprintf("reset=%t csim=%t synth=%t cosim=%t validation=%t export=%t vsynth=%t fifo_opt=%t",
		opts.Reset, opts.CSim, opts.Synth, opts.Cosim, opts.Validation, opts.Export, opts.VSynth, opts.FifoOpt)
	return []string{"-f", "build_prj.tcl", flags}
}

// Build runs the HLS compiler over one generated project directory. The
// call blocks until the child process exits; there is no timeout, a hung
// tool blocks indefinitely. Stdout and stderr are captured to
// build_stdout.log and build_stderr.log inside the project directory.
func Build(projectDir, projectName string, opts BuildOptions) error {
	if _, err := exec.LookPath("vitis_hls"); err != nil {
		return fmt.Errorf("HLS compiler not found, make sure 'vitis_hls' is on PATH: %w", err)
	}

	stdoutLog := path.Join(projectDir, "build_stdout.log")
	stderrLog := path.Join(projectDir, "build_stderr.log")
	stdout, err := os.Create(stdoutLog)
	if err != nil {
		return err
	}
	defer stdout.Close()
	stderr, err := os.Create(stderrLog)
	if err != nil {
		return err
	}
	defer stderr.Close()

	cmd := exec.Command("vitis_hls", buildArgs(opts)...)
	cmd.Dir = projectDir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return &BuildError{Project: projectName, StdoutLog: stdoutLog, StderrLog: stderrLog}
	}
	return nil
}
