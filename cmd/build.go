package cmd

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/ml2hw/ml2hw/backend"
	"github.com/ml2hw/ml2hw/config"
	"github.com/ml2hw/ml2hw/log"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build <project-dir>",
	Args:  cobra.ExactArgs(1),
	Short: "Runs the external synthesis toolchain over a generated project",
	Long: `Runs the external HLS toolchain over a previously generated project
directory. The selected build stages are passed through to the toolchain
unchanged; stdout and stderr are captured to log files inside the project
directory.`,
	Run: runBuild,
}

var buildOpts backend.BuildOptions

func init() {
	buildCmd.Flags().BoolVar(&buildOpts.Reset, "reset", false, "Recreate the toolchain project from scratch")
	buildCmd.Flags().BoolVar(&buildOpts.CSim, "csim", true, "Run C simulation")
	buildCmd.Flags().BoolVar(&buildOpts.Synth, "synth", true, "Run C synthesis")
	buildCmd.Flags().BoolVar(&buildOpts.Cosim, "cosim", false, "Run C/RTL co-simulation")
	buildCmd.Flags().BoolVar(&buildOpts.Validation, "validation", false, "Validate C simulation against C/RTL co-simulation")
	buildCmd.Flags().BoolVar(&buildOpts.Export, "export", false, "Export the design as an IP core")
	buildCmd.Flags().BoolVar(&buildOpts.VSynth, "vsynth", false, "Run logic synthesis on the exported design")
	buildCmd.Flags().BoolVar(&buildOpts.FifoOpt, "fifo-opt", false, "Run FIFO depth optimization")
	rootCmd.AddCommand(buildCmd)
}

// newSpinner returns a progress spinner writing to stderr, so captured
// stdout stays clean.
func newSpinner(suffix string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = suffix
	return s
}

func runBuild(cmd *cobra.Command, args []string) {
	projectDir := args[0]
	cfg, err := config.LoadProject(path.Join(projectDir, config.ProjectFileName))
	if err != nil {
		log.Fatal("Failed to load project configuration: %s\n", err)
	}

	s := newSpinner(fmt.Sprintf(" Building project '%s'...", cfg.ProjectName))
	s.Start()
	err = backend.Build(projectDir, cfg.ProjectName, buildOpts)
	s.Stop()
	if err != nil {
		log.Fatal("%s\n", err)
	}
	log.Success("Build of '%s' finished\n", cfg.ProjectName)
}
