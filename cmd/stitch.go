package cmd

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/ml2hw/ml2hw/backend"
	"github.com/ml2hw/ml2hw/config"
	"github.com/ml2hw/ml2hw/graph"
	"github.com/ml2hw/ml2hw/log"
	"github.com/ml2hw/ml2hw/report"
	"github.com/ml2hw/ml2hw/util"
	"github.com/ml2hw/ml2hw/writer"

	"github.com/spf13/cobra"
)

// stitchedReportFileName is where the combined report of a stitch run is
// persisted, below the output directory.
const stitchedReportFileName = "stitched_report.yml"

var stitchCmd = &cobra.Command{
	Use:   "stitch <output-dir>",
	Args:  cobra.ExactArgs(1),
	Short: "Stitches the built sub-projects into one composite design",
	Long: `Stitches the already-built sub-projects below the given output
directory into one composite design. The per-subgraph synthesis reports are
aggregated into one combined report; with --sim the stitched design is also
simulated and the measured outputs and latency are folded into the report.`,
	Run: runStitch,
}

var stitchFlags struct {
	name        string
	sim         bool
	export      bool
	networkFile string
	graphFile   string
}

func init() {
	stitchCmd.Flags().StringVarP(&stitchFlags.name, "name", "n", "stitched_design", "Name of the stitched design")
	stitchCmd.Flags().BoolVar(&stitchFlags.sim, "sim", false, "Run a behavioral simulation of the stitched design")
	stitchCmd.Flags().BoolVar(&stitchFlags.export, "export", false, "Export the stitched design as a reusable artifact")
	stitchCmd.Flags().StringVar(&stitchFlags.networkFile, "network", "", "Network interface description of the stitched design")
	stitchCmd.Flags().StringVar(&stitchFlags.graphFile, "graph-file", "graph.yml", "Per-subgraph model file used to regenerate the bridge")
	rootCmd.AddCommand(stitchCmd)
}

// subProjectDirs lists the sub-project directories below the output
// directory, in name order. A directory qualifies if it carries a persisted
// project configuration.
func subProjectDirs(outputDir string) ([]string, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return nil, err
	}
	dirs := []string{}
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == backend.StitchDirName {
			continue
		}
		if util.FileExists(path.Join(outputDir, entry.Name(), config.ProjectFileName)) {
			dirs = append(dirs, entry.Name())
		}
	}
	return dirs, nil
}

// writeStitchedAux regenerates the stitched bridge and build script when
// every sub-project still carries its model file. Sub-projects written by an
// older tool version may not; the stitch itself does not depend on them.
func writeStitchedAux(outputDir string, dirs []string, net *graph.NetworkConfig) error {
	subs := make([]writer.SubProject, 0, len(dirs))
	var first config.ProjectConfig
	for i, dir := range dirs {
		graphPath := path.Join(outputDir, dir, stitchFlags.graphFile)
		if !util.FileExists(graphPath) {
			log.Debug("No model file in '%s', skipping bridge generation\n", dir)
			return nil
		}
		g, err := graph.LoadGraph(graphPath)
		if err != nil {
			return err
		}
		cfg, err := config.LoadProject(path.Join(outputDir, dir, config.ProjectFileName))
		if err != nil {
			return err
		}
		if i == 0 {
			first = cfg
		}
		subs = append(subs, writer.SubProject{Name: cfg.ProjectName, Dir: dir, Graph: g})
	}

	original, _, _ := strings.Cut(subs[0].Name, "_graph")
	cfg := first
	cfg.ProjectName = stitchFlags.name
	cfg.OutputDir = outputDir
	return writer.NewStitched(cfg, original, subs, net).WriteProject()
}

func runStitch(cmd *cobra.Command, args []string) {
	outputDir := args[0]
	dirs, err := subProjectDirs(outputDir)
	if err != nil {
		log.Fatal("Failed to list sub-projects: %s\n", err)
	}
	if len(dirs) == 0 {
		log.Fatal("No built sub-projects found below '%s'\n", outputDir)
	}
	log.Log("Stitching %d sub-projects from %s\n", len(dirs), outputDir)

	results := map[string]report.Report{}
	for _, dir := range dirs {
		reportPath := path.Join(outputDir, dir, report.ReportFileName)
		if !util.FileExists(reportPath) {
			log.Warning("Sub-project '%s' has no build report, counting its resources as zero\n", dir)
			continue
		}
		r, err := report.LoadReport(reportPath)
		if err != nil {
			log.Fatal("Failed to load report of '%s': %s\n", dir, err)
		}
		results[dir] = r
	}

	var net *graph.NetworkConfig
	if stitchFlags.networkFile != "" {
		if net, err = graph.LoadNetwork(stitchFlags.networkFile); err != nil {
			log.Fatal("Failed to load network description: %s\n", err)
		}
	}

	if err := writeStitchedAux(outputDir, dirs, net); err != nil {
		log.Fatal("Failed to write stitched design sources: %s\n", err)
	}

	opts := backend.StitchOptions{Sim: stitchFlags.sim, Export: stitchFlags.export}
	s := newSpinner(fmt.Sprintf(" Stitching design '%s'...", stitchFlags.name))
	s.Start()
	combined, err := backend.Stitch(outputDir, stitchFlags.name, opts, net, results)
	s.Stop()
	if err != nil {
		log.Fatal("%s\n", err)
	}

	reportPath := path.Join(outputDir, stitchedReportFileName)
	if err := report.SaveReport(reportPath, combined); err != nil {
		log.Fatal("Failed to save combined report: %s\n", err)
	}
	log.Success("Stitched design '%s' built, combined report at %s\n", stitchFlags.name, reportPath)
}
