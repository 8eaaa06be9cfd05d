package cmd

import (
	"crypto/rand"
	"encoding/hex"
	"path"

	"github.com/ml2hw/ml2hw/config"
	"github.com/ml2hw/ml2hw/graph"
	"github.com/ml2hw/ml2hw/log"
	"github.com/ml2hw/ml2hw/util"
	"github.com/ml2hw/ml2hw/writer"

	"github.com/spf13/cobra"
)

var writeCmd = &cobra.Command{
	Use:   "write <graph-file>",
	Args:  cobra.ExactArgs(1),
	Short: "Generates the HLS project sources for a model graph",
	Long: `Generates the complete HLS project for a serialized model graph:
firmware sources, weight headers, testbench, foreign-function bridge and
build scripts. The project configuration is persisted alongside the
generated sources so later build steps can pick it up.`,
	Run: runWrite,
}

var writeFlags struct {
	name           string
	outputDir      string
	part           string
	clockPeriod    int
	namespace      string
	ioType         string
	networkFile    string
	tbOutputStream string
	trace          bool
	tar            bool
	noWeightsTxt   bool
}

func init() {
	writeCmd.Flags().StringVarP(&writeFlags.name, "name", "n", "myproject", "Name of the generated project")
	writeCmd.Flags().StringVarP(&writeFlags.outputDir, "output-dir", "o", "", "Output directory (defaults to <name>_prj)")
	writeCmd.Flags().StringVar(&writeFlags.part, "part", "", "Target device part")
	writeCmd.Flags().IntVar(&writeFlags.clockPeriod, "clock-period", 0, "Target clock period in ns")
	writeCmd.Flags().StringVar(&writeFlags.namespace, "namespace", "", "Wrap the generated code in a namespace")
	writeCmd.Flags().StringVar(&writeFlags.ioType, "io-type", "", "Interface transport: io_parallel or io_stream")
	writeCmd.Flags().StringVar(&writeFlags.networkFile, "network", "", "Network interface description for streamed ports")
	writeCmd.Flags().StringVar(&writeFlags.tbOutputStream, "tb-output", "both", "Testbench result destination: stdout, file or both")
	writeCmd.Flags().BoolVar(&writeFlags.trace, "trace", false, "Emit per-layer trace capture hooks")
	writeCmd.Flags().BoolVar(&writeFlags.tar, "tar", false, "Archive the generated project as a .tar.gz")
	writeCmd.Flags().BoolVar(&writeFlags.noWeightsTxt, "no-weights-txt", false, "Inline all weights instead of writing .txt sidecars")
	rootCmd.AddCommand(writeCmd)
}

// makeStamp returns a fresh random build stamp embedded into the generated
// build scripts, so artifacts of different generation runs do not collide.
func makeStamp() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		log.Fatal("Failed to generate a build stamp: %s\n", err)
	}
	return hex.EncodeToString(buf)
}

func runWrite(cmd *cobra.Command, args []string) {
	g, err := graph.LoadGraph(args[0])
	if err != nil {
		log.Fatal("Failed to load model graph: %s\n", err)
	}

	outputDir := writeFlags.outputDir
	if outputDir == "" {
		outputDir = writeFlags.name + "_prj"
	}
	cfg := config.NewProjectConfig(writeFlags.name, outputDir)
	cfg.Stamp = makeStamp()
	if writeFlags.part != "" {
		cfg.Part = writeFlags.part
	}
	if writeFlags.clockPeriod > 0 {
		cfg.ClockPeriod = writeFlags.clockPeriod
	}
	if writeFlags.ioType != "" {
		cfg.IOType = writeFlags.ioType
	}
	cfg.Writer.Namespace = writeFlags.namespace
	cfg.Writer.TraceOutput = writeFlags.trace
	cfg.Writer.WriteTar = writeFlags.tar
	cfg.Writer.WriteWeightsTxt = !writeFlags.noWeightsTxt
	cfg.Writer.TBOutputStream = writeFlags.tbOutputStream
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid project configuration: %s\n", err)
	}

	var net *graph.NetworkConfig
	if writeFlags.networkFile != "" {
		net, err = graph.LoadNetwork(writeFlags.networkFile)
		if err != nil {
			log.Fatal("Failed to load network description: %s\n", err)
		}
	}

	if err := writer.New(cfg, g, net).WriteProject(); err != nil {
		log.Fatal("Failed to write project: %s\n", err)
	}

	// Keep the model file with the project, so a later stitch can
	// regenerate the composite bridge from it.
	if err := util.CopyFile(args[0], path.Join(outputDir, "graph.yml")); err != nil {
		log.Fatal("Failed to copy model file into the project: %s\n", err)
	}
}
