package cmd

import (
	"github.com/ml2hw/ml2hw/log"
	"github.com/ml2hw/ml2hw/sim"

	"github.com/spf13/cobra"
)

var portsCmd = &cobra.Command{
	Use:   "ports <component-xml>",
	Args:  cobra.ExactArgs(1),
	Short: "Prints the port list of a packaged hardware module",
	Long: `Prints the ports of a packaged hardware module as recovered from its
component descriptor, with direction and bit width. Useful for writing the
network interface description a stitched simulation needs.`,
	Run: runPorts,
}

func init() {
	rootCmd.AddCommand(portsCmd)
}

func runPorts(cmd *cobra.Command, args []string) {
	inputs, outputs, err := sim.ParseComponentXML(args[0])
	if err != nil {
		log.Fatal("Failed to parse component descriptor: %s\n", err)
	}
	log.Log("Inputs:\n")
	for _, p := range inputs {
		log.Log("  %-32s %2d bit\n", p.Name, p.Width)
	}
	log.Log("Outputs:\n")
	for _, p := range outputs {
		log.Log("  %-32s %2d bit\n", p.Name, p.Width)
	}
}
