package cmd

import (
	"os"

	"github.com/ml2hw/ml2hw/log"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ml2hw",
	Short: "Translates model graphs into synthesizable hardware projects",
	Long: `ml2hw translates neural-network model graphs into synthesizable HLS
projects, drives the external toolchain to build them, and stitches several
independently built sub-projects into one composite design with an
aggregated synthesis report.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.PersistentFlags().BoolVarP(&log.Verbose, "verbose", "v", false, "Print debug output")
	if rootCmd.Execute() != nil {
		os.Exit(1)
	}
}
