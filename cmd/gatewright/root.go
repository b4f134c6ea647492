package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "gatewright",
	Short: "Gatewright - conflict-detection and decision audit engine",
	Long: `Gatewright checks requests against standing policy statements ("truth
anchors") and decides whether to proceed or gate, recording an immutable
audit trail of every decision.

It provides:
  - A registry of leveled, scoped truth anchors with profile scoping
  - Lexical and semantic conflict matching with a monetary trigger
  - Gate decisions with per-anchor explanations
  - Append-only gate logs and replayable decision traces
  - Scheduled drift sweeps over recent traces`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
