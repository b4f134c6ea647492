package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gatewright-hq/gatewright/pkg/audit/replay"
)

var replayCmd = &cobra.Command{
	Use:   "replay [trace id]",
	Short: "Replay a recorded trace against the current anchors",
	Long: `Replay a recorded decision trace against the current anchor set and
report decision and anchor drift. Replay never writes; the original log
and trace are untouched.

Examples:
  gatewright replay 7f9c2f0a-4e0b-4c54-9f2b-1f6f1f3e9d25
  gatewright replay --json 7f9c2f0a-4e0b-4c54-9f2b-1f6f1f3e9d25`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

var replayJSON bool

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().BoolVar(&replayJSON, "json", false, "print the full report as JSON")
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	initLogging(cfg)

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	report, err := replay.New(st, buildMatcher(cfg)).Replay(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if replayJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Printf("Trace:    %s\n", report.TraceID)
	fmt.Printf("Recorded: %s (%s)\n", report.DecisionBefore, report.ReasonBefore)
	fmt.Printf("Current:  %s (%s)\n", report.DecisionNow, report.ReasonNow)
	if report.Drifted() {
		fmt.Println("\nDrift detected:")
		if !report.SameDecision {
			fmt.Println("  - decision changed")
		}
		if !report.SameReason {
			fmt.Println("  - reason changed")
		}
		for _, d := range report.AnchorDrift {
			fmt.Printf("  - %s\n", d)
		}
	} else {
		fmt.Println("\nNo drift: the current anchors reproduce the recorded decision.")
	}
	if report.NewActiveAnchors > 0 {
		fmt.Printf("\n%d active anchor(s) created since the trace (not replayed).\n", report.NewActiveAnchors)
	}
	return nil
}
