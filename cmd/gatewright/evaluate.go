package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"gatewright-hq/gatewright/pkg/gate"
)

var evaluateFlags struct {
	arousal   string
	dominance string
	profile   string
	jsonOut   bool
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [request text]",
	Short: "Evaluate a single request against the anchor set",
	Long: `Evaluate one request against the stored anchors and print the decision.
The evaluation appends a gate log and trace exactly as the API would.

Examples:
  # Plain evaluation
  gatewright evaluate "refund £2000 to the customer"

  # With affect state and profile scoping
  gatewright evaluate --arousal high --dominance low --profile support "delete the backlog"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVar(&evaluateFlags.arousal, "arousal", "", "self-reported arousal (low, medium, high)")
	evaluateCmd.Flags().StringVar(&evaluateFlags.dominance, "dominance", "", "self-reported dominance (low, medium, high)")
	evaluateCmd.Flags().StringVar(&evaluateFlags.profile, "profile", "", "profile scoping the evaluation")
	evaluateCmd.Flags().BoolVar(&evaluateFlags.jsonOut, "json", false, "print the full result as JSON")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
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

	svc := gate.NewService(st, buildMatcher(cfg), nil)

	result, err := svc.Evaluate(cmd.Context(), &gate.EvaluateInput{
		Request:   strings.Join(args, " "),
		Arousal:   evaluateFlags.arousal,
		Dominance: evaluateFlags.dominance,
		Profile:   evaluateFlags.profile,
	})
	if err != nil {
		return err
	}

	if evaluateFlags.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Printf("Decision: %s (%s)\n", result.Decision, result.Reason)
	fmt.Printf("Log:      %s\n", result.LogID)
	if result.TraceID != "" {
		fmt.Printf("Trace:    %s\n", result.TraceID)
	}
	if result.Interpretation != "" {
		fmt.Printf("\n%s\n", result.Interpretation)
	}
	for _, exp := range result.Explanations {
		fmt.Printf("  - %s\n", exp)
	}
	if result.Suggestion != "" {
		fmt.Printf("\nSuggestion: %s\n", result.Suggestion)
	}
	return nil
}
