package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gatewright-hq/gatewright/pkg/store"
)

var anchorsCmd = &cobra.Command{
	Use:   "anchors",
	Short: "Inspect the anchor set",
}

var anchorsListFlags struct {
	scope      string
	activeOnly bool
	jsonOut    bool
}

var anchorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List anchors in the configured store",
	Long: `List anchors in the configured store, oldest first.

Examples:
  gatewright anchors list
  gatewright anchors list --scope payments --active
  gatewright anchors list --json`,
	RunE: runAnchorsList,
}

func init() {
	rootCmd.AddCommand(anchorsCmd)
	anchorsCmd.AddCommand(anchorsListCmd)

	anchorsListCmd.Flags().StringVar(&anchorsListFlags.scope, "scope", "", "restrict to one scope")
	anchorsListCmd.Flags().BoolVar(&anchorsListFlags.activeOnly, "active", false, "exclude archived anchors")
	anchorsListCmd.Flags().BoolVar(&anchorsListFlags.jsonOut, "json", false, "print anchors as JSON")
}

func runAnchorsList(cmd *cobra.Command, args []string) error {
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

	anchors, err := st.ListAnchors(cmd.Context(), &store.AnchorQuery{
		Scope:      anchorsListFlags.scope,
		ActiveOnly: anchorsListFlags.activeOnly,
	})
	if err != nil {
		return err
	}

	if anchorsListFlags.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(anchors)
	}

	if len(anchors) == 0 {
		fmt.Println("No anchors found.")
		return nil
	}
	for _, a := range anchors {
		state := "active"
		if !a.Active {
			state = "archived"
		}
		fmt.Printf("%4d  L%d  %-10s  %-8s  %s\n", a.ID, a.Level, a.Scope, state, a.Statement)
	}
	fmt.Printf("\n%d anchor(s)\n", len(anchors))
	return nil
}
