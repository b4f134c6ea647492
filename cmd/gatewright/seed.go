package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gatewright-hq/gatewright/pkg/anchor/loader"
)

var seedFlags struct {
	file string
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load anchors and profiles from a seed file",
	Long: `Load anchors and profiles from a YAML seed file into the configured
store. Seeding is idempotent: anchors that already exist (same statement
and scope) are left alone, so the command is safe to re-run.

Examples:
  # Load the seed file named in the config
  gatewright seed

  # Load a specific file
  gatewright seed --file anchors.yaml`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().StringVarP(&seedFlags.file, "file", "f", "", "seed file path (defaults to anchors.seed_file from config)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	initLogging(cfg)

	path := seedFlags.file
	if path == "" {
		path = cfg.Anchors.SeedFile
	}
	if path == "" {
		return fmt.Errorf("no seed file: pass --file or set anchors.seed_file")
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	result, err := loader.New(st).LoadFile(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("failed to load seed file: %w", err)
	}

	fmt.Printf("✓ Anchors: %d created, %d already present\n", result.AnchorsCreated, result.AnchorsExisting)
	fmt.Printf("✓ Profiles: %d created, %d assignments\n", result.ProfilesCreated, result.Assignments)
	return nil
}
