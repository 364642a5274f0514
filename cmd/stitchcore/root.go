package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stitchcore/internal/core"
)

// Global flag values.
var (
	flagConfigFile  string
	flagDriver      string
	flagSQLitePath  string
	flagPostgresDSN string
	flagJSON        bool
)

// svc is the service instance opened by PersistentPreRunE for the duration
// of one command invocation.
var svc *core.Service

var rootCmd = &cobra.Command{
	Use:   "stitchcore",
	Short: "stitchcore manages garment designs through their production lifecycle",
	Long: `stitchcore tracks garment designs, material compositions, design
attributes, and supplier engagements, enforcing composition and
compatibility rules on every change.`,
	SilenceUsage:      true,
	PersistentPreRunE: openService,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeService()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigFile, "config", "", "config file (default: ./stitchcore.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagDriver, "storage-driver", "", "storage driver: memory|sqlite|postgres")
	rootCmd.PersistentFlags().StringVar(&flagSQLitePath, "sqlite-path", "", "sqlite database path")
	rootCmd.PersistentFlags().StringVar(&flagPostgresDSN, "postgres-dsn", "", "postgres connection string")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(garmentCmd)
	rootCmd.AddCommand(materialCmd)
	rootCmd.AddCommand(attributeCmd)
	rootCmd.AddCommand(supplierCmd)
	rootCmd.AddCommand(exportCmd)
}

// openService loads config and opens the backing store. Commands that never
// touch the store skip it.
func openService(cmd *cobra.Command, args []string) error {
	switch cmd.Name() {
	case "version", "help", "completion":
		return nil
	}

	cfg, err := resolveStorageConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	store, err := core.OpenPersistentStore(cfg, core.NewDefaultRulesEngine())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	svc = core.NewService(store)
	return nil
}

func closeService() error {
	if svc != nil {
		return svc.Close()
	}
	return nil
}
