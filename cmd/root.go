package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/captiveadvisors/directory/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "directory",
	Short: "CPA and wealth-advisor directory with a lead-gen ingestion pipeline",
	Long:  "Scrapes advisor listing sites, scores and rewrites candidates, serves the directory REST API, and syncs captured leads to Salesforce.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
