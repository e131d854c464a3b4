package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gifia/fraud-intel/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "fraud-intel",
	Short: "Insurance fraud case harvesting pipeline",
	Long:  "Searches the open web for life and health insurance fraud cases, extracts structured SIU briefings via tiered LLMs, and persists deduplicated records.",
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
