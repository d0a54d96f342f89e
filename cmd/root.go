package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nearbite/nearbite/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "nearbite",
	Short: "Location-aware discount recommendations for nearby restaurants and cafes",
	Long:  "Filters a natural-language query, discovers nearby merchants, resolves the discount programs the user actually qualifies for, and answers with a ranked recommendation.",
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
