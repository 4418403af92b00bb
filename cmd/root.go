package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openclimate/urban-classifier/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "urban-classifier",
	Short: "Classify weather-station locations by Local Climate Zone",
	Long:  "Samples a global LCZ raster at station coordinates and labels each station with its zone code, name and urban/suburban/rural category.",
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
