package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skyfield-labs/aeromap/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "aeromap",
	Short: "Aerospace facility geocoding and supplier mapping",
	Long:  "Resolves facility addresses through a fallback chain of geocoding services, then maps nearby industrial suppliers from OpenStreetMap data.",
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
