package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/market-dashboard/internal/config"
	"github.com/sells-group/market-dashboard/internal/dataset"
	"github.com/sells-group/market-dashboard/internal/model"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "market-dashboard",
	Short: "Oregon I/DD market dashboard",
	Long:  "Serves the county-level I/DD market dashboard: a fixed 36-county dataset, derived tier/opportunity/investment statistics, and a credential-gated view API.",
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

// loadCounties returns the embedded dataset, or the configured override file.
func loadCounties() ([]model.County, error) {
	if cfg.Dataset.Path != "" {
		return dataset.LoadFile(cfg.Dataset.Path)
	}
	return dataset.Load()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
