package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/market-dashboard/internal/export"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the dataset and derived statistics to an XLSX workbook",
	RunE: func(cmd *cobra.Command, _ []string) error {
		counties, err := loadCounties()
		if err != nil {
			return err
		}

		if err := export.WriteWorkbook(counties, exportOut); err != nil {
			return err
		}

		zap.L().Info("workbook written",
			zap.String("path", exportOut),
			zap.Int("counties", len(counties)),
		)
		fmt.Fprintf(os.Stderr, "Wrote %s\n", exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "market-dashboard.xlsx", "output workbook path")
	rootCmd.AddCommand(exportCmd)
}
