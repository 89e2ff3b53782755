package cmd

import (
	"fmt"

	"github.com/Rana718/sheetsync/internal/database"
	"github.com/Rana718/sheetsync/internal/export"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the target table as a sheet",
	Long: `
Write the target table to a file with the column names as header row.
The output can be used as a source for another sync.

Examples:
  sheetsync export
  sheetsync export --format csv --out db/export`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")

		dbURL, err := cfg.GetDatabaseURL()
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		adapter, err := database.NewAdapter(cfg.Provider())
		if err != nil {
			return err
		}
		if err := adapter.Connect(ctx, dbURL); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer adapter.Close()

		path, err := export.PerformExport(ctx, adapter, cfg.Target.Table, out, format)
		if err != nil {
			return err
		}
		color.Green("📤 Exported %s to %s", cfg.Target.Table, path)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("format", "json", "Output format: json, csv or xlsx")
	exportCmd.Flags().String("out", "db/export", "Output directory")
}
