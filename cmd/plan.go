package cmd

import (
	"fmt"
	"os"

	"github.com/Rana718/sheetsync/internal/report"
	"github.com/Rana718/sheetsync/internal/schema"
	"github.com/Rana718/sheetsync/internal/syncer"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the column mapping and filter result without a database",
	Long: `
Read the sheet, derive (replace) or resolve (upsert) the column mapping and
apply the row filter. Nothing is written and no database connection is made.

Examples:
  sheetsync plan
  sheetsync plan --mode upsert`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		mode, _ := cmd.Flags().GetString("mode")

		ctx, cancel := signalContext()
		defer cancel()

		s, err := openSession(ctx, cmd, cfg, true, false)
		if err != nil {
			return err
		}
		defer s.Close()
		s.deps.Auditor = report.NewConsole(os.Stdout)

		switch mode {
		case syncer.StrategyFullReplace, "replace":
			st := syncer.NewFullReplace(s.deps, cfg.Target.Table, schema.Options{
				FoldAccents:         cfg.Schema.FoldAccents,
				MaxIdentifierLength: cfg.Schema.MaxIdentifierLength,
			})
			_, err := st.Run(ctx, s.snap)
			return err
		case syncer.StrategyUpsert:
			mapping, err := cfg.ValidateUpsert()
			if err != nil {
				return err
			}
			// Upsert dry runs need the live table, so only the mapping
			// is shown here.
			if err := s.deps.Auditor.RecordMapping(cfg.Target.Table, syncer.StrategyUpsert, mapping.Specs()); err != nil {
				return err
			}
			color.Cyan("🔍 Run 'sheetsync upsert --dry-run' to check it against the table")
			return nil
		default:
			return fmt.Errorf("unknown mode %q (use replace or upsert)", mode)
		}
	},
}

func init() {
	planCmd.Flags().String("mode", "replace", "Strategy to plan: replace or upsert")
}
