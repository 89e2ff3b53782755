package cmd

import (
	"github.com/Rana718/sheetsync/internal/syncer"
	"github.com/spf13/cobra"
)

var upsertCmd = &cobra.Command{
	Use:   "upsert",
	Short: "Insert or update rows of an existing table",
	Long: `
Write the mapped sheet columns into an existing table. Rows whose key
already exists are updated, others are inserted. Each row is handled on
its own: a failing row is reported and the rest still sync.

The column mapping comes from target.column_map, target.column_map_file
or the COLUMN_MAP environment variable, and must include target.primary_key.

Examples:
  sheetsync upsert
  sheetsync upsert --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		mapping, err := cfg.ValidateUpsert()
		if err != nil {
			return err
		}

		dryRun, _ := cmd.Flags().GetBool("dry-run")

		ctx, cancel := signalContext()
		defer cancel()

		// Dry runs still connect: the table check is the useful part.
		s, err := openSession(ctx, cmd, cfg, dryRun, true)
		if err != nil {
			return err
		}
		defer s.Close()

		st := syncer.NewUpsert(s.deps, cfg.Target.Table, cfg.Target.PrimaryKey, mapping)
		return runStrategy(ctx, st, s.snap)
	},
}

func init() {
	upsertCmd.Flags().Bool("dry-run", false, "Check the mapping against the table without writing")
}
