package cmd

import (
	"github.com/Rana718/sheetsync/internal/backup"
	"github.com/Rana718/sheetsync/internal/schema"
	"github.com/Rana718/sheetsync/internal/syncer"
	"github.com/spf13/cobra"
)

var replaceCmd = &cobra.Command{
	Use:   "replace",
	Short: "Rebuild the target table from the sheet",
	Long: `
Drop and recreate the target table with one TEXT column per sheet header,
then load every row that passes the filter. The whole operation is atomic:
on failure the previous table is left untouched.

Headers are turned into column names (lowercase, [a-z0-9_], max 63 chars);
collisions get a numeric suffix. The mapping is printed and written to the
audit log before anything is changed.

⚠️  WARNING: existing rows in the target table are discarded.

Examples:
  sheetsync replace
  sheetsync replace --backup
  sheetsync replace --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		dryRun, _ := cmd.Flags().GetBool("dry-run")
		withBackup, _ := cmd.Flags().GetBool("backup")

		ctx, cancel := signalContext()
		defer cancel()

		s, err := openSession(ctx, cmd, cfg, dryRun, !dryRun)
		if err != nil {
			return err
		}
		defer s.Close()

		if withBackup && s.adapter != nil {
			s.deps.Backup = backup.NewBackupManager(s.adapter, cfg.BackupPath).BackupTable
		}

		st := syncer.NewFullReplace(s.deps, cfg.Target.Table, schema.Options{
			FoldAccents:         cfg.Schema.FoldAccents,
			MaxIdentifierLength: cfg.Schema.MaxIdentifierLength,
		})
		return runStrategy(ctx, st, s.snap)
	},
}

func init() {
	replaceCmd.Flags().Bool("dry-run", false, "Show the derived schema and row counts without touching the database")
	replaceCmd.Flags().Bool("backup", false, "Save the current table to the backup directory first")
}
