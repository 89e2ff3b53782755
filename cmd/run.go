package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Rana718/sheetsync/internal/config"
	"github.com/Rana718/sheetsync/internal/database"
	"github.com/Rana718/sheetsync/internal/filter"
	"github.com/Rana718/sheetsync/internal/report"
	"github.com/Rana718/sheetsync/internal/source"
	"github.com/Rana718/sheetsync/internal/syncer"
	"github.com/Rana718/sheetsync/internal/types"
	"github.com/Rana718/sheetsync/internal/utils"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// session is everything a sync command needs once config, sheet and
// database are loaded.
type session struct {
	cfg     *config.Config
	snap    *types.SheetSnapshot
	adapter database.DatabaseAdapter
	audit   *report.AuditLog
	deps    syncer.Deps
}

func (s *session) Close() {
	if s.adapter != nil {
		s.adapter.Close()
	}
	if s.audit != nil {
		s.audit.Close()
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func readSheet(ctx context.Context, cfg *config.Config) (*types.SheetSnapshot, error) {
	reader, err := source.New(cfg.Source)
	if err != nil {
		return nil, err
	}
	snap, err := reader.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", cfg.Source.Path, err)
	}
	return snap, nil
}

// openSession reads the sheet and wires the shared strategy dependencies.
// The database is only opened when needDB is set.
func openSession(ctx context.Context, cmd *cobra.Command, cfg *config.Config, dryRun, needDB bool) (*session, error) {
	snap, err := readSheet(ctx, cfg)
	if err != nil {
		return nil, err
	}

	f, err := filter.New(cfg.Filter.RequiredGroups, cfg.Filter.Deny)
	if err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}

	s := &session{cfg: cfg, snap: snap}
	s.audit = report.NewAuditLog(cfg.Audit.Path, cfg.Audit.MaxSizeMB, cfg.Audit.MaxBackups)

	force, _ := cmd.Flags().GetBool("force")
	input := &utils.InputUtils{}
	s.deps = syncer.Deps{
		Filter:  f,
		Auditor: report.Multi{report.NewConsole(os.Stdout), s.audit},
		DryRun:  dryRun,
		Confirm: func(table string, rows int) bool {
			return input.AskConfirmation(fmt.Sprintf("⚠️  Write %d row(s) to table %s?", rows, table), force)
		},
	}

	if !needDB {
		return s, nil
	}

	dbURL, err := cfg.GetDatabaseURL()
	if err != nil {
		s.Close()
		return nil, err
	}
	adapter, err := database.NewAdapter(cfg.Provider())
	if err != nil {
		s.Close()
		return nil, err
	}
	if err := adapter.Connect(ctx, dbURL); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	s.adapter = adapter
	s.deps.Adapter = adapter

	if err := adapter.Ping(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return s, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// runStrategy executes st and turns failed rows into a non-zero exit.
func runStrategy(ctx context.Context, st syncer.Strategy, snap *types.SheetSnapshot) error {
	r, err := st.Run(ctx, snap)
	if err != nil {
		return err
	}
	if r.Errored > 0 {
		return fmt.Errorf("%d row(s) failed to sync", r.Errored)
	}
	if r.NoOp {
		color.Yellow("ℹ️  Table %s was left unchanged", r.Table)
	}
	return nil
}
