package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/Rana718/sheetsync/internal/database"
	"github.com/Rana718/sheetsync/internal/filter"
	"github.com/Rana718/sheetsync/internal/types"
	"github.com/zeebo/xxh3"
)

// Strategy is one way of bringing a table in line with a sheet.
type Strategy interface {
	Name() string
	Run(ctx context.Context, snap *types.SheetSnapshot) (*types.Report, error)
}

// Auditor receives the column mapping before any mutating statement and
// the report once the run is over.
type Auditor interface {
	RecordMapping(table, strategy string, columns []types.ColumnSpec) error
	RecordRun(report *types.Report) error
}

// ConfirmFunc may veto a destructive run after the mapping was shown.
type ConfirmFunc func(table string, rows int) bool

// BackupFunc saves the current table and returns where it went; an empty
// path means there was nothing to save.
type BackupFunc func(ctx context.Context, table string) (string, error)

// Deps are the collaborators shared by every strategy.
type Deps struct {
	Adapter database.DatabaseAdapter
	Filter  *filter.Filter
	Auditor Auditor
	Confirm ConfirmFunc
	Backup  BackupFunc
	DryRun  bool
}

func (d *Deps) newReport(strategy, table string, snap *types.SheetSnapshot) *types.Report {
	return &types.Report{
		Strategy:    strategy,
		Table:       table,
		Fingerprint: Fingerprint(snap),
		RowsRead:    len(snap.Rows),
		StartedAt:   time.Now(),
	}
}

// prepare projects every sheet row through project and runs the filter.
// Blank cells are turned into nil by project.
func (d *Deps) prepare(snap *types.SheetSnapshot, report *types.Report, project func(row []string) map[string]any) []types.SyncRecord {
	records := make([]types.SyncRecord, len(snap.Rows))
	for i, row := range snap.Rows {
		records[i] = types.SyncRecord{SourceRow: types.SourceRow(i), Values: project(row)}
	}

	if d.Filter == nil {
		return records
	}
	res := d.Filter.Apply(records)
	if len(res.Dropped) > 0 {
		report.Filtered = res.CountByReason()
	}
	return res.Kept
}

func (d *Deps) recordMapping(table, strategy string, columns []types.ColumnSpec) error {
	if d.Auditor == nil {
		return nil
	}
	if err := d.Auditor.RecordMapping(table, strategy, columns); err != nil {
		return fmt.Errorf("failed to record column mapping: %w", err)
	}
	return nil
}

func (d *Deps) finish(report *types.Report) error {
	report.Duration = time.Since(report.StartedAt)
	if d.Auditor == nil {
		return nil
	}
	if err := d.Auditor.RecordRun(report); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// Fingerprint hashes the snapshot content so two runs over identical data
// can be told apart from runs over changed data.
func Fingerprint(snap *types.SheetSnapshot) string {
	h := xxh3.New()
	for _, header := range snap.Headers {
		h.WriteString(header)
		h.Write([]byte{0x1f})
	}
	for _, row := range snap.Rows {
		h.Write([]byte{0x1e})
		for _, cell := range row {
			h.WriteString(cell)
			h.Write([]byte{0x1f})
		}
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
