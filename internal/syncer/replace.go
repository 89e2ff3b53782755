package syncer

import (
	"context"
	"fmt"

	"github.com/Rana718/sheetsync/internal/filter"
	"github.com/Rana718/sheetsync/internal/schema"
	"github.com/Rana718/sheetsync/internal/types"
)

const StrategyFullReplace = "full-replace"

// FullReplace rebuilds the target table from the sheet: the schema is
// derived from the headers and the table is dropped, recreated and loaded
// as one unit.
type FullReplace struct {
	Deps
	Table  string
	Schema schema.Options
}

func NewFullReplace(deps Deps, table string, opts schema.Options) *FullReplace {
	return &FullReplace{Deps: deps, Table: table, Schema: opts}
}

func (f *FullReplace) Name() string {
	return StrategyFullReplace
}

// Plan derives the table the sheet would produce without touching the
// database.
func (f *FullReplace) Plan(snap *types.SheetSnapshot) (*types.TableSpec, error) {
	spec, err := schema.Derive(f.Table, snap.Headers, f.Schema)
	if err != nil {
		return nil, fmt.Errorf("failed to derive schema: %w", err)
	}
	return spec, nil
}

func (f *FullReplace) Run(ctx context.Context, snap *types.SheetSnapshot) (*types.Report, error) {
	report := f.newReport(f.Name(), f.Table, snap)
	report.DryRun = f.DryRun

	if len(snap.Headers) == 0 {
		report.NoOp = true
		return report, f.finish(report)
	}

	spec, err := f.Plan(snap)
	if err != nil {
		return nil, err
	}

	if err := f.recordMapping(f.Table, f.Name(), spec.Columns); err != nil {
		return nil, err
	}

	records := f.prepare(snap, report, func(row []string) map[string]any {
		values := make(map[string]any, len(spec.Columns))
		for i, col := range spec.Columns {
			values[col.SanitizedName] = filter.Normalize(row[i])
		}
		return values
	})

	if len(records) == 0 {
		report.NoOp = true
		return report, f.finish(report)
	}

	if f.DryRun {
		report.Inserted = len(records)
		return report, f.finish(report)
	}

	if f.Confirm != nil && !f.Confirm(f.Table, len(records)) {
		return nil, ErrAborted
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if f.Backup != nil {
		path, err := f.Backup(ctx, f.Table)
		if err != nil {
			return nil, fmt.Errorf("backup of %s failed: %w", f.Table, err)
		}
		report.BackupPath = path
	}

	if err := f.Adapter.ReplaceTable(ctx, spec, records); err != nil {
		report.Errored = len(records)
		if ferr := f.finish(report); ferr != nil {
			return nil, fmt.Errorf("%w (%v)", err, ferr)
		}
		return nil, err
	}

	report.Inserted = len(records)
	return report, f.finish(report)
}
