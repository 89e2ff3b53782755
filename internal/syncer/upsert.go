package syncer

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rana718/sheetsync/internal/database/common"
	"github.com/Rana718/sheetsync/internal/filter"
	"github.com/Rana718/sheetsync/internal/types"
)

const StrategyUpsert = "upsert"

// Upsert writes every kept row to an existing table keyed by Key. Rows are
// independent: a failing row is recorded and the run moves on.
type Upsert struct {
	Deps
	Table   string
	Key     string
	Mapping types.ColumnMapping
}

func NewUpsert(deps Deps, table, key string, mapping types.ColumnMapping) *Upsert {
	return &Upsert{Deps: deps, Table: table, Key: key, Mapping: mapping}
}

func (u *Upsert) Name() string {
	return StrategyUpsert
}

func (u *Upsert) Run(ctx context.Context, snap *types.SheetSnapshot) (*types.Report, error) {
	report := u.newReport(u.Name(), u.Table, snap)
	report.DryRun = u.DryRun

	if len(snap.Headers) == 0 || snap.IsEmpty() {
		report.NoOp = true
		return report, u.finish(report)
	}

	index, err := u.headerIndex(snap.Headers)
	if err != nil {
		return nil, err
	}
	columns := u.Mapping.Columns()

	if err := u.recordMapping(u.Table, u.Name(), u.Mapping.Specs()); err != nil {
		return nil, err
	}

	records := u.prepare(snap, report, func(row []string) map[string]any {
		values := make(map[string]any, len(u.Mapping))
		for _, p := range u.Mapping {
			values[p.Column] = filter.Normalize(row[index[p.Header]])
		}
		return values
	})

	if len(records) == 0 {
		report.NoOp = true
		return report, u.finish(report)
	}

	missing, err := u.preflight(ctx, columns)
	if err != nil {
		return nil, err
	}

	if u.DryRun {
		return report, u.finish(report)
	}

	if u.Confirm != nil && !u.Confirm(u.Table, len(records)) {
		return nil, ErrAborted
	}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			if ferr := u.finish(report); ferr != nil {
				return report, fmt.Errorf("%w (%v)", err, ferr)
			}
			return report, err
		}

		if len(missing) > 0 {
			u.fail(report, rec.SourceRow, &SchemaMismatchError{Table: u.Table, Columns: missing, SourceRow: rec.SourceRow})
			continue
		}
		if filter.IsBlank(rec.Values[u.Key]) {
			u.skip(report, rec.SourceRow, &RowError{SourceRow: rec.SourceRow, Err: fmt.Errorf("key column %q is blank", u.Key)})
			continue
		}

		outcome, err := u.Adapter.UpsertRecord(ctx, u.Table, u.Key, columns, rec)
		if err != nil {
			if errors.Is(err, common.ErrUndefinedColumn) {
				err = &SchemaMismatchError{Table: u.Table, SourceRow: rec.SourceRow, Reason: err.Error()}
			}
			u.fail(report, rec.SourceRow, &RowError{SourceRow: rec.SourceRow, Err: err})
			continue
		}

		switch outcome {
		case types.OutcomeInserted:
			report.Inserted++
		case types.OutcomeUpdated:
			report.Updated++
		}
	}

	return report, u.finish(report)
}

// headerIndex locates every mapped header in the sheet. A duplicated sheet
// header resolves to its first occurrence.
func (u *Upsert) headerIndex(headers []string) (map[string]int, error) {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		if _, seen := index[h]; !seen {
			index[h] = i
		}
	}

	var absent []string
	for _, p := range u.Mapping {
		if _, ok := index[p.Header]; !ok {
			absent = append(absent, p.Header)
		}
	}
	if len(absent) > 0 {
		return nil, &MissingHeaderError{Headers: absent}
	}
	return index, nil
}

// preflight checks the live table. A missing table or key column refuses
// the whole run; other missing columns are returned so that every row can
// be reported on its own.
func (u *Upsert) preflight(ctx context.Context, columns []string) ([]string, error) {
	exists, err := u.Adapter.CheckTableExists(ctx, u.Table)
	if err != nil {
		return nil, fmt.Errorf("failed to check table %s: %w", u.Table, err)
	}
	if !exists {
		return nil, &SchemaMismatchError{Table: u.Table, Reason: "table does not exist"}
	}

	live, err := u.Adapter.GetTableColumns(ctx, u.Table)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", u.Table, err)
	}
	have := make(map[string]bool, len(live))
	for _, c := range live {
		have[c] = true
	}
	if !have[u.Key] {
		return nil, &SchemaMismatchError{Table: u.Table, Columns: []string{u.Key}, Reason: fmt.Sprintf("key column %q does not exist", u.Key)}
	}

	var missing []string
	for _, c := range columns {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	return missing, nil
}

func (u *Upsert) fail(report *types.Report, row int, err error) {
	report.Errored++
	report.Failures = append(report.Failures, types.RowFailure{SourceRow: row, Error: err.Error(), Err: err})
}

// skip records a row that was never sent to the database.
func (u *Upsert) skip(report *types.Report, row int, err error) {
	report.Skipped++
	report.Failures = append(report.Failures, types.RowFailure{SourceRow: row, Error: err.Error(), Err: err})
}
