package mysql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Rana718/sheetsync/internal/database/common"
	"github.com/Rana718/sheetsync/internal/types"
	"github.com/go-sql-driver/mysql"
)

const errBadField = 1054

// ReplaceTable builds the new table under a shadow name and swaps it in
// with a single RENAME TABLE. MySQL commits DDL implicitly, so the live
// table is only touched by the rename; any earlier failure drops the shadow
// and leaves it as it was.
func (m *Adapter) ReplaceTable(ctx context.Context, spec *types.TableSpec, records []types.SyncRecord) error {
	table := spec.Name
	shadow := shadowName(table, "__ss_new")
	retired := shadowName(table, "__ss_old")

	statements, err := common.InsertStatements(m.qb, quote, shadow, spec.ColumnNames(), records, maxParams)
	if err != nil {
		return common.NewTransactionError(table, common.StageInsert, err)
	}

	if _, err := m.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s, %s", quote(shadow), quote(retired))); err != nil {
		return common.NewTransactionError(table, common.StageDrop, err)
	}

	if _, err := m.db.ExecContext(ctx, common.CreateTableSQL(quote, shadow, spec, keyDef, textType)); err != nil {
		return common.NewTransactionError(table, common.StageCreate, err)
	}

	fail := func(stage string, err error) error {
		if _, dropErr := m.db.ExecContext(context.Background(), fmt.Sprintf("DROP TABLE IF EXISTS %s", quote(shadow))); dropErr != nil {
			err = fmt.Errorf("%w (cleanup of %s also failed: %v)", err, shadow, dropErr)
		}
		return common.NewTransactionError(table, stage, err)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fail(common.StageBegin, err)
	}
	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt.SQL, stmt.Args...); err != nil {
			tx.Rollback()
			return fail(common.StageInsert, fmt.Errorf("batch %d: %w", i+1, err))
		}
	}
	if err := tx.Commit(); err != nil {
		return fail(common.StageCommit, err)
	}

	exists, err := m.CheckTableExists(ctx, table)
	if err != nil {
		return fail(common.StageSwap, err)
	}

	rename := fmt.Sprintf("RENAME TABLE %s TO %s", quote(shadow), quote(table))
	if exists {
		rename = fmt.Sprintf("RENAME TABLE %s TO %s, %s TO %s", quote(table), quote(retired), quote(shadow), quote(table))
	}
	if _, err := m.db.ExecContext(ctx, rename); err != nil {
		return fail(common.StageSwap, err)
	}

	if exists {
		if _, err := m.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", quote(retired))); err != nil {
			return fmt.Errorf("table %s replaced but dropping %s failed: %w", table, retired, err)
		}
	}
	return nil
}

func shadowName(table, suffix string) string {
	if len(table)+len(suffix) > maxIdentifier {
		table = table[:maxIdentifier-len(suffix)]
	}
	return table + suffix
}

// UpsertRecord relies on the affected-rows convention of ON DUPLICATE KEY
// UPDATE: 1 for an insert, 2 for a changed row, 0 for an identical one.
func (m *Adapter) UpsertRecord(ctx context.Context, tableName, key string, columns []string, rec types.SyncRecord) (types.Outcome, error) {
	query, args, err := m.upsertSQL(tableName, columns, rec)
	if err != nil {
		return types.OutcomeErrored, err
	}

	res, err := m.db.ExecContext(ctx, query, args...)
	if err != nil {
		return types.OutcomeErrored, classify(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return types.OutcomeErrored, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 1 {
		return types.OutcomeInserted, nil
	}
	return types.OutcomeUpdated, nil
}

func (m *Adapter) upsertSQL(tableName string, columns []string, rec types.SyncRecord) (string, []interface{}, error) {
	set := make([]string, len(columns))
	for i, c := range columns {
		set[i] = fmt.Sprintf("%s = VALUES(%s)", quote(c), quote(c))
	}

	return m.qb.Insert(quote(tableName)).
		Columns(common.QuoteAll(quote, columns)...).
		Values(rec.Args(columns)...).
		Suffix("ON DUPLICATE KEY UPDATE " + strings.Join(set, ", ")).
		ToSql()
}

func classify(err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == errBadField {
		return fmt.Errorf("%w: %s", common.ErrUndefinedColumn, myErr.Message)
	}
	return err
}
