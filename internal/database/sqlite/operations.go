package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Rana718/sheetsync/internal/database/common"
	"github.com/Rana718/sheetsync/internal/types"
	"github.com/mattn/go-sqlite3"
)

// ReplaceTable runs DROP, CREATE and the inserts in one transaction; SQLite
// DDL is transactional so a rollback restores the previous table.
func (s *Adapter) ReplaceTable(ctx context.Context, spec *types.TableSpec, records []types.SyncRecord) error {
	table := spec.Name

	statements, err := common.InsertStatements(s.qb, quote, table, spec.ColumnNames(), records, maxParams)
	if err != nil {
		return common.NewTransactionError(table, common.StageInsert, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return common.NewTransactionError(table, common.StageBegin, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", quote(table))); err != nil {
		return common.NewTransactionError(table, common.StageDrop, err)
	}

	if _, err := tx.ExecContext(ctx, common.CreateTableSQL(quote, table, spec, keyDef, textType)); err != nil {
		return common.NewTransactionError(table, common.StageCreate, err)
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt.SQL, stmt.Args...); err != nil {
			return common.NewTransactionError(table, common.StageInsert, fmt.Errorf("batch %d: %w", i+1, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return common.NewTransactionError(table, common.StageCommit, err)
	}
	return nil
}

// UpsertRecord probes for the key and upserts in one short transaction so
// the outcome can be reported.
func (s *Adapter) UpsertRecord(ctx context.Context, tableName, key string, columns []string, rec types.SyncRecord) (types.Outcome, error) {
	query, args, err := s.upsertSQL(tableName, key, columns, rec)
	if err != nil {
		return types.OutcomeErrored, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return types.OutcomeErrored, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	probe := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?", quote(tableName), quote(key))
	if err := tx.QueryRowContext(ctx, probe, rec.Values[key]).Scan(&exists); err != nil {
		return types.OutcomeErrored, classify(err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return types.OutcomeErrored, classify(err)
	}

	if err := tx.Commit(); err != nil {
		return types.OutcomeErrored, fmt.Errorf("failed to commit upsert: %w", err)
	}

	if exists > 0 {
		return types.OutcomeUpdated, nil
	}
	return types.OutcomeInserted, nil
}

func (s *Adapter) upsertSQL(tableName, key string, columns []string, rec types.SyncRecord) (string, []interface{}, error) {
	set := make([]string, len(columns))
	for i, c := range columns {
		set[i] = fmt.Sprintf("%s = excluded.%s", quote(c), quote(c))
	}

	return s.qb.Insert(quote(tableName)).
		Columns(common.QuoteAll(quote, columns)...).
		Values(rec.Args(columns)...).
		Suffix(fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s", quote(key), strings.Join(set, ", "))).
		ToSql()
}

func classify(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrError {
		msg := sqliteErr.Error()
		if strings.Contains(msg, "no such column") || strings.Contains(msg, "has no column named") {
			return fmt.Errorf("%w: %v", common.ErrUndefinedColumn, err)
		}
	}
	return err
}
