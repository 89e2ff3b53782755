package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Rana718/sheetsync/internal/database/common"
	"github.com/Rana718/sheetsync/internal/types"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const undefinedColumn = "42703"

// ReplaceTable drops, recreates and COPYs the table inside one transaction.
func (p *Adapter) ReplaceTable(ctx context.Context, spec *types.TableSpec, records []types.SyncRecord) error {
	table := spec.Name
	columns := spec.ColumnNames()

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return common.NewTransactionError(table, common.StageBegin, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", quote(table))); err != nil {
		return common.NewTransactionError(table, common.StageDrop, err)
	}

	if _, err := tx.Exec(ctx, common.CreateTableSQL(quote, table, spec, keyDef, textType)); err != nil {
		return common.NewTransactionError(table, common.StageCreate, err)
	}

	if len(columns) > 0 {
		rows := make([][]interface{}, len(records))
		for i, rec := range records {
			rows[i] = rec.Args(columns)
		}
		copied, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
		if err != nil {
			return common.NewTransactionError(table, common.StageInsert, err)
		}
		if copied != int64(len(records)) {
			return common.NewTransactionError(table, common.StageInsert,
				fmt.Errorf("copied %d of %d rows", copied, len(records)))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return common.NewTransactionError(table, common.StageCommit, err)
	}
	return nil
}

func (p *Adapter) UpsertRecord(ctx context.Context, tableName, key string, columns []string, rec types.SyncRecord) (types.Outcome, error) {
	query, args, err := p.upsertSQL(tableName, key, columns, rec)
	if err != nil {
		return types.OutcomeErrored, err
	}

	var inserted bool
	if err := p.pool.QueryRow(ctx, query, args...).Scan(&inserted); err != nil {
		return types.OutcomeErrored, classify(err)
	}
	if inserted {
		return types.OutcomeInserted, nil
	}
	return types.OutcomeUpdated, nil
}

// upsertSQL returns (xmax = 0), which is true only for a freshly inserted
// row version.
func (p *Adapter) upsertSQL(tableName, key string, columns []string, rec types.SyncRecord) (string, []interface{}, error) {
	set := make([]string, len(columns))
	for i, c := range columns {
		set[i] = fmt.Sprintf("%s = EXCLUDED.%s", quote(c), quote(c))
	}

	return p.qb.Insert(quote(tableName)).
		Columns(common.QuoteAll(quote, columns)...).
		Values(rec.Args(columns)...).
		Suffix(fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s RETURNING (xmax = 0)", quote(key), strings.Join(set, ", "))).
		ToSql()
}

func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == undefinedColumn {
		return fmt.Errorf("%w: %s", common.ErrUndefinedColumn, pgErr.Message)
	}
	return err
}
