package database

import (
	"context"

	"github.com/Rana718/sheetsync/internal/types"
)

type DatabaseAdapter interface {
	Connect(ctx context.Context, url string) error
	Close() error
	Ping(ctx context.Context) error
	Dialect() string

	// Introspection
	CheckTableExists(ctx context.Context, tableName string) (bool, error)
	GetTableColumns(ctx context.Context, tableName string) ([]string, error)
	GetTableRowCount(ctx context.Context, tableName string) (int, error)

	// Backup
	GetTableData(ctx context.Context, tableName string) ([]map[string]interface{}, error)

	// ReplaceTable drops and recreates spec.Name and loads records as one
	// all-or-nothing unit. On error the previous table is left intact and
	// the error is a *common.TransactionError.
	ReplaceTable(ctx context.Context, spec *types.TableSpec, records []types.SyncRecord) error

	// UpsertRecord inserts rec or, when a row with the same key exists,
	// overwrites every column in columns.
	UpsertRecord(ctx context.Context, tableName, key string, columns []string, rec types.SyncRecord) (types.Outcome, error)
}
