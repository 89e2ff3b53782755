package common

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/Rana718/sheetsync/internal/types"
)

type Statement struct {
	SQL  string
	Args []interface{}
}

// Quoter quotes one identifier for a dialect.
type Quoter func(name string) string

// QuoteAll quotes every name with q.
func QuoteAll(q Quoter, names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = q(n)
	}
	return out
}

// CreateTableSQL renders the DDL of a derived table: the surrogate key
// definition followed by one nullable column per header.
func CreateTableSQL(q Quoter, name string, spec *types.TableSpec, keyDef, textType string) string {
	lines := make([]string, 0, len(spec.Columns)+1)
	lines = append(lines, fmt.Sprintf("  %s %s", q(spec.PrimaryKey), keyDef))
	for _, column := range spec.Columns {
		lines = append(lines, fmt.Sprintf("  %s %s", q(column.SanitizedName), textType))
	}
	return fmt.Sprintf("CREATE TABLE %s (\n%s\n)", q(name), strings.Join(lines, ",\n"))
}

// InsertStatements splits records into multi-row INSERT statements, each
// binding at most maxParams values.
func InsertStatements(qb squirrel.StatementBuilderType, q Quoter, table string, columns []string, records []types.SyncRecord, maxParams int) ([]Statement, error) {
	if len(columns) == 0 || len(records) == 0 {
		return nil, nil
	}

	perBatch := maxParams / len(columns)
	if perBatch < 1 {
		perBatch = 1
	}

	quoted := QuoteAll(q, columns)
	statements := make([]Statement, 0, len(records)/perBatch+1)
	for start := 0; start < len(records); start += perBatch {
		end := start + perBatch
		if end > len(records) {
			end = len(records)
		}

		insert := qb.Insert(q(table)).Columns(quoted...)
		for _, rec := range records[start:end] {
			insert = insert.Values(rec.Args(columns)...)
		}

		query, args, err := insert.ToSql()
		if err != nil {
			return nil, fmt.Errorf("failed to build insert for rows %d-%d: %w", records[start].SourceRow, records[end-1].SourceRow, err)
		}
		statements = append(statements, Statement{SQL: query, Args: args})
	}
	return statements, nil
}

// ScanRows reads every row into a column-keyed map, turning byte slices
// into strings.
func ScanRows(rows *sql.Rows) ([]map[string]interface{}, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	result := []map[string]interface{}{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
