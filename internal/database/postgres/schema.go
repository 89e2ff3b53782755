package postgres

import (
	"context"
	"fmt"

	"github.com/Rana718/sheetsync/internal/database/common"
	"github.com/jackc/pgx/v5"
)

func (p *Adapter) CheckTableExists(ctx context.Context, tableName string) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_name = $1 AND table_schema = current_schema()
		)
	`, tableName).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", tableName, err)
	}
	return exists, nil
}

func (p *Adapter) GetTableColumns(ctx context.Context, tableName string) ([]string, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_name = $1 AND table_schema = current_schema()
		ORDER BY ordinal_position
	`, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}

	columns, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan columns for table %s: %w", tableName, err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%s: %w", tableName, common.ErrTableNotFound)
	}
	return columns, nil
}

func (p *Adapter) GetTableRowCount(ctx context.Context, tableName string) (int, error) {
	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", quote(tableName))
	if err := p.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows in table %s: %w", tableName, err)
	}
	return count, nil
}

func (p *Adapter) GetTableData(ctx context.Context, tableName string) ([]map[string]interface{}, error) {
	rows, err := p.pool.Query(ctx, fmt.Sprintf("SELECT * FROM %s", quote(tableName)))
	if err != nil {
		return nil, fmt.Errorf("failed to query table %s: %w", tableName, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	result := []map[string]interface{}{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(map[string]interface{}, len(fields))
		for i, fd := range fields {
			switch v := values[i].(type) {
			case []byte:
				row[fd.Name] = string(v)
			case nil, string, bool, int16, int32, int64, float32, float64:
				row[fd.Name] = v
			default:
				row[fd.Name] = fmt.Sprintf("%v", v)
			}
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
