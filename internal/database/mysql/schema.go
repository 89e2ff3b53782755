package mysql

import (
	"context"
	"fmt"

	"github.com/Rana718/sheetsync/internal/database/common"
)

func (m *Adapter) CheckTableExists(ctx context.Context, tableName string) (bool, error) {
	var count int
	err := m.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_name = ?
	`, tableName).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", tableName, err)
	}
	return count > 0, nil
}

func (m *Adapter) GetTableColumns(ctx context.Context, tableName string) ([]string, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT column_name FROM information_schema.columns
		WHERE table_schema = DATABASE() AND table_name = ?
		ORDER BY ordinal_position
	`, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan column name: %w", err)
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%s: %w", tableName, common.ErrTableNotFound)
	}
	return columns, nil
}

func (m *Adapter) GetTableRowCount(ctx context.Context, tableName string) (int, error) {
	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", quote(tableName))
	if err := m.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows in table %s: %w", tableName, err)
	}
	return count, nil
}

func (m *Adapter) GetTableData(ctx context.Context, tableName string) ([]map[string]interface{}, error) {
	rows, err := m.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s", quote(tableName)))
	if err != nil {
		return nil, fmt.Errorf("failed to query table %s: %w", tableName, err)
	}
	defer rows.Close()
	return common.ScanRows(rows)
}
