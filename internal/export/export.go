package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Rana718/sheetsync/internal/database"
	"github.com/Rana718/sheetsync/internal/types"
	"github.com/xuri/excelize/v2"
)

// PerformExport writes table back out in a sheet shape: the column names
// as the header row, NULL as an empty cell. The result can be read again
// by the matching source reader.
func PerformExport(ctx context.Context, adapter database.DatabaseAdapter, table, exportPath, format string) (string, error) {
	exists, err := adapter.CheckTableExists(ctx, table)
	if err != nil {
		return "", fmt.Errorf("failed to check table %s: %w", table, err)
	}
	if !exists {
		return "", fmt.Errorf("table %s does not exist", table)
	}

	snap, err := TableSnapshot(ctx, adapter, table)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(exportPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	base := filepath.Join(exportPath, fmt.Sprintf("export_%s_%s", table, timestamp))

	switch format {
	case "csv":
		return exportToCSV(snap, base+".csv")
	case "xlsx":
		return exportToXLSX(snap, table, base+".xlsx")
	case "json", "":
		return exportToJSON(snap, base+".json")
	default:
		return "", fmt.Errorf("unsupported export format %q (supported: json, csv, xlsx)", format)
	}
}

// TableSnapshot reads table into a snapshot, columns in table order.
func TableSnapshot(ctx context.Context, adapter database.DatabaseAdapter, table string) (*types.SheetSnapshot, error) {
	columns, err := adapter.GetTableColumns(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	data, err := adapter.GetTableData(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", table, err)
	}

	rows := make([][]string, len(data))
	for i, row := range data {
		cells := make([]string, len(columns))
		for j, col := range columns {
			if v := row[col]; v != nil {
				cells[j] = fmt.Sprintf("%v", v)
			}
		}
		rows[i] = cells
	}
	return types.NewSheetSnapshot(columns, rows), nil
}

func exportToJSON(snap *types.SheetSnapshot, filePath string) (string, error) {
	jsonData, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal data: %w", err)
	}
	if err := os.WriteFile(filePath, jsonData, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return filePath, nil
}

func exportToCSV(snap *types.SheetSnapshot, filePath string) (string, error) {
	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(snap.Headers); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writer.WriteAll(snap.Rows); err != nil {
		return "", fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return filePath, nil
}

func exportToXLSX(snap *types.SheetSnapshot, sheet, filePath string) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if len(sheet) > 31 {
		sheet = sheet[:31]
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return "", fmt.Errorf("failed to name sheet: %w", err)
	}

	write := func(row int, cells []string) error {
		values := make([]interface{}, len(cells))
		for i, c := range cells {
			values[i] = c
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		return f.SetSheetRow(sheet, cell, &values)
	}

	if err := write(1, snap.Headers); err != nil {
		return "", fmt.Errorf("failed to write header row: %w", err)
	}
	for i, row := range snap.Rows {
		if err := write(i+2, row); err != nil {
			return "", fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}
	return filePath, nil
}
