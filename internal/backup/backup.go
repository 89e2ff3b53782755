package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Rana718/sheetsync/internal/database"
	"github.com/Rana718/sheetsync/internal/types"
	"github.com/fatih/color"
)

// BackupManager dumps a table to JSON before it is replaced.
type BackupManager struct {
	adapter    database.DatabaseAdapter
	backupPath string
	now        func() time.Time
}

func NewBackupManager(adapter database.DatabaseAdapter, backupPath string) *BackupManager {
	return &BackupManager{
		adapter:    adapter,
		backupPath: backupPath,
		now:        time.Now,
	}
}

// BackupTable writes every row of table to backup_<table>_<timestamp>.json.
// A missing or empty table yields an empty path and no file.
func (bm *BackupManager) BackupTable(ctx context.Context, table string) (string, error) {
	exists, err := bm.adapter.CheckTableExists(ctx, table)
	if err != nil {
		return "", fmt.Errorf("failed to check table %s: %w", table, err)
	}
	if !exists {
		return "", nil
	}

	rows, err := bm.adapter.GetTableData(ctx, table)
	if err != nil {
		return "", fmt.Errorf("failed to read table %s: %w", table, err)
	}
	if len(rows) == 0 {
		return "", nil
	}

	backup := types.BackupData{
		Timestamp: bm.now().Format("2006-01-02_15-04-05"),
		Table:     table,
		Comment:   "Pre-replace backup",
		Rows:      rows,
	}
	return bm.writeBackupFile(backup)
}

func (bm *BackupManager) writeBackupFile(backup types.BackupData) (string, error) {
	if err := os.MkdirAll(bm.backupPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	filename := fmt.Sprintf("backup_%s_%s.json", backup.Table, backup.Timestamp)
	backupPath := filepath.Join(bm.backupPath, filename)

	file, err := os.Create(backupPath)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return "", fmt.Errorf("failed to write backup data: %w", err)
	}

	color.Green("💾 Backup of %s created: %s", backup.Table, backupPath)
	return backupPath, nil
}

// ReadBackup loads a backup file written by BackupTable.
func ReadBackup(path string) (*types.BackupData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup file: %w", err)
	}
	var backup types.BackupData
	if err := json.Unmarshal(data, &backup); err != nil {
		return nil, fmt.Errorf("failed to parse backup file %s: %w", path, err)
	}
	return &backup, nil
}
