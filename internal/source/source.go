package source

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Rana718/sheetsync/internal/config"
	"github.com/Rana718/sheetsync/internal/types"
)

// ErrNoHeader is wrapped when a source has content but no header row.
var ErrNoHeader = errors.New("source has no header row")

// Reader produces a snapshot of one sheet.
type Reader interface {
	Read(ctx context.Context) (*types.SheetSnapshot, error)
}

// New picks a reader from the configured kind, falling back to the file
// extension when the kind is empty.
func New(cfg config.Source) (Reader, error) {
	kind := strings.ToLower(cfg.Kind)
	if kind == "" {
		kind = strings.TrimPrefix(strings.ToLower(filepath.Ext(cfg.Path)), ".")
	}

	switch kind {
	case "json":
		return &JSONReader{Path: cfg.Path}, nil
	case "csv", "tsv":
		delim := ','
		if kind == "tsv" {
			delim = '\t'
		}
		if cfg.Delimiter != "" {
			delim = []rune(cfg.Delimiter)[0]
		}
		return &CSVReader{Path: cfg.Path, Delimiter: delim}, nil
	case "xlsx", "xlsm":
		return &XLSXReader{Path: cfg.Path, Sheet: cfg.Sheet}, nil
	default:
		return nil, fmt.Errorf("unsupported source kind %q (supported: json, csv, tsv, xlsx)", kind)
	}
}

// snapshot turns raw rows (header first) into a snapshot. No rows at all is
// an empty snapshot, not an error.
func snapshot(raw [][]string) *types.SheetSnapshot {
	if len(raw) == 0 {
		return types.NewSheetSnapshot(nil, nil)
	}
	headers := stripUTF8BOM(raw[0])
	rows := raw[1:]
	for len(rows) > 0 && blankRow(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return types.NewSheetSnapshot(headers, rows)
}

func stripUTF8BOM(headers []string) []string {
	if len(headers) > 0 && strings.HasPrefix(headers[0], "\uFEFF") {
		headers = append([]string(nil), headers...)
		headers[0] = strings.TrimPrefix(headers[0], "\uFEFF")
	}
	return headers
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
