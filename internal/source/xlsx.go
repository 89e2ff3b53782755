package source

import (
	"context"
	"fmt"

	"github.com/Rana718/sheetsync/internal/types"
	"github.com/xuri/excelize/v2"
)

// XLSXReader reads one worksheet of a workbook. An empty Sheet selects the
// first sheet.
type XLSXReader struct {
	Path  string
	Sheet string
}

func (r *XLSXReader) Read(ctx context.Context) (*types.SheetSnapshot, error) {
	f, err := excelize.OpenFile(r.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", r.Path, err)
	}
	defer f.Close()

	sheet := r.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return snapshot(nil), nil
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return snapshot(rows), nil
}
