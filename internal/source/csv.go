package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Rana718/sheetsync/internal/types"
)

// CSVReader reads a delimited export. Ragged rows are padded or cut to the
// header width.
type CSVReader struct {
	Path      string
	Delimiter rune
}

func (r *CSVReader) Read(ctx context.Context) (*types.SheetSnapshot, error) {
	f, err := os.Open(r.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", r.Path, err)
	}
	defer f.Close()
	return readCSV(ctx, f, r.Delimiter)
}

func readCSV(ctx context.Context, in io.Reader, delim rune) (*types.SheetSnapshot, error) {
	cr := csv.NewReader(in)
	if delim != 0 {
		cr.Comma = delim
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var raw [][]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV: %w", err)
		}
		raw = append(raw, rec)
	}
	return snapshot(raw), nil
}
