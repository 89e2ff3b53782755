package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/Rana718/sheetsync/internal/types"
)

// JSONReader reads a values dump as written by the Sheets API: either a
// bare array of rows, an API response with a "values" field, an object
// with explicit "headers" and "rows", or an array of row objects keyed by
// header.
type JSONReader struct {
	Path string
}

type jsonDocument struct {
	Values  [][]any `json:"values"`
	Headers []any   `json:"headers"`
	Rows    [][]any `json:"rows"`
}

func (r *JSONReader) Read(ctx context.Context) (*types.SheetSnapshot, error) {
	data, err := os.ReadFile(r.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.Path, err)
	}
	return parseJSON(data)
}

func parseJSON(data []byte) (*types.SheetSnapshot, error) {
	data = bytes.TrimSpace(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	if len(data) == 0 {
		return snapshot(nil), nil
	}

	if data[0] == '[' {
		if rest := bytes.TrimSpace(data[1:]); len(rest) > 0 && rest[0] == '{' {
			return parseJSONObjects(data)
		}
		var values [][]any
		if err := json.Unmarshal(data, &values); err != nil {
			return nil, fmt.Errorf("failed to parse JSON rows: %w", err)
		}
		return snapshot(stringify(values)), nil
	}

	var doc jsonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON document: %w", err)
	}
	if doc.Headers != nil {
		raw := append([][]any{doc.Headers}, doc.Rows...)
		return snapshot(stringify(raw)), nil
	}
	if len(doc.Rows) > 0 {
		return nil, ErrNoHeader
	}
	return snapshot(stringify(doc.Values)), nil
}

// parseJSONObjects reads an array of objects, one per row. Headers follow
// the key order of the first object; keys first seen in a later row are
// appended after them.
func parseJSONObjects(data []byte) (*types.SheetSnapshot, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to parse JSON objects: %w", err)
	}

	var headers []string
	index := make(map[string]int)
	var rows [][]string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to parse JSON objects: %w", err)
		}
		if d, ok := tok.(json.Delim); !ok || d != '{' {
			return nil, fmt.Errorf("failed to parse JSON objects: row %d is not an object", types.SourceRow(len(rows)))
		}

		row := make([]string, len(headers))
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("failed to parse JSON objects: %w", err)
			}
			key, _ := tok.(string)
			var value any
			if err := dec.Decode(&value); err != nil {
				return nil, fmt.Errorf("failed to parse value of %q in row %d: %w", key, types.SourceRow(len(rows)), err)
			}

			i, ok := index[key]
			if !ok {
				i = len(headers)
				index[key] = i
				headers = append(headers, key)
			}
			for len(row) <= i {
				row = append(row, "")
			}
			row[i] = cellString(value)
		}
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("failed to parse JSON objects: %w", err)
		}
		rows = append(rows, row)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to parse JSON objects: %w", err)
	}

	return snapshot(append([][]string{headers}, rows...)), nil
}

func stringify(values [][]any) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		out[i] = make([]string, len(row))
		for j, cell := range row {
			out[i][j] = cellString(cell)
		}
	}
	return out
}

func cellString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(c)
	default:
		return fmt.Sprint(c)
	}
}
