package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Rana718/sheetsync/internal/config"
	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestNewPicksReader(t *testing.T) {
	tests := []struct {
		cfg  config.Source
		want string
	}{
		{config.Source{Path: "a.json"}, "*source.JSONReader"},
		{config.Source{Path: "a.CSV"}, "*source.CSVReader"},
		{config.Source{Kind: "xlsx", Path: "data"}, "*source.XLSXReader"},
		{config.Source{Kind: "tsv", Path: "a.txt"}, "*source.CSVReader"},
	}
	for _, tt := range tests {
		r, err := New(tt.cfg)
		if err != nil {
			t.Fatalf("New(%+v) failed: %v", tt.cfg, err)
		}
		if got := typeName(r); got != tt.want {
			t.Errorf("New(%+v) = %s, want %s", tt.cfg, got, tt.want)
		}
	}

	if _, err := New(config.Source{Path: "a.ods"}); err == nil {
		t.Error("Expected error for unsupported kind")
	}
}

func typeName(r Reader) string {
	switch r.(type) {
	case *JSONReader:
		return "*source.JSONReader"
	case *CSVReader:
		return "*source.CSVReader"
	case *XLSXReader:
		return "*source.XLSXReader"
	}
	return "unknown"
}

func TestJSONValuesArray(t *testing.T) {
	path := writeFile(t, "sheet.json", `[
  ["Name", "Email", "email"],
  ["Jane", "jane@x.com"],
  ["Bob", "", "b@x.com", "extra"],
  [42, true, null]
]`)

	snap, err := (&JSONReader{Path: path}).Read(context.Background())
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if diff := cmp.Diff([]string{"Name", "Email", "email"}, snap.Headers); diff != "" {
		t.Errorf("headers mismatch (-want +got):\n%s", diff)
	}
	want := [][]string{
		{"Jane", "jane@x.com", ""},
		{"Bob", "", "b@x.com"},
		{"42", "true", ""},
	}
	if diff := cmp.Diff(want, snap.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}

	objects := writeFile(t, "sheet_data.json", `[
  {"given_name": "Jane", "email_address": "jane@x.com", "phone_number": ""},
  {"phone_number": "555", "given_name": "Bob", "email_address": null, "notes": 7}
]`)
	snap, err = (&JSONReader{Path: objects}).Read(context.Background())
	if err != nil {
		t.Fatalf("Read of row objects failed: %v", err)
	}
	if diff := cmp.Diff([]string{"given_name", "email_address", "phone_number", "notes"}, snap.Headers); diff != "" {
		t.Errorf("object headers mismatch (-want +got):\n%s", diff)
	}
	want = [][]string{
		{"Jane", "jane@x.com", "", ""},
		{"Bob", "", "555", "7"},
	}
	if diff := cmp.Diff(want, snap.Rows); diff != "" {
		t.Errorf("object rows mismatch (-want +got):\n%s", diff)
	}

	if _, err := parseJSON([]byte(`[{"a": "1"}, ["2"]]`)); err == nil {
		t.Error("Expected an error for a row that is not an object")
	}
}

func TestJSONAPIResponseAndHeadersForm(t *testing.T) {
	api, err := parseJSON([]byte(`{"range":"Sheet1!A1:B2","majorDimension":"ROWS","values":[["A","B"],["1"]]}`))
	if err != nil {
		t.Fatalf("parse API response failed: %v", err)
	}
	if diff := cmp.Diff([][]string{{"1", ""}}, api.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}

	explicit, err := parseJSON([]byte(`{"headers":["A","B"],"rows":[["x","y"]]}`))
	if err != nil {
		t.Fatalf("parse headers form failed: %v", err)
	}
	if len(explicit.Rows) != 1 || explicit.Headers[1] != "B" {
		t.Errorf("unexpected snapshot: %+v", explicit)
	}

	if _, err := parseJSON([]byte(`{"rows":[["x"]]}`)); !errors.Is(err, ErrNoHeader) {
		t.Errorf("Expected ErrNoHeader, got %v", err)
	}
}

func TestJSONEmptyAndHeaderOnly(t *testing.T) {
	for _, in := range []string{"", "[]", `{"values":[]}`, `[["A","B"]]`} {
		snap, err := parseJSON([]byte(in))
		if err != nil {
			t.Fatalf("parseJSON(%q) failed: %v", in, err)
		}
		if !snap.IsEmpty() {
			t.Errorf("parseJSON(%q): expected empty snapshot, got %d rows", in, len(snap.Rows))
		}
	}
}

func TestCSVPadsAndStripsBOM(t *testing.T) {
	in := "\uFEFFName,Email,Phone\nJane,jane@x.com\nBob,,555,ignored\n\n"
	snap, err := readCSV(context.Background(), strings.NewReader(in), 0)
	if err != nil {
		t.Fatalf("readCSV failed: %v", err)
	}

	if snap.Headers[0] != "Name" {
		t.Errorf("Expected BOM stripped from first header, got %q", snap.Headers[0])
	}
	want := [][]string{
		{"Jane", "jane@x.com", ""},
		{"Bob", "", "555"},
	}
	if diff := cmp.Diff(want, snap.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestCSVDelimiterFromConfig(t *testing.T) {
	path := writeFile(t, "data.txt", "a;b\n1;2\n")
	r, err := New(config.Source{Kind: "csv", Path: path, Delimiter: ";"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	snap, err := r.Read(context.Background())
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if diff := cmp.Diff([][]string{{"1", "2"}}, snap.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestXLSXReader(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Sheet1"
	f.SetCellValue(sheetName, "A1", "Name")
	f.SetCellValue(sheetName, "B1", "Email")
	f.SetCellValue(sheetName, "C1", "Phone")
	f.SetCellValue(sheetName, "A2", "Jane")
	f.SetCellValue(sheetName, "B2", "jane@x.com")
	f.SetCellValue(sheetName, "A3", "Bob")
	f.SetCellValue(sheetName, "C3", "555")

	tmpFile := filepath.Join(t.TempDir(), "contacts.xlsx")
	if err := f.SaveAs(tmpFile); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}

	snap, err := (&XLSXReader{Path: tmpFile}).Read(context.Background())
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	want := [][]string{
		{"Jane", "jane@x.com", ""},
		{"Bob", "", "555"},
	}
	if diff := cmp.Diff(want, snap.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}

	if _, err := (&XLSXReader{Path: tmpFile, Sheet: "Missing"}).Read(context.Background()); err == nil {
		t.Error("Expected error for a missing sheet")
	}
}
