package types

import (
	"strings"
	"time"
)

// SQLType is the column type assigned to every derived column.
type SQLType string

const (
	TypeText SQLType = "text"
)

// SurrogateKey is the implicit auto-generated primary key of a
// full-replace table.
const SurrogateKey = "id"

// SheetSnapshot is a header row plus a rectangular grid of cell strings.
type SheetSnapshot struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// NewSheetSnapshot copies headers and rows, padding short rows with empty
// cells and cutting cells beyond the header width.
func NewSheetSnapshot(headers []string, rows [][]string) *SheetSnapshot {
	snap := &SheetSnapshot{
		Headers: append([]string(nil), headers...),
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, row := range rows {
		snap.Rows = append(snap.Rows, FitRow(row, len(headers)))
	}
	return snap
}

// FitRow returns a copy of row with exactly width cells.
func FitRow(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}

// IsEmpty reports whether the snapshot has no data rows.
func (s *SheetSnapshot) IsEmpty() bool {
	return s == nil || len(s.Rows) == 0
}

// SourceRow converts a 0-based data row index to the 1-based sheet row,
// counting the header as row 1.
func SourceRow(dataIndex int) int {
	return dataIndex + 2
}

type ColumnSpec struct {
	OriginalHeader string  `json:"original_header"`
	SanitizedName  string  `json:"sanitized_name"`
	Ordinal        int     `json:"ordinal"`
	SQLType        SQLType `json:"sql_type"`
}

// Renamed reports whether sanitizing changed the header beyond trimming
// and lower-casing.
func (c ColumnSpec) Renamed() bool {
	return strings.ToLower(strings.TrimSpace(c.OriginalHeader)) != c.SanitizedName
}

type TableSpec struct {
	Name       string       `json:"name"`
	PrimaryKey string       `json:"primary_key"`
	Columns    []ColumnSpec `json:"columns"`
}

// ColumnNames returns the derived column names in header order, without
// the surrogate key.
func (t *TableSpec) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.SanitizedName
	}
	return names
}

// ColumnPair maps one sheet header to one target column.
type ColumnPair struct {
	Header string `json:"header" yaml:"header" mapstructure:"header"`
	Column string `json:"column" yaml:"column" mapstructure:"column"`
}

// ColumnMapping is an ordered header to column mapping used by upsert.
type ColumnMapping []ColumnPair

// Columns returns the target columns in mapping order.
func (m ColumnMapping) Columns() []string {
	cols := make([]string, len(m))
	for i, p := range m {
		cols[i] = p.Column
	}
	return cols
}

// Specs renders the mapping as column specs so both strategies share one
// audit format.
func (m ColumnMapping) Specs() []ColumnSpec {
	specs := make([]ColumnSpec, len(m))
	for i, p := range m {
		specs[i] = ColumnSpec{OriginalHeader: p.Header, SanitizedName: p.Column, Ordinal: i, SQLType: TypeText}
	}
	return specs
}

// SyncRecord is one row ready for the database. A nil value is SQL NULL.
type SyncRecord struct {
	SourceRow int
	Values    map[string]any
}

// Args returns the record values in column order.
func (r SyncRecord) Args(columns []string) []any {
	args := make([]any, len(columns))
	for i, c := range columns {
		args[i] = r.Values[c]
	}
	return args
}

// Outcome of a single upsert statement.
type Outcome string

const (
	OutcomeInserted Outcome = "inserted"
	OutcomeUpdated  Outcome = "updated"
	OutcomeErrored  Outcome = "errored"
)

// RowFailure is the report entry of one failed row.
type RowFailure struct {
	SourceRow int    `json:"source_row"`
	Error     string `json:"error"`
	Err       error  `json:"-"`
}

// Report summarizes a sync run.
type Report struct {
	Strategy    string         `json:"strategy"`
	Table       string         `json:"table"`
	Fingerprint string         `json:"fingerprint,omitempty"`
	RowsRead    int            `json:"rows_read"`
	Filtered    map[string]int `json:"filtered,omitempty"`
	Inserted    int            `json:"inserted"`
	Updated     int            `json:"updated"`
	Skipped     int            `json:"skipped"`
	Errored     int            `json:"errored"`
	NoOp        bool           `json:"no_op"`
	DryRun      bool           `json:"dry_run,omitempty"`
	BackupPath  string         `json:"backup_path,omitempty"`
	Failures    []RowFailure   `json:"failures,omitempty"`
	StartedAt   time.Time      `json:"started_at"`
	Duration    time.Duration  `json:"duration"`
}

// FilteredTotal returns the number of rows removed by the filter.
func (r *Report) FilteredTotal() int {
	total := 0
	for _, n := range r.Filtered {
		total += n
	}
	return total
}

// BackupData is the on-disk format of a pre-replace table backup.
type BackupData struct {
	Timestamp string                   `json:"timestamp"`
	Table     string                   `json:"table"`
	Comment   string                   `json:"comment"`
	Rows      []map[string]interface{} `json:"rows"`
}
