package report

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Rana718/sheetsync/internal/types"
	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"
)

var columns = []types.ColumnSpec{
	{OriginalHeader: "Name", SanitizedName: "name", Ordinal: 0, SQLType: types.TypeText},
	{OriginalHeader: "E-mail Address", SanitizedName: "e_mail_address", Ordinal: 1, SQLType: types.TypeText},
}

func TestConsoleMapping(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	c := NewConsole(&buf)

	if err := c.RecordMapping("contacts", "full-replace", columns); err != nil {
		t.Fatalf("RecordMapping failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "E-mail Address → e_mail_address (renamed)") {
		t.Errorf("Expected renamed column to be flagged, got:\n%s", out)
	}
	if strings.Contains(out, "name (renamed)") {
		t.Errorf("Expected unchanged column not to be flagged, got:\n%s", out)
	}
}

func TestConsoleRunSummary(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	c := NewConsole(&buf)

	r := &types.Report{
		Strategy: "upsert",
		Table:    "people",
		RowsRead: 5,
		Filtered: map[string]int{"required:contact": 1},
		Inserted: 2,
		Updated:  1,
		Skipped:  1,
		Errored:  1,
		Failures: []types.RowFailure{
			{SourceRow: 4, Error: "key column \"email\" is blank"},
			{SourceRow: 5, Error: "duplicate key"},
		},
	}
	if err := c.RecordRun(r); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"1 failed row(s)", "Updated:    1", "Skipped:    1", "row 4: key column", "row 5: duplicate key", "required:contact"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestAuditLogWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit", "audit.log")
	a := NewAuditLog(path, 1, 1)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	a.now = func() time.Time { return fixed }

	if err := a.RecordMapping("contacts", "full-replace", columns); err != nil {
		t.Fatalf("RecordMapping failed: %v", err)
	}
	if err := a.RecordRun(&types.Report{Strategy: "full-replace", Table: "contacts", RowsRead: 2, Inserted: 2}); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open audit log: %v", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("invalid audit line %q: %v", scanner.Text(), err)
		}
		entries = append(entries, e)
	}

	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Event != EventMapping || entries[1].Event != EventRun {
		t.Errorf("unexpected events: %s, %s", entries[0].Event, entries[1].Event)
	}
	if diff := cmp.Diff(columns, entries[0].Columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if !entries[0].Time.Equal(fixed) {
		t.Errorf("unexpected time %v", entries[0].Time)
	}
	if entries[1].Report == nil || entries[1].Report.Inserted != 2 {
		t.Errorf("unexpected run entry: %+v", entries[1].Report)
	}
}

type failingAuditor struct{ err error }

func (f failingAuditor) RecordMapping(string, string, []types.ColumnSpec) error { return f.err }
func (f failingAuditor) RecordRun(*types.Report) error                          { return f.err }

func TestMultiJoinsErrors(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	boom := errors.New("disk full")
	m := Multi{NewConsole(&buf), failingAuditor{err: boom}}

	err := m.RecordMapping("contacts", "full-replace", columns)
	if !errors.Is(err, boom) {
		t.Errorf("Expected joined error to wrap %v, got %v", boom, err)
	}
	if buf.Len() == 0 {
		t.Error("Expected the console to still print")
	}
}
