package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/Rana718/sheetsync/internal/types"
	"github.com/fatih/color"
)

// Console prints the column mapping and the run summary for a human.
type Console struct {
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{out: out}
}

func (c *Console) RecordMapping(table, strategy string, columns []types.ColumnSpec) error {
	fmt.Fprintf(c.out, "%s %s → %s\n", color.CyanString("📋 Column mapping"), strategy, color.GreenString(table))

	width := len("Header")
	for _, col := range columns {
		if len(col.OriginalHeader) > width {
			width = len(col.OriginalHeader)
		}
	}

	fmt.Fprintf(c.out, "  %-*s   %s\n", width, "Header", "Column")
	fmt.Fprintf(c.out, "  %s   %s\n", strings.Repeat("─", width), strings.Repeat("─", 6))
	for _, col := range columns {
		line := fmt.Sprintf("  %-*s → %s", width, col.OriginalHeader, col.SanitizedName)
		if col.Renamed() {
			line += " " + color.YellowString("(renamed)")
		}
		fmt.Fprintln(c.out, line)
	}
	fmt.Fprintln(c.out)
	return nil
}

func (c *Console) RecordRun(r *types.Report) error {
	switch {
	case r.NoOp:
		fmt.Fprintln(c.out, color.YellowString("⚠️  Nothing to sync: no rows left after filtering"))
	case r.DryRun:
		fmt.Fprintln(c.out, color.CyanString("🔍 Dry run: no changes were made"))
	case r.Errored > 0:
		fmt.Fprintln(c.out, color.RedString("❌ Sync of %s finished with %d failed row(s)", r.Table, r.Errored))
	default:
		fmt.Fprintln(c.out, color.GreenString("✅ Sync of %s complete", r.Table))
	}

	fmt.Fprintf(c.out, "  Rows read:  %d\n", r.RowsRead)
	if total := r.FilteredTotal(); total > 0 {
		fmt.Fprintf(c.out, "  Filtered:   %d\n", total)
		reasons := make([]string, 0, len(r.Filtered))
		for reason := range r.Filtered {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			fmt.Fprintf(c.out, "    %-20s %d\n", reason, r.Filtered[reason])
		}
	}
	fmt.Fprintf(c.out, "  Inserted:   %d\n", r.Inserted)
	if r.Strategy == "upsert" {
		fmt.Fprintf(c.out, "  Updated:    %d\n", r.Updated)
		fmt.Fprintf(c.out, "  Skipped:    %d\n", r.Skipped)
	}
	if r.Errored > 0 {
		fmt.Fprintf(c.out, "  Errored:    %s\n", color.RedString("%d", r.Errored))
	}
	for _, f := range r.Failures {
		fmt.Fprintf(c.out, "    row %d: %s\n", f.SourceRow, f.Error)
	}
	if r.BackupPath != "" {
		fmt.Fprintf(c.out, "  Backup:     %s\n", r.BackupPath)
	}
	fmt.Fprintf(c.out, "  Duration:   %s\n", r.Duration.Round(time.Millisecond))
	return nil
}
