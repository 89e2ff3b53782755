package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Rana718/sheetsync/internal/types"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Entry is one line of the audit log.
type Entry struct {
	Time     time.Time          `json:"time"`
	Event    string             `json:"event"`
	Table    string             `json:"table"`
	Strategy string             `json:"strategy"`
	Columns  []types.ColumnSpec `json:"columns,omitempty"`
	Report   *types.Report      `json:"report,omitempty"`
}

const (
	EventMapping = "mapping"
	EventRun     = "run"
)

// AuditLog appends JSON lines to a size-rotated file.
type AuditLog struct {
	mu  sync.Mutex
	w   io.WriteCloser
	now func() time.Time
}

func NewAuditLog(path string, maxSizeMB, maxBackups int) *AuditLog {
	return newAuditLog(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		LocalTime:  true,
	})
}

func newAuditLog(w io.WriteCloser) *AuditLog {
	return &AuditLog{w: w, now: time.Now}
}

func (a *AuditLog) RecordMapping(table, strategy string, columns []types.ColumnSpec) error {
	return a.write(Entry{Event: EventMapping, Table: table, Strategy: strategy, Columns: columns})
}

func (a *AuditLog) RecordRun(r *types.Report) error {
	return a.write(Entry{Event: EventRun, Table: r.Table, Strategy: r.Strategy, Report: r})
}

func (a *AuditLog) write(e Entry) error {
	e.Time = a.now()
	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode audit entry: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := a.w.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func (a *AuditLog) Close() error {
	return a.w.Close()
}

// Multi fans every record out to several auditors and joins their errors.
type Multi []interface {
	RecordMapping(table, strategy string, columns []types.ColumnSpec) error
	RecordRun(r *types.Report) error
}

func (m Multi) RecordMapping(table, strategy string, columns []types.ColumnSpec) error {
	var errs []error
	for _, a := range m {
		if err := a.RecordMapping(table, strategy, columns); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) RecordRun(r *types.Report) error {
	var errs []error
	for _, a := range m {
		if err := a.RecordRun(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
