package syncer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Rana718/sheetsync/internal/database/common"
)

// ErrAborted is returned when the confirmation hook declines the run.
var ErrAborted = errors.New("sync aborted")

// TransactionError is the failure of a full replace. The table is left as
// it was.
type TransactionError = common.TransactionError

// SchemaMismatchError reports mapped columns, or the key, that the live
// table does not have. SourceRow is zero when the whole run was refused.
type SchemaMismatchError struct {
	Table     string
	Columns   []string
	SourceRow int
	Reason    string
}

func (e *SchemaMismatchError) Error() string {
	msg := fmt.Sprintf("table %q has no column(s) %s", e.Table, strings.Join(e.Columns, ", "))
	if e.Reason != "" {
		msg = fmt.Sprintf("table %q: %s", e.Table, e.Reason)
	}
	if e.SourceRow > 0 {
		return fmt.Sprintf("row %d: schema mismatch: %s", e.SourceRow, msg)
	}
	return "schema mismatch: " + msg
}

// RowError is a single failed upsert. The run continues past it.
type RowError struct {
	SourceRow int
	Err       error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.SourceRow, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// MissingHeaderError is returned when the column mapping names a header the
// sheet does not have.
type MissingHeaderError struct {
	Headers []string
}

func (e *MissingHeaderError) Error() string {
	return fmt.Sprintf("column mapping refers to header(s) not present in the sheet: %s", strings.Join(e.Headers, ", "))
}
