package common

import (
	"errors"
	"fmt"
)

// Stages of a full replace, used in TransactionError.
const (
	StageBegin  = "begin"
	StageDrop   = "drop"
	StageCreate = "create"
	StageInsert = "insert"
	StageSwap   = "swap"
	StageCommit = "commit"
)

var (
	// ErrUndefinedColumn marks a driver error caused by a column the live
	// table does not have.
	ErrUndefinedColumn = errors.New("column does not exist")
	// ErrTableNotFound marks an operation on a missing table.
	ErrTableNotFound = errors.New("table does not exist")
)

// TransactionError reports a failed full replace. The table is left as it
// was before the run.
type TransactionError struct {
	Table string
	Stage string
	Err   error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("replace of table %q failed during %s (rolled back): %v", e.Table, e.Stage, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

func NewTransactionError(table, stage string, err error) *TransactionError {
	return &TransactionError{Table: table, Stage: stage, Err: err}
}
