package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunStatus is the terminal state of an ingestion run.
type RunStatus string

const (
	RunStatusSuccess         RunStatus = "success"
	RunStatusValidationError RunStatus = "validation-error"
	RunStatusRowError        RunStatus = "row-error"
	RunStatusStorageError    RunStatus = "storage-error"
	RunStatusEmptyResult     RunStatus = "empty-result"
)

// Outcome is the structured result of one ingestion run. It is always
// returned, whether the run succeeded or not.
type Outcome struct {
	RunID         uuid.UUID
	FileName      string
	Status        RunStatus
	RowsProcessed int
	Chunks        int
	Elapsed       time.Duration
	Ledger        *Ledger
	TotalStored   int64
	// RowNumber is set for row errors.
	RowNumber *int
	Err       error
}

// Succeeded reports whether the run completed with at least one row stored.
func (o Outcome) Succeeded() bool {
	return o.Status == RunStatusSuccess
}

// Message renders the caller-facing summary line.
func (o Outcome) Message() string {
	if o.Status == RunStatusSuccess {
		return fmt.Sprintf(
			"Successfully saved %d records in %.2fs. Total in database: %d.",
			o.RowsProcessed, o.Elapsed.Seconds(), o.TotalStored,
		)
	}
	if o.Err != nil {
		return o.Err.Error()
	}
	return string(o.Status)
}
