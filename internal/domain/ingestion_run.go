package domain

import (
	"time"

	"github.com/google/uuid"
)

// IngestionRun is the audit row written once per finished ingestion run.
type IngestionRun struct {
	ID            uuid.UUID `json:"id"`
	FileName      string    `json:"fileName"`
	Status        RunStatus `json:"status"`
	RowsProcessed int       `json:"rowsProcessed"`
	InvalidCells  int       `json:"invalidCells"`
	RowNumber     *int      `json:"rowNumber,omitempty"`
	ErrorMessage  string    `json:"errorMessage,omitempty"`
	StartedAt     time.Time `json:"startedAt"`
	FinishedAt    time.Time `json:"finishedAt"`
}

// RunFromOutcome converts a finished outcome into its audit row.
func RunFromOutcome(o Outcome, startedAt time.Time) IngestionRun {
	run := IngestionRun{
		ID:            o.RunID,
		FileName:      o.FileName,
		Status:        o.Status,
		RowsProcessed: o.RowsProcessed,
		InvalidCells:  o.Ledger.Len(),
		RowNumber:     o.RowNumber,
		StartedAt:     startedAt.UTC(),
		FinishedAt:    startedAt.Add(o.Elapsed).UTC(),
	}
	if o.Err != nil {
		run.ErrorMessage = o.Err.Error()
	}
	return run
}
