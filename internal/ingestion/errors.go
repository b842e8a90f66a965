package ingestion

import (
	"errors"
	"fmt"

	"github.com/rpattn/salesingest/internal/domain"
	"github.com/rpattn/salesingest/internal/schema/validator"
)

var (
	// ErrUnsupportedFormat is returned when an uploaded file is not .xls, .xlsx or .csv.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrFileTooLarge is returned when an upload exceeds the configured limit.
	ErrFileTooLarge = errors.New("file is too large")
	// ErrUnreadableFile is returned when the source cannot be opened as the format its extension claims.
	ErrUnreadableFile = errors.New("unable to read file")
	// ErrNoRowsProcessed is returned when a run completes without storing any row.
	ErrNoRowsProcessed = errors.New("no data was saved, check the file format or data validity")
)

// RowError aborts a run at an absolute source row (header is row 1).
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("error in row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// StorageError aborts a run when a chunk transaction fails. Chunks committed
// before Chunk remain stored.
type StorageError struct {
	Chunk int
	Err   error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("database error during insertion of chunk %d: %v", e.Chunk, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// statusFor maps a terminal run error to its outcome status.
func statusFor(err error) domain.RunStatus {
	var (
		verr   *validator.ValidationError
		rowErr *RowError
	)
	switch {
	case err == nil:
		return domain.RunStatusSuccess
	case errors.As(err, &verr),
		errors.Is(err, ErrUnsupportedFormat),
		errors.Is(err, ErrFileTooLarge),
		errors.Is(err, ErrUnreadableFile):
		return domain.RunStatusValidationError
	case errors.As(err, &rowErr):
		return domain.RunStatusRowError
	case errors.Is(err, ErrNoRowsProcessed):
		return domain.RunStatusEmptyResult
	default:
		// *StorageError and unexpected I/O failures mid-run.
		return domain.RunStatusStorageError
	}
}
