package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rpattn/salesingest/internal/domain"
)

type sqlIngestionRunRepository struct {
	db *sql.DB
	ph placeholder
	// page renders the ORDER BY tail and returns args in bind order.
	page func(limit, offset int) (string, []any)
}

// NewSQLiteIngestionRunRepository wires the run audit log to SQLite.
func NewSQLiteIngestionRunRepository(db *sql.DB) IngestionRunRepository {
	return &sqlIngestionRunRepository{
		db: db,
		ph: questionMark,
		page: func(limit, offset int) (string, []any) {
			return " LIMIT ? OFFSET ?", []any{limit, offset}
		},
	}
}

// NewSQLServerIngestionRunRepository wires the run audit log to SQL Server.
func NewSQLServerIngestionRunRepository(db *sql.DB) IngestionRunRepository {
	return &sqlIngestionRunRepository{
		db: db,
		ph: atP,
		page: func(limit, offset int) (string, []any) {
			return " OFFSET @p1 ROWS FETCH NEXT @p2 ROWS ONLY", []any{offset, limit}
		},
	}
}

func (r *sqlIngestionRunRepository) Record(ctx context.Context, run domain.IngestionRun) error {
	params := make([]string, 9)
	for i := range params {
		params[i] = r.ph(i + 1)
	}

	var failedRow any
	if run.RowNumber != nil {
		failedRow = *run.RowNumber
	}

	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO ingestion_runs (id, file_name, status, rows_processed, invalid_cells, failed_row, error_message, started_at, finished_at)
		 VALUES (`+strings.Join(params, ", ")+`)`,
		run.ID.String(),
		run.FileName,
		string(run.Status),
		run.RowsProcessed,
		run.InvalidCells,
		failedRow,
		run.ErrorMessage,
		run.StartedAt,
		run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record ingestion run: %w", err)
	}
	return nil
}

func (r *sqlIngestionRunRepository) List(ctx context.Context, limit int, offset int) ([]domain.IngestionRun, error) {
	limit, offset = clampPage(limit, offset, 200)
	tail, args := r.page(limit, offset)

	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, file_name, status, rows_processed, invalid_cells, failed_row, error_message, started_at, finished_at
		 FROM ingestion_runs
		 ORDER BY started_at DESC`+tail,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingestion runs: %w", err)
	}
	defer rows.Close()

	runs := []domain.IngestionRun{}
	for rows.Next() {
		var (
			run       domain.IngestionRun
			status    string
			failedRow sql.NullInt64
		)
		if err := rows.Scan(
			&run.ID,
			&run.FileName,
			&status,
			&run.RowsProcessed,
			&run.InvalidCells,
			&failedRow,
			&run.ErrorMessage,
			&run.StartedAt,
			&run.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ingestion run: %w", err)
		}
		run.Status = domain.RunStatus(status)
		if failedRow.Valid {
			value := int(failedRow.Int64)
			run.RowNumber = &value
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ingestion runs: %w", err)
	}
	return runs, nil
}
