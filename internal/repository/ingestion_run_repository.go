package repository

import (
	"context"
	"fmt"

	"github.com/rpattn/salesingest/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ingestionRunRepository struct {
	pool *pgxpool.Pool
}

// NewIngestionRunRepository wires a repository backed by pgxpool.
func NewIngestionRunRepository(pool *pgxpool.Pool) IngestionRunRepository {
	return &ingestionRunRepository{pool: pool}
}

func (r *ingestionRunRepository) Record(ctx context.Context, run domain.IngestionRun) error {
	if r.pool == nil {
		return fmt.Errorf("ingestion run repository not initialized")
	}

	var failedRow any
	if run.RowNumber != nil {
		failedRow = *run.RowNumber
	}

	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO ingestion_runs (id, file_name, status, rows_processed, invalid_cells, failed_row, error_message, started_at, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		run.ID,
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

func (r *ingestionRunRepository) List(ctx context.Context, limit int, offset int) ([]domain.IngestionRun, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("ingestion run repository not initialized")
	}

	limit, offset = clampPage(limit, offset, 200)

	rows, err := r.pool.Query(
		ctx,
		`SELECT id, file_name, status, rows_processed, invalid_cells, failed_row, error_message, started_at, finished_at
		 FROM ingestion_runs
		 ORDER BY started_at DESC
		 LIMIT $1 OFFSET $2`,
		limit,
		offset,
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
			failedRow pgtype.Int4
		)
		if scanErr := rows.Scan(
			&run.ID,
			&run.FileName,
			&status,
			&run.RowsProcessed,
			&run.InvalidCells,
			&failedRow,
			&run.ErrorMessage,
			&run.StartedAt,
			&run.FinishedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan ingestion run: %w", scanErr)
		}

		run.Status = domain.RunStatus(status)
		if failedRow.Valid {
			value := int(failedRow.Int32)
			run.RowNumber = &value
		}

		runs = append(runs, run)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate ingestion runs: %w", rowsErr)
	}

	return runs, nil
}

func clampPage(limit, offset, fallback int) (int, int) {
	if limit <= 0 {
		limit = fallback
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
