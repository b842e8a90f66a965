package repository

import (
	"context"

	"github.com/rpattn/salesingest/internal/domain"
)

// RecordRepository defines the interface for sales record storage.
type RecordRepository interface {
	// InsertChunk stores records in one transaction, issuing inserts of at
	// most subBatch rows. Either all records are committed or none are.
	InsertChunk(ctx context.Context, records []domain.Record, subBatch int) error
	Count(ctx context.Context) (int64, error)
	// List returns records newest-inserted first.
	List(ctx context.Context, limit int, offset int) ([]domain.Record, error)
}

// IngestionRunRepository stores one audit row per finished ingestion run.
type IngestionRunRepository interface {
	Record(ctx context.Context, run domain.IngestionRun) error
	List(ctx context.Context, limit int, offset int) ([]domain.IngestionRun, error)
}
