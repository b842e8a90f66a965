package ingestion

import (
	"context"

	"github.com/rpattn/salesingest/internal/domain"
	"github.com/rpattn/salesingest/internal/repository"
)

// DefaultSubBatchSize is the number of rows per insert statement or copy batch.
const DefaultSubBatchSize = 5000

// Persister writes one chunk per transaction.
type Persister struct {
	store    repository.RecordRepository
	subBatch int
}

// NewPersister wraps store. subBatch <= 0 selects DefaultSubBatchSize.
func NewPersister(store repository.RecordRepository, subBatch int) *Persister {
	if subBatch <= 0 {
		subBatch = DefaultSubBatchSize
	}
	return &Persister{store: store, subBatch: subBatch}
}

// Persist stores records atomically. On failure nothing from this chunk is
// kept and the error is a *StorageError.
func (p *Persister) Persist(ctx context.Context, chunkIndex int, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	if err := p.store.InsertChunk(ctx, records, p.subBatch); err != nil {
		return &StorageError{Chunk: chunkIndex, Err: err}
	}
	return nil
}
