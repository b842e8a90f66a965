package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpattn/salesingest/internal/domain"
	"github.com/rpattn/salesingest/internal/schema"

	mssql "github.com/microsoft/go-mssqldb"
)

type sqlServerRecordRepository struct {
	db *sql.DB
}

// NewSQLServerRecordRepository wires a SQL Server record store. Each sub-batch
// is one bulk copy inside the chunk transaction.
func NewSQLServerRecordRepository(db *sql.DB) RecordRepository {
	return &sqlServerRecordRepository{db: db}
}

func (r *sqlServerRecordRepository) InsertChunk(ctx context.Context, records []domain.Record, subBatch int) error {
	if len(records) == 0 {
		return nil
	}
	if subBatch <= 0 {
		subBatch = len(records)
	}
	fields := schema.Fields(schema.Columns)

	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		for start := 0; start < len(records); start += subBatch {
			end := min(start+subBatch, len(records))
			if err := bulkCopy(ctx, tx, fields, records[start:end]); err != nil {
				return fmt.Errorf("failed to bulk copy rows %d-%d: %w", start, end-1, err)
			}
		}
		return nil
	})
}

func bulkCopy(ctx context.Context, tx *sql.Tx, fields []string, records []domain.Record) error {
	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn(recordsTable, mssql.BulkOptions{}, fields...))
	if err != nil {
		return fmt.Errorf("prepare bulk: %w", err)
	}
	for i := range records {
		if _, err := stmt.ExecContext(ctx, schema.RowValues(schema.Columns, &records[i])...); err != nil {
			_ = stmt.Close()
			return fmt.Errorf("bulk row %d: %w", i, err)
		}
	}
	_, err = stmt.ExecContext(ctx)
	if cerr := stmt.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("bulk finalize: %w", err)
	}
	return nil
}

func (r *sqlServerRecordRepository) Count(ctx context.Context) (int64, error) {
	return countSQL(ctx, r.db, "SELECT COUNT_BIG(*) FROM "+recordsTable)
}

func (r *sqlServerRecordRepository) List(ctx context.Context, limit int, offset int) ([]domain.Record, error) {
	limit, offset = clampPage(limit, offset, 100)
	return listSQL(ctx, r.db,
		selectRecords+" ORDER BY id DESC OFFSET @p1 ROWS FETCH NEXT @p2 ROWS ONLY",
		limit, offset, limit,
	)
}
