package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/rpattn/salesingest/internal/db"
	"github.com/rpattn/salesingest/internal/domain"
	"github.com/rpattn/salesingest/internal/schema"

	"github.com/jackc/pgx/v5"
)

const recordsTable = "sales_records"

type recordRepository struct {
	conn *db.Connection
}

// NewRecordRepository wires a Postgres record store. Chunks are written with
// COPY inside a single transaction.
func NewRecordRepository(conn *db.Connection) RecordRepository {
	return &recordRepository{conn: conn}
}

func (r *recordRepository) InsertChunk(ctx context.Context, records []domain.Record, subBatch int) error {
	if subBatch <= 0 {
		subBatch = len(records)
	}
	fields := schema.Fields(schema.Columns)

	return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		for start := 0; start < len(records); start += subBatch {
			end := min(start+subBatch, len(records))
			rows := make([][]any, 0, end-start)
			for i := start; i < end; i++ {
				rows = append(rows, schema.RowValues(schema.Columns, &records[i]))
			}

			copied, err := tx.CopyFrom(ctx, pgx.Identifier{recordsTable}, fields, pgx.CopyFromRows(rows))
			if err != nil {
				return fmt.Errorf("failed to copy rows %d-%d: %w", start, end-1, err)
			}
			if copied != int64(len(rows)) {
				return fmt.Errorf("copied %d of %d rows", copied, len(rows))
			}
		}
		return nil
	})
}

func (r *recordRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.conn.Pool.QueryRow(ctx, "SELECT count(*) FROM "+recordsTable).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

func (r *recordRepository) List(ctx context.Context, limit int, offset int) ([]domain.Record, error) {
	limit, offset = clampPage(limit, offset, 100)

	rows, err := r.conn.Pool.Query(ctx, selectRecords+" ORDER BY id DESC LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Record, 0, limit)
	for rows.Next() {
		var rec domain.Record
		if err := rows.Scan(recordTargets(&rec)...); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}
	return out, nil
}

var selectRecords = "SELECT id, inserted_at, " + strings.Join(schema.Fields(schema.Columns), ", ") + " FROM " + recordsTable

func recordTargets(rec *domain.Record) []any {
	return append([]any{&rec.ID, &rec.InsertedAt}, schema.ScanTargets(schema.Columns, rec)...)
}
