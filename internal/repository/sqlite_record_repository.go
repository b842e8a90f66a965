package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rpattn/salesingest/internal/domain"
	"github.com/rpattn/salesingest/internal/schema"
)

// SQLite caps bound parameters per statement.
const sqliteMaxParams = 32766

type sqliteRecordRepository struct {
	db *sql.DB
}

// NewSQLiteRecordRepository wires a SQLite record store. Each sub-batch is
// written with multi-row INSERT statements inside the chunk transaction.
func NewSQLiteRecordRepository(db *sql.DB) RecordRepository {
	return &sqliteRecordRepository{db: db}
}

func (r *sqliteRecordRepository) InsertChunk(ctx context.Context, records []domain.Record, subBatch int) error {
	if len(records) == 0 {
		return nil
	}
	if subBatch <= 0 {
		subBatch = len(records)
	}
	perStmt := min(subBatch, sqliteMaxParams/len(schema.Columns))

	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		stmts := map[int]*sql.Stmt{}
		defer func() {
			for _, s := range stmts {
				_ = s.Close()
			}
		}()

		for start := 0; start < len(records); start += subBatch {
			end := min(start+subBatch, len(records))
			for lo := start; lo < end; lo += perStmt {
				hi := min(lo+perStmt, end)
				n := hi - lo

				stmt, ok := stmts[n]
				if !ok {
					var err error
					stmt, err = tx.PrepareContext(ctx, insertStatement(n, questionMark))
					if err != nil {
						return fmt.Errorf("failed to prepare insert: %w", err)
					}
					stmts[n] = stmt
				}

				args := make([]any, 0, n*len(schema.Columns))
				for i := lo; i < hi; i++ {
					args = append(args, schema.RowValues(schema.Columns, &records[i])...)
				}
				if _, err := stmt.ExecContext(ctx, args...); err != nil {
					return fmt.Errorf("failed to insert rows %d-%d: %w", lo, hi-1, err)
				}
			}
		}
		return nil
	})
}

func (r *sqliteRecordRepository) Count(ctx context.Context) (int64, error) {
	return countSQL(ctx, r.db, "SELECT count(*) FROM "+recordsTable)
}

func (r *sqliteRecordRepository) List(ctx context.Context, limit int, offset int) ([]domain.Record, error) {
	limit, offset = clampPage(limit, offset, 100)
	return listSQL(ctx, r.db, selectRecords+" ORDER BY id DESC LIMIT ? OFFSET ?", limit, limit, offset)
}

// insertStatement builds a multi-row INSERT for n records.
func insertStatement(n int, ph placeholder) string {
	fields := schema.Fields(schema.Columns)
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(recordsTable)
	b.WriteString(" (")
	b.WriteString(strings.Join(fields, ", "))
	b.WriteString(") VALUES ")

	param := 1
	for row := 0; row < n; row++ {
		if row > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for col := range fields {
			if col > 0 {
				b.WriteString(", ")
			}
			b.WriteString(ph(param))
			param++
		}
		b.WriteByte(')')
	}
	return b.String()
}
