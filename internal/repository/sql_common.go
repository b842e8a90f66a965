package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpattn/salesingest/internal/domain"
)

// placeholder renders the n-th (1-based) bind parameter for a database/sql dialect.
type placeholder func(n int) string

func questionMark(int) string { return "?" }

func atP(n int) string { return fmt.Sprintf("@p%d", n) }

func countSQL(ctx context.Context, db *sql.DB, query string) (int64, error) {
	var n int64
	if err := db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

func listSQL(ctx context.Context, db *sql.DB, query string, limit int, args ...any) ([]domain.Record, error) {
	rows, err := db.QueryContext(ctx, query, args...)
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

// inTx runs fn inside a database/sql transaction and rolls back on error.
func inTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %w, rollback error: %v", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
