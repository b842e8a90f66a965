package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"
	"strconv"
	"time"

	_ "github.com/microsoft/go-mssqldb"
)

//go:embed migrations/sqlserver/0001_create_sales_records.sql
var sqlServerSchema string

// OpenSQLServer opens a SQL Server pool using the same connection settings as
// the Postgres store.
func OpenSQLServer(ctx context.Context, config Config) (*sql.DB, error) {
	query := url.Values{}
	query.Set("database", config.DBName)
	dsn := url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(config.User, config.Password),
		Host:     config.Host + ":" + strconv.Itoa(config.Port),
		RawQuery: query.Encode(),
	}

	db, err := sql.Open("sqlserver", dsn.String())
	if err != nil {
		return nil, fmt.Errorf("open sqlserver: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlserver: %w", err)
	}
	return db, nil
}

// EnsureSQLServerSchema creates the tables if they do not exist.
func EnsureSQLServerSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, sqlServerSchema); err != nil {
		return fmt.Errorf("create sqlserver schema: %w", err)
	}
	return nil
}
