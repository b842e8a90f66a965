package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpattn/salesingest/internal/config"
	"github.com/rpattn/salesingest/internal/db"
	"github.com/rpattn/salesingest/internal/repository"
)

// store bundles the repositories of the configured driver.
type store struct {
	records repository.RecordRepository
	runs    repository.IngestionRunRepository
	ping    func(context.Context) error
	close   func()
}

// migrate brings the configured database schema up to date.
func migrate(ctx context.Context, cfg config.DatabaseConfig) error {
	switch cfg.Driver {
	case config.DriverPostgres:
		return db.RunMigrations(cfg.Connection())
	case config.DriverSQLite:
		sqlDB, err := db.OpenSQLite(cfg.Path)
		if err != nil {
			return err
		}
		defer sqlDB.Close()
		return db.RunSQLiteMigrations(sqlDB)
	case config.DriverSQLServer:
		sqlDB, err := db.OpenSQLServer(ctx, cfg.Connection())
		if err != nil {
			return err
		}
		defer sqlDB.Close()
		return db.EnsureSQLServerSchema(ctx, sqlDB)
	default:
		return fmt.Errorf("unsupported database.driver %q", cfg.Driver)
	}
}

// openStore migrates and opens the configured store.
func openStore(ctx context.Context, cfg config.DatabaseConfig) (*store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		if err := db.RunMigrations(cfg.Connection()); err != nil {
			return nil, err
		}
		conn, err := db.NewConnection(ctx, cfg.Connection())
		if err != nil {
			return nil, err
		}
		return &store{
			records: repository.NewRecordRepository(conn),
			runs:    repository.NewIngestionRunRepository(conn.Pool),
			ping:    conn.Pool.Ping,
			close:   conn.Close,
		}, nil

	case config.DriverSQLite:
		sqlDB, err := db.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		if err := db.RunSQLiteMigrations(sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		return sqlStore(sqlDB,
			repository.NewSQLiteRecordRepository(sqlDB),
			repository.NewSQLiteIngestionRunRepository(sqlDB),
		), nil

	case config.DriverSQLServer:
		sqlDB, err := db.OpenSQLServer(ctx, cfg.Connection())
		if err != nil {
			return nil, err
		}
		if err := db.EnsureSQLServerSchema(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		return sqlStore(sqlDB,
			repository.NewSQLServerRecordRepository(sqlDB),
			repository.NewSQLServerIngestionRunRepository(sqlDB),
		), nil

	default:
		return nil, fmt.Errorf("unsupported database.driver %q", cfg.Driver)
	}
}

func sqlStore(sqlDB *sql.DB, records repository.RecordRepository, runs repository.IngestionRunRepository) *store {
	return &store{
		records: records,
		runs:    runs,
		ping:    sqlDB.PingContext,
		close:   func() { _ = sqlDB.Close() },
	}
}
