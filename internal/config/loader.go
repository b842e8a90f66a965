package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rpattn/salesingest/internal/db"
	"github.com/rpattn/salesingest/internal/ingestion"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. SALESINGEST_DATABASE_HOST.
const EnvPrefix = "SALESINGEST"

// Supported storage drivers.
const (
	DriverPostgres  = "postgres"
	DriverSQLite    = "sqlite"
	DriverSQLServer = "sqlserver"
)

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	// Path is the SQLite file.
	Path string
}

// Connection returns the network settings shared by the Postgres and SQL Server stores.
func (d DatabaseConfig) Connection() db.Config {
	return db.Config{
		Host:     d.Host,
		Port:     d.Port,
		User:     d.User,
		Password: d.Password,
		DBName:   d.DBName,
		SSLMode:  d.SSLMode,
	}
}

type IngestionConfig struct {
	ChunkSize      int
	SubBatchSize   int
	MaxUploadBytes int64
}

func (i IngestionConfig) Options() ingestion.Options {
	return ingestion.Options{
		ChunkSize:      i.ChunkSize,
		SubBatchSize:   i.SubBatchSize,
		MaxUploadBytes: i.MaxUploadBytes,
	}
}

type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

type FTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
}

// Config is the full application configuration.
type Config struct {
	Database  DatabaseConfig
	Ingestion IngestionConfig
	Server    ServerConfig
	Log       LogConfig
	FTP       FTPConfig
}

// Default returns the built-in configuration.
func Default() Config {
	pg := db.DefaultConfig()
	opts := ingestion.DefaultOptions()
	return Config{
		Database: DatabaseConfig{
			Driver:   DriverPostgres,
			Host:     pg.Host,
			Port:     pg.Port,
			User:     pg.User,
			Password: pg.Password,
			DBName:   pg.DBName,
			SSLMode:  pg.SSLMode,
			Path:     "salesingest.sqlite",
		},
		Ingestion: IngestionConfig{
			ChunkSize:      opts.ChunkSize,
			SubBatchSize:   opts.SubBatchSize,
			MaxUploadBytes: opts.MaxUploadBytes,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		FTP: FTPConfig{
			Port: 21,
		},
	}
}

var keys = []string{
	"database.driver",
	"database.host",
	"database.port",
	"database.user",
	"database.password",
	"database.dbname",
	"database.sslmode",
	"database.path",
	"ingestion.chunk_size",
	"ingestion.sub_batch_size",
	"ingestion.max_upload_bytes",
	"server.addr",
	"server.allowed_origins",
	"log.level",
	"log.format",
	"ftp.host",
	"ftp.port",
	"ftp.user",
	"ftp.password",
}

// Load reads config.yaml from configPath, then applies a .env file and
// SALESINGEST_* environment overrides on top of Default().
func Load(configPath string) (Config, error) {
	cfg := Default()

	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return cfg, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		slog.Debug("no config.yaml found, using defaults and env vars", "path", configPath)
	} else {
		slog.Debug("loaded config", "file", v.ConfigFileUsed())
	}

	if v.IsSet("database.driver") {
		cfg.Database.Driver = strings.ToLower(v.GetString("database.driver"))
	}
	if v.IsSet("database.host") {
		cfg.Database.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Database.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.Database.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Database.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.Database.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.Database.SSLMode = v.GetString("database.sslmode")
	}
	if v.IsSet("database.path") {
		cfg.Database.Path = v.GetString("database.path")
	}
	if v.IsSet("ingestion.chunk_size") {
		cfg.Ingestion.ChunkSize = v.GetInt("ingestion.chunk_size")
	}
	if v.IsSet("ingestion.sub_batch_size") {
		cfg.Ingestion.SubBatchSize = v.GetInt("ingestion.sub_batch_size")
	}
	if v.IsSet("ingestion.max_upload_bytes") {
		cfg.Ingestion.MaxUploadBytes = v.GetInt64("ingestion.max_upload_bytes")
	}
	if v.IsSet("server.addr") {
		cfg.Server.Addr = v.GetString("server.addr")
	}
	if v.IsSet("server.allowed_origins") {
		cfg.Server.AllowedOrigins = v.GetStringSlice("server.allowed_origins")
	}
	if v.IsSet("log.level") {
		cfg.Log.Level = v.GetString("log.level")
	}
	if v.IsSet("log.format") {
		cfg.Log.Format = v.GetString("log.format")
	}
	if v.IsSet("ftp.host") {
		cfg.FTP.Host = v.GetString("ftp.host")
	}
	if v.IsSet("ftp.port") {
		cfg.FTP.Port = v.GetInt("ftp.port")
	}
	if v.IsSet("ftp.user") {
		cfg.FTP.User = v.GetString("ftp.user")
	}
	if v.IsSet("ftp.password") {
		cfg.FTP.Password = v.GetString("ftp.password")
	}

	return cfg, cfg.Validate()
}

// Validate rejects settings the application cannot start with.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLServer:
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required for driver %s", c.Database.Driver)
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for driver %s", DriverSQLite)
		}
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	if c.Ingestion.ChunkSize <= 0 {
		return fmt.Errorf("ingestion.chunk_size must be positive")
	}
	if c.Ingestion.SubBatchSize <= 0 {
		return fmt.Errorf("ingestion.sub_batch_size must be positive")
	}
	if c.Ingestion.MaxUploadBytes <= 0 {
		return fmt.Errorf("ingestion.max_upload_bytes must be positive")
	}
	return nil
}

// SlogLevel maps the configured level to an slog.Level.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
