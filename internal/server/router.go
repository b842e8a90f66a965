// Package server assembles the HTTP surface: upload, browse, export and health.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/rpattn/salesingest/internal/browse"
	"github.com/rpattn/salesingest/internal/export"
	"github.com/rpattn/salesingest/internal/ingestion"
	"github.com/rpattn/salesingest/internal/middleware"
	"github.com/rpattn/salesingest/internal/repository"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// Deps are the services the router exposes.
type Deps struct {
	Ingestion      *ingestion.Service
	Records        repository.RecordRepository
	Runs           repository.IngestionRunRepository
	Logger         *slog.Logger
	AllowedOrigins []string
	// Ping reports store reachability for /healthz. Optional.
	Ping func(ctx context.Context) error
}

// NewRouter returns the application handler.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
	}).Handler)

	r.Method(http.MethodPost, "/upload", ingestion.NewHTTPHandler(d.Ingestion))
	r.Method(http.MethodGet, "/records", browse.NewRecordsHandler(browse.NewPaginator(d.Records, browse.DefaultPageSize)))
	r.Method(http.MethodGet, "/records/export", export.NewHTTPHandler(export.NewService(d.Records, export.WithLogger(logger))))
	if d.Runs != nil {
		r.Method(http.MethodGet, "/runs", browse.NewRunsHandler(d.Runs))
	}
	r.Get("/healthz", health(d.Ping))

	return r
}

func health(ping func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, body := http.StatusOK, map[string]string{"status": "ok"}
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				status, body = http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()}
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

// NewHTTPServer wraps handler with the listener timeouts. Uploads of several
// hundred megabytes need a long write window.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Minute,
		WriteTimeout:      30 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
}
