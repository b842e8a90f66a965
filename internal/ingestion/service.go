package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"github.com/rpattn/salesingest/internal/domain"
	"github.com/rpattn/salesingest/internal/repository"
	"github.com/rpattn/salesingest/internal/schema"
	"github.com/rpattn/salesingest/internal/schema/validator"

	"github.com/google/uuid"
)

// DefaultMaxUploadBytes is the largest accepted source file (600 MiB).
const DefaultMaxUploadBytes int64 = 600 << 20

// Options tunes an ingestion service.
type Options struct {
	ChunkSize      int
	SubBatchSize   int
	MaxUploadBytes int64
}

// DefaultOptions returns the production chunking and size limits.
func DefaultOptions() Options {
	return Options{
		ChunkSize:      DefaultChunkSize,
		SubBatchSize:   DefaultSubBatchSize,
		MaxUploadBytes: DefaultMaxUploadBytes,
	}
}

// Service ingests sales transaction files into a record repository.
type Service struct {
	records   repository.RecordRepository
	runs      repository.IngestionRunRepository
	columns   []schema.Column
	coercer   *Coercer
	mapper    *Mapper
	persister *Persister
	opts      Options
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a new ingestion service. runs may be nil.
func NewService(
	records repository.RecordRepository,
	runs repository.IngestionRunRepository,
	logger *slog.Logger,
	opts Options,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultOptions()
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaults.ChunkSize
	}
	if opts.SubBatchSize <= 0 {
		opts.SubBatchSize = defaults.SubBatchSize
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaults.MaxUploadBytes
	}
	return &Service{
		records:   records,
		runs:      runs,
		columns:   schema.Columns,
		coercer:   NewCoercer(schema.Columns),
		mapper:    NewMapper(schema.Columns),
		persister: NewPersister(records, opts.SubBatchSize),
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// Upload describes one source file.
type Upload struct {
	FileName string
	// Size in bytes, or <= 0 if unknown.
	Size int64
	Data io.Reader
}

type state string

const (
	stateIdle             state = "idle"
	stateValidatingSchema state = "validating-schema"
	stateRejected         state = "rejected"
	stateStreaming        state = "streaming"
	stateCoercing         state = "coercing"
	stateMapping          state = "mapping"
	statePersisting       state = "persisting"
	stateCompleted        state = "completed"
	stateAborted          state = "aborted"
)

// run is the state of one ingestion; nothing in it is shared between runs.
type run struct {
	id     uuid.UUID
	state  state
	ledger *domain.Ledger
	rows   int
	chunks int
	logger *slog.Logger
}

func (r *run) enter(s state, attrs ...any) {
	r.state = s
	r.logger.Debug("ingestion state", append([]any{"state", string(s)}, attrs...)...)
}

// Ingest runs the pipeline over up and always returns an outcome. Chunks are
// processed strictly in sequence and each is committed or rolled back whole.
func (s *Service) Ingest(ctx context.Context, up Upload) domain.Outcome {
	// Once started a run always finishes; ctx only carries values.
	ctx = context.WithoutCancel(ctx)
	started := s.now()
	r := &run{
		id:     uuid.New(),
		state:  stateIdle,
		ledger: domain.NewLedger(),
	}
	r.logger = s.logger.With("run_id", r.id.String(), "file", up.FileName)
	r.logger.Info("ingestion started", append([]any{"size_bytes", up.Size}, memoryAttrs()...)...)

	err := s.execute(ctx, r, up)

	out := domain.Outcome{
		RunID:         r.id,
		FileName:      up.FileName,
		Status:        statusFor(err),
		RowsProcessed: r.rows,
		Chunks:        r.chunks,
		Elapsed:       s.now().Sub(started),
		Ledger:        r.ledger,
		Err:           err,
	}
	var rowErr *RowError
	if errors.As(err, &rowErr) {
		row := rowErr.Row
		out.RowNumber = &row
	}

	if n := r.ledger.Len(); n > 0 {
		r.logger.Warn("invalid values replaced with defaults",
			"cells", n,
			"columns", r.ledger.Summary(),
		)
		for _, e := range r.ledger.Entries() {
			r.logger.Debug("invalid values", "column", e.Column, "rows", e.Rows, "values", e.Values)
		}
	}

	if out.Status == domain.RunStatusSuccess {
		total, countErr := s.records.Count(ctx)
		if countErr != nil {
			r.logger.Warn("failed to count stored records", "error", countErr)
		}
		out.TotalStored = total
		r.logger.Info("ingestion completed",
			"rows", out.RowsProcessed,
			"chunks", out.Chunks,
			"elapsed", out.Elapsed.Round(time.Millisecond).String(),
			"total_stored", out.TotalStored,
		)
	} else {
		r.logger.Error("ingestion failed",
			"status", string(out.Status),
			"state", string(r.state),
			"rows", out.RowsProcessed,
			"error", err,
		)
	}

	s.recordRun(ctx, r.logger, out, started)
	return out
}

func (s *Service) execute(ctx context.Context, r *run, up Upload) error {
	if err := s.precheck(up); err != nil {
		r.enter(stateRejected)
		return err
	}

	r.enter(stateValidatingSchema)
	reader, err := NewReader(up.FileName, up.Data, up.Size, s.opts.ChunkSize)
	if err != nil {
		r.enter(stateRejected)
		return err
	}
	defer func() {
		if cerr := reader.Close(); cerr != nil {
			r.logger.Warn("failed to close reader", "error", cerr)
		}
	}()

	header := reader.Header()
	if err := validator.Validate(header, s.columns); err != nil {
		r.enter(stateRejected)
		return err
	}

	r.enter(stateStreaming)
	for {
		raw, err := reader.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			r.enter(stateAborted)
			return err
		}

		r.enter(stateCoercing, "chunk", raw.Index, "rows", len(raw.Rows))
		coerced := s.coercer.Coerce(raw, header, r.ledger)

		r.enter(stateMapping, "chunk", raw.Index)
		records, err := s.mapper.Map(coerced)
		if err != nil {
			r.enter(stateAborted)
			return err
		}

		r.enter(statePersisting, "chunk", raw.Index)
		if err := s.persister.Persist(ctx, raw.Index, records); err != nil {
			r.enter(stateAborted)
			return err
		}

		r.rows += len(records)
		r.chunks++
		s.logChunk(r, reader, raw.Index, len(records))
	}

	if r.rows == 0 {
		r.enter(stateAborted)
		return ErrNoRowsProcessed
	}
	r.enter(stateCompleted)
	return nil
}

func (s *Service) precheck(up Upload) error {
	if up.Data == nil {
		return fmt.Errorf("%w: no file data", ErrUnreadableFile)
	}
	ext := extensionOf(up.FileName)
	if _, ok := supportedExtensions[ext]; !ok {
		return fmt.Errorf("%w: %q, upload an .xls, .xlsx or .csv file", ErrUnsupportedFormat, ext)
	}
	if up.Size > s.opts.MaxUploadBytes {
		return fmt.Errorf("%w: %d bytes exceeds the maximum of %d MB", ErrFileTooLarge, up.Size, s.opts.MaxUploadBytes>>20)
	}
	return nil
}

func (s *Service) logChunk(r *run, reader ChunkReader, index, rows int) {
	attrs := []any{"chunk", index, "rows", rows, "total_rows", r.rows}
	if p, ok := reader.(Progress); ok {
		if done, total := p.Progress(); total > 0 {
			pct := float64(done) / float64(total) * 100
			if pct > 100 {
				pct = 100
			}
			attrs = append(attrs, "percent", fmt.Sprintf("%.1f", pct))
		}
	}
	r.logger.Info("chunk inserted", append(attrs, memoryAttrs()...)...)
}

func memoryAttrs() []any {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return []any{"alloc_mb", m.Alloc / 1024 / 1024, "sys_mb", m.Sys / 1024 / 1024}
}

func (s *Service) recordRun(ctx context.Context, logger *slog.Logger, out domain.Outcome, started time.Time) {
	if s.runs == nil {
		return
	}
	if err := s.runs.Record(ctx, domain.RunFromOutcome(out, started)); err != nil {
		logger.Warn("failed to record ingestion run", "error", err)
	}
}
