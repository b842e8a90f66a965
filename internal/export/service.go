// Package export streams stored sales records back out as CSV using the
// source header names, so an export can be re-ingested.
package export

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/rpattn/salesingest/internal/repository"
	"github.com/rpattn/salesingest/internal/schema"
)

const defaultPageSize = 1000

// ISO dates round-trip through ingestion unambiguously.
const dateLayout = "2006-01-02"

type Service struct {
	records  repository.RecordRepository
	columns  []schema.Column
	pageSize int
	logger   *slog.Logger
}

type Option func(*Service)

func WithPageSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewService(records repository.RecordRepository, opts ...Option) *Service {
	service := &Service{
		records:  records,
		columns:  schema.Columns,
		pageSize: defaultPageSize,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

type countingWriter struct {
	writer *bufio.Writer
	count  int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.writer.Write(p)
	c.count += int64(n)
	return n, err
}

// WriteCSV writes a header row followed by every stored record, newest
// first, and returns the number of records written.
func (s *Service) WriteCSV(ctx context.Context, w io.Writer) (int, error) {
	started := time.Now()
	buffered := bufio.NewWriterSize(w, 1<<16)
	counter := &countingWriter{writer: buffered}
	csvWriter := csv.NewWriter(counter)

	if err := csvWriter.Write(schema.Names(s.columns)); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(s.columns))
	exported := 0
	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return exported, err
		}
		records, err := s.records.List(ctx, s.pageSize, offset)
		if err != nil {
			return exported, fmt.Errorf("list records: %w", err)
		}
		for i := range records {
			for j, col := range s.columns {
				row[j] = formatValue(col.Value(&records[i]))
			}
			if err := csvWriter.Write(row); err != nil {
				return exported, fmt.Errorf("write record row: %w", err)
			}
			exported++
		}
		csvWriter.Flush()
		if err := csvWriter.Error(); err != nil {
			return exported, fmt.Errorf("flush rows: %w", err)
		}
		if len(records) < s.pageSize {
			break
		}
		offset += s.pageSize
	}

	if err := buffered.Flush(); err != nil {
		return exported, fmt.Errorf("final buffered flush: %w", err)
	}
	s.logger.Info("records exported",
		"rows", exported,
		"bytes", counter.count,
		"elapsed", time.Since(started).String(),
	)
	return exported, nil
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case time.Time:
		return v.Format(dateLayout)
	default:
		return fmt.Sprintf("%v", v)
	}
}
