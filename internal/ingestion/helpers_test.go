package ingestion

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/rpattn/salesingest/internal/domain"
	"github.com/rpattn/salesingest/internal/repository"
	"github.com/rpattn/salesingest/internal/schema"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// cellFunc returns the raw text for column col of data row i (0-based).
type cellFunc func(col schema.Column, i int) string

func validCell(col schema.Column, i int) string {
	switch col.Kind {
	case schema.Integer:
		return strconv.Itoa(i + 1)
	case schema.Number:
		return "10.25"
	case schema.Date:
		return "15/01/2024"
	default:
		return "value"
	}
}

func withOverrides(overrides map[string]map[int]string) cellFunc {
	return func(col schema.Column, i int) string {
		if rows, ok := overrides[col.Name]; ok {
			if v, ok := rows[i]; ok {
				return v
			}
		}
		return validCell(col, i)
	}
}

func salesTable(header []string, rows int, cell cellFunc) [][]string {
	byName := schema.ByName(schema.Columns)
	out := make([][]string, 0, rows+1)
	out = append(out, header)
	for i := 0; i < rows; i++ {
		row := make([]string, len(header))
		for j, name := range header {
			if col, ok := byName[name]; ok {
				row[j] = cell(col, i)
			} else {
				row[j] = "extra"
			}
		}
		out = append(out, row)
	}
	return out
}

func csvBytes(t *testing.T, table [][]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	require.NoError(t, w.WriteAll(table))
	return buf.Bytes()
}

func salesCSV(t *testing.T, rows int, cell cellFunc) []byte {
	t.Helper()
	return csvBytes(t, salesTable(schema.Names(schema.Columns), rows, cell))
}

// salesXLSX writes table into the first sheet. Cells that parse as numbers
// are stored as numeric cells.
func salesXLSX(t *testing.T, table [][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range table {
		values := make([]any, len(row))
		for j, v := range row {
			if n, err := strconv.ParseFloat(v, 64); err == nil && i > 0 {
				values[j] = n
			} else {
				values[j] = v
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &values))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func upload(name string, data []byte) Upload {
	return Upload{FileName: name, Size: int64(len(data)), Data: bytes.NewReader(data)}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var (
	_ repository.RecordRepository       = (*memoryRecords)(nil)
	_ repository.IngestionRunRepository = (*memoryRuns)(nil)
)

// memoryRecords is an in-memory RecordRepository. failOnCall makes the n-th
// InsertChunk call (1-based) fail without storing anything.
type memoryRecords struct {
	mu         sync.Mutex
	stored     []domain.Record
	calls      int
	subBatches []int
	failOnCall int
	failErr    error
}

func (m *memoryRecords) InsertChunk(_ context.Context, records []domain.Record, subBatch int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.subBatches = append(m.subBatches, subBatch)
	if m.failOnCall == m.calls {
		return m.failErr
	}
	m.stored = append(m.stored, records...)
	return nil
}

func (m *memoryRecords) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.stored)), nil
}

func (m *memoryRecords) List(_ context.Context, limit, offset int) ([]domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Record
	for i := len(m.stored) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.stored[i])
	}
	return out, nil
}

type memoryRuns struct {
	mu   sync.Mutex
	runs []domain.IngestionRun
}

func (m *memoryRuns) Record(_ context.Context, run domain.IngestionRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

func (m *memoryRuns) List(context.Context, int, int) ([]domain.IngestionRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.IngestionRun(nil), m.runs...), nil
}

// steppedClock advances by step on every call.
func steppedClock(step time.Duration) func() time.Time {
	current := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t := current
		current = current.Add(step)
		return t
	}
}
