package ingestion

import (
	"fmt"

	"github.com/rpattn/salesingest/internal/domain"
	"github.com/rpattn/salesingest/internal/schema"
)

// Mapper builds records from coerced rows by header name. Columns outside the
// schema are ignored.
type Mapper struct {
	columns []schema.Column
}

// NewMapper builds a mapper for cols.
func NewMapper(cols []schema.Column) *Mapper {
	return &Mapper{columns: cols}
}

type slot struct {
	col   schema.Column
	index int
}

// Map converts every row of chunk or fails at the first unmappable row with a
// *RowError carrying its absolute row number. Nothing is returned on failure.
func (m *Mapper) Map(chunk CoercedChunk) ([]domain.Record, error) {
	positions := make(map[string]int, len(chunk.Header))
	for i, name := range chunk.Header {
		if _, dup := positions[name]; !dup {
			positions[name] = i
		}
	}

	slots := make([]slot, 0, len(m.columns))
	for _, col := range m.columns {
		idx, ok := positions[col.Name]
		if !ok {
			return nil, &RowError{Row: chunk.Start + 2, Err: fmt.Errorf("column %q has no slot in the header", col.Name)}
		}
		slots = append(slots, slot{col: col, index: idx})
	}

	records := make([]domain.Record, len(chunk.Rows))
	for i, row := range chunk.Rows {
		rowNumber := chunk.Start + i + 2
		for _, s := range slots {
			if s.index >= len(row) {
				return nil, &RowError{Row: rowNumber, Err: fmt.Errorf("column %q missing from row", s.col.Name)}
			}
			if err := s.col.Set(&records[i], row[s.index]); err != nil {
				return nil, &RowError{Row: rowNumber, Err: err}
			}
		}
	}
	return records, nil
}
