package ingestion

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rpattn/salesingest/internal/domain"
	"github.com/rpattn/salesingest/internal/schema"
)

// Day-first layouts tried in order before the serial fallback.
var dateLayouts = []string{
	"2/1/2006",
	"2/1/2006 15:04",
	"2/1/2006 15:04:05",
	"2/1/2006 3:04 PM",
	"2/1/2006 3:04:05 PM",
	"2-1-2006",
	"2-1-2006 15:04:05",
	"2.1.2006",
	"2.1.2006 15:04:05",
	"2/1/06",
	"2-1-06",
	"2.1.06",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"2006/1/2",
	time.RFC3339,
	"2-Jan-2006",
	"2 Jan 2006",
	"2 January 2006",
}

var (
	serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	// 9999-12-31 is serial 2958465.
	maxSerial = 2958466.0
)

// Four-digit values in this range are years, not serial day counts.
const (
	minYear = 1900
	maxYear = 2100
)

// CoercedChunk holds typed values. Cells of schema columns are nil, string,
// float64, int64 or time.Time. Cells of unknown columns keep their raw text.
type CoercedChunk struct {
	Index  int
	Start  int
	Header []string
	Rows   [][]any
}

// Coercer converts raw cells to their column kinds. Cell-level problems never
// fail; the cell takes the column default and the raw value goes to the ledger.
type Coercer struct {
	columns map[string]schema.Column
}

// NewCoercer builds a coercer for cols.
func NewCoercer(cols []schema.Column) *Coercer {
	return &Coercer{columns: schema.ByName(cols)}
}

// Coerce converts every row of chunk. No row is dropped.
func (c *Coercer) Coerce(chunk RawChunk, header []string, ledger *domain.Ledger) CoercedChunk {
	out := CoercedChunk{
		Index:  chunk.Index,
		Start:  chunk.Start,
		Header: header,
		Rows:   make([][]any, len(chunk.Rows)),
	}
	for i := range chunk.Rows {
		out.Rows[i] = make([]any, len(header))
	}

	for j, name := range header {
		col, known := c.columns[name]
		var (
			badRows   []int
			badValues []string
		)
		for i, raw := range chunk.Rows {
			cell := ""
			if j < len(raw) {
				cell = raw[j]
			}
			if !known {
				out.Rows[i][j] = cell
				continue
			}
			value, invalid := coerceCell(col.Kind, cell)
			out.Rows[i][j] = value
			if invalid {
				badRows = append(badRows, chunk.Start+i+2)
				badValues = append(badValues, cell)
			}
		}
		if known {
			ledger.Add(col.Name, badRows, badValues)
		}
	}
	return out
}

// coerceCell returns the typed value of raw and whether it was replaced by a default.
func coerceCell(kind schema.Kind, raw string) (any, bool) {
	switch kind {
	case schema.Number:
		return coerceNumber(raw)
	case schema.Integer:
		return coerceInteger(raw)
	case schema.Date:
		return coerceDate(raw)
	default:
		return coerceText(raw)
	}
}

func isNaN(s string) bool {
	return s == "nan" || s == "NaN"
}

func coerceNumber(raw string) (any, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || isNaN(s) {
		return 0.0, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0.0, true
	}
	return f, false
}

func coerceInteger(raw string) (any, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || isNaN(s) {
		return int64(0), true
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Mod(f, 1) != 0 ||
		f < math.MinInt64 || f >= math.MaxInt64 {
		return int64(0), true
	}
	return int64(f), false
}

// Blank text is the declared NULL and is not ledgered; a literal NaN marker is.
func coerceText(raw string) (any, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, false
	}
	if isNaN(s) {
		return nil, true
	}
	return s, false
}

func coerceDate(raw string) (any, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || isNaN(s) {
		return nil, true
	}
	if t, ok := parseDayFirst(s); ok {
		return t, false
	}
	if t, ok := parseYear(s); ok {
		return t, false
	}
	if t, ok := parseSerial(s); ok {
		return t, false
	}
	return nil, true
}

func parseDayFirst(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// parseYear reads a bare four-digit year as January 1st of that year.
func parseYear(s string) (time.Time, bool) {
	if len(s) != 4 {
		return time.Time{}, false
	}
	y, err := strconv.Atoi(s)
	if err != nil || y < minYear || y > maxYear {
		return time.Time{}, false
	}
	return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC), true
}

// parseSerial reads a spreadsheet serial day count; any time fraction is dropped.
func parseSerial(s string) (time.Time, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f < 1 || f >= maxSerial {
		return time.Time{}, false
	}
	return serialEpoch.AddDate(0, 0, int(f)), true
}
