package ingestion

import (
	"testing"
	"time"

	"github.com/rpattn/salesingest/internal/domain"
	"github.com/rpattn/salesingest/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCoerceCell(t *testing.T) {
	tests := []struct {
		name    string
		kind    schema.Kind
		raw     string
		want    any
		invalid bool
	}{
		{"number", schema.Number, "12.5", 12.5, false},
		{"number negative padded", schema.Number, " -3 ", -3.0, false},
		{"number blank", schema.Number, "", 0.0, true},
		{"number whitespace", schema.Number, "  ", 0.0, true},
		{"number nan", schema.Number, "nan", 0.0, true},
		{"number text", schema.Number, "abc", 0.0, true},
		{"number inf", schema.Number, "Inf", 0.0, true},
		{"integer", schema.Integer, "42", int64(42), false},
		{"integer from float text", schema.Integer, "42.0", int64(42), false},
		{"integer fractional", schema.Integer, "4.5", int64(0), true},
		{"integer blank", schema.Integer, " ", int64(0), true},
		{"integer NaN", schema.Integer, "NaN", int64(0), true},
		{"text", schema.Text, "  Chennai ", "Chennai", false},
		{"text blank", schema.Text, "", nil, false},
		{"text nan", schema.Text, "nan", nil, true},
		{"date day first", schema.Date, "03/04/2024", day(2024, 4, 3), false},
		{"date end of month", schema.Date, "31/01/2024", day(2024, 1, 31), false},
		{"date serial 45000", schema.Date, "45000", day(2023, 3, 15), false},
		{"date iso", schema.Date, "2024-04-03", day(2024, 4, 3), false},
		{"date with time", schema.Date, "03/04/2024 17:45", day(2024, 4, 3), false},
		{"date month name", schema.Date, "3-Apr-2024", day(2024, 4, 3), false},
		{"date serial", schema.Date, "45306", day(2024, 1, 15), false},
		{"date serial fraction", schema.Date, "45306.75", day(2024, 1, 15), false},
		{"date twelve hour clock", schema.Date, "31/1/2024 5:07 PM", day(2024, 1, 31), false},
		{"date twelve hour clock seconds", schema.Date, "31/1/2024 5:07:09 AM", day(2024, 1, 31), false},
		{"date year first slashes", schema.Date, "2024/01/31", day(2024, 1, 31), false},
		{"date year first short slashes", schema.Date, "2024/1/5", day(2024, 1, 5), false},
		{"date two digit year dashes", schema.Date, "31-01-24", day(2024, 1, 31), false},
		{"date two digit year dots", schema.Date, "31.1.24", day(2024, 1, 31), false},
		{"date dots with time", schema.Date, "31.01.2024 08:30:00", day(2024, 1, 31), false},
		{"date bare year", schema.Date, "2024", day(2024, 1, 1), false},
		{"date four digit serial outside year range", schema.Date, "4000", day(1910, 12, 13), false},
		{"date garbage", schema.Date, "yesterday", nil, true},
		{"date zero serial", schema.Date, "0", nil, true},
		{"date blank", schema.Date, "", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, invalid := coerceCell(tt.kind, tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.invalid, invalid)
		})
	}
}

func TestCoercer_LedgersInvalidCellsWithAbsoluteRows(t *testing.T) {
	header := []string{"Taxable", "qty", "Zone", "Unlisted"}
	chunk := RawChunk{
		Index: 1,
		Start: 50000,
		Rows: [][]string{
			{"1.5", "2", "North", "keep"},
			{"oops", "3", "South", "me"},
			{"2", "x", "nan"},
		},
	}
	ledger := domain.NewLedger()

	out := NewCoercer(schema.Columns).Coerce(chunk, header, ledger)

	require.Len(t, out.Rows, 3)
	assert.Equal(t, 1, out.Index)
	assert.Equal(t, 50000, out.Start)
	assert.Equal(t, []any{1.5, int64(2), "North", "keep"}, out.Rows[0])
	assert.Equal(t, []any{0.0, int64(3), "South", "me"}, out.Rows[1])
	assert.Equal(t, []any{2.0, int64(0), nil, ""}, out.Rows[2], "short rows are padded")

	entries := ledger.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, domain.InvalidValueEntry{Column: "Taxable", Rows: []int{50003}, Values: []string{"oops"}}, entries[0])
	assert.Equal(t, domain.InvalidValueEntry{Column: "qty", Rows: []int{50004}, Values: []string{"x"}}, entries[1])
	assert.Equal(t, domain.InvalidValueEntry{Column: "Zone", Rows: []int{50004}, Values: []string{"nan"}}, entries[2])
}

func TestCoercer_CleanChunkAddsNothing(t *testing.T) {
	ledger := domain.NewLedger()
	NewCoercer(schema.Columns).Coerce(
		RawChunk{Rows: [][]string{{"1", "Sales"}}},
		[]string{"ID", "Voucher Type"},
		ledger,
	)
	assert.Zero(t, ledger.Len())
}
