package ingestion

import (
	"errors"
	"testing"

	"github.com/rpattn/salesingest/internal/domain"
	"github.com/rpattn/salesingest/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coercedSales(t *testing.T, rows int, cell cellFunc) CoercedChunk {
	t.Helper()
	table := salesTable(append([]string{"Remarks"}, schema.Names(schema.Columns)...), rows, cell)
	return NewCoercer(schema.Columns).Coerce(
		RawChunk{Index: 0, Start: 0, Rows: table[1:]},
		table[0],
		domain.NewLedger(),
	)
}

func TestMapper_MapsByHeaderName(t *testing.T) {
	chunk := coercedSales(t, 2, withOverrides(map[string]map[int]string{
		"Category":  {0: "Dairy"},
		"Zone":      {1: ""},
		"VoucherNo": {1: "INV-9"},
	}))

	records, err := NewMapper(schema.Columns).Map(chunk)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, int64(1), first.SalesID)
	assert.InDelta(t, 10.25, first.Taxable, 1e-9)
	require.NotNil(t, first.NewCategory)
	assert.Equal(t, "Dairy", *first.NewCategory, "Category maps to new_category")
	require.NotNil(t, first.VoucherDate)
	assert.Equal(t, day(2024, 1, 15), *first.VoucherDate)

	second := records[1]
	assert.Nil(t, second.Zone)
	require.NotNil(t, second.VoucherNo)
	assert.Equal(t, "INV-9", *second.VoucherNo)
	assert.Equal(t, int64(2), second.SalesID)
}

func TestMapper_KindMismatchIsRowError(t *testing.T) {
	chunk := CoercedChunk{
		Start:  100,
		Header: schema.Names(schema.Columns),
		Rows:   make([][]any, 2),
	}
	for i := range chunk.Rows {
		row := make([]any, len(schema.Columns))
		for j, col := range schema.Columns {
			row[j], _ = coerceCell(col.Kind, validCell(col, i))
		}
		chunk.Rows[i] = row
	}
	chunk.Rows[1][0] = 3.14 // Voucher Type is text

	records, err := NewMapper(schema.Columns).Map(chunk)
	assert.Nil(t, records)

	var rowErr *RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 103, rowErr.Row)
	assert.ErrorIs(t, err, schema.ErrKindMismatch)
	assert.Contains(t, err.Error(), "error in row 103")
}

func TestMapper_ColumnWithoutSlot(t *testing.T) {
	chunk := CoercedChunk{Start: 0, Header: []string{"Voucher Type"}, Rows: [][]any{{"Sales"}}}

	_, err := NewMapper(schema.Columns).Map(chunk)
	var rowErr *RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 2, rowErr.Row)
}
