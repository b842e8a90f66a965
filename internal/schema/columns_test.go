package schema

import (
	"testing"
	"time"

	"github.com/rpattn/salesingest/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumns_Shape(t *testing.T) {
	require.Len(t, Columns, 44)

	names := map[string]bool{}
	fields := map[string]bool{}
	kinds := map[Kind]int{}
	for _, c := range Columns {
		assert.False(t, names[c.Name], "duplicate name %q", c.Name)
		assert.False(t, fields[c.Field], "duplicate field %q", c.Field)
		names[c.Name] = true
		fields[c.Field] = true
		kinds[c.Kind]++
	}

	assert.Equal(t, 25, kinds[Text])
	assert.Equal(t, 14, kinds[Number])
	assert.Equal(t, 3, kinds[Integer])
	assert.Equal(t, 2, kinds[Date])
}

func TestColumn_SetAndValue(t *testing.T) {
	byName := ByName(Columns)
	var rec domain.Record

	require.NoError(t, byName["PartyName"].Set(&rec, "Acme Stores"))
	require.NoError(t, byName["Taxable"].Set(&rec, 12.5))
	require.NoError(t, byName["qty"].Set(&rec, int64(3)))
	day := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	require.NoError(t, byName["VoucherDate"].Set(&rec, day))

	require.NotNil(t, rec.PartyName)
	assert.Equal(t, "Acme Stores", *rec.PartyName)
	assert.Equal(t, 12.5, rec.Taxable)
	assert.Equal(t, int64(3), rec.Qty)
	require.NotNil(t, rec.VoucherDate)
	assert.True(t, rec.VoucherDate.Equal(day))

	assert.Equal(t, "Acme Stores", byName["PartyName"].Value(&rec))
	assert.Equal(t, day, byName["VoucherDate"].Value(&rec))
	assert.Nil(t, byName["Zone"].Value(&rec))
	assert.Nil(t, byName["CreatedDate"].Value(&rec))
}

func TestColumn_SetNilClearsNullable(t *testing.T) {
	byName := ByName(Columns)
	var rec domain.Record

	require.NoError(t, byName["Zone"].Set(&rec, "North"))
	require.NoError(t, byName["Zone"].Set(&rec, nil))
	assert.Nil(t, rec.Zone)
}

func TestColumn_KindMismatch(t *testing.T) {
	byName := ByName(Columns)
	var rec domain.Record

	tests := []struct {
		column string
		value  any
	}{
		{"Taxable", "12.5"},
		{"Taxable", nil},
		{"qty", 3.0},
		{"PartyName", 42},
		{"CreatedDate", "2024-01-31"},
	}
	for _, tt := range tests {
		err := byName[tt.column].Set(&rec, tt.value)
		assert.ErrorIs(t, err, ErrKindMismatch, tt.column)
	}
}

func TestRowValues_OrderMatchesFields(t *testing.T) {
	var rec domain.Record
	rec.SalesID = 7
	values := RowValues(Columns, &rec)
	fields := Fields(Columns)

	require.Len(t, values, len(fields))
	assert.Equal(t, "sales_id", fields[1])
	assert.Equal(t, int64(7), values[1])
	assert.Nil(t, values[0])
}
