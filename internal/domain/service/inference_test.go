package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/cloudability-export-go/internal/domain/entity"
	"github.com/diillson/cloudability-export-go/internal/shared/types"
)

func cells(values ...string) []entity.Cell {
	out := make([]entity.Cell, len(values))
	for i, v := range values {
		out[i] = entity.Value(v)
	}
	return out
}

func TestInferColumn_Types(t *testing.T) {
	tests := []struct {
		name  string
		cells []entity.Cell
		want  ColumnType
	}{
		{"integers", cells("1", "-42", "007"), ColumnInteger},
		{"floats", cells("12.50", "13.75"), ColumnFloat},
		{"floats with integral values", cells("3", "4.5"), ColumnFloat},
		{"dates", cells("2024-01-01", "2024-01-02"), ColumnTimestamp},
		{"datetimes", cells("2024-01-01T10:00:00Z", "2024-01-01 11:30:00"), ColumnTimestamp},
		{"text", cells("AWS", "Azure"), ColumnString},
		{"all null", []entity.Cell{entity.Null, entity.Null}, ColumnString},
		{"empty", nil, ColumnString},
		{"nulls ignored", []entity.Cell{entity.Value("1"), entity.Null, entity.Value("2")}, ColumnInteger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, err := InferColumn("c", tt.cells)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, col.Type, "got %s", col.Type)
		})
	}
}

func TestInferColumn_CoercedValues(t *testing.T) {
	col, err := InferColumn("cost", cells("12.50", "13.75"))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{12.50, 13.75}, col.Floats, 1e-9)

	col, err = InferColumn("date", cells("2024-01-01"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), col.Times[0])

	col, err = InferColumn("n", []entity.Cell{entity.Value("5"), entity.Null})
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 0}, col.Ints)
	assert.Equal(t, []bool{true, false}, col.Valid)
}

func TestInferColumn_MixedFallsBackToString(t *testing.T) {
	col, err := InferColumn("mixed", cells("12", "n/a", "2024-01-01"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrSerialization))
	assert.Equal(t, ColumnString, col.Type)
	assert.Equal(t, []string{"12", "n/a", "2024-01-01"}, col.Texts)
}

func TestInferTable(t *testing.T) {
	table := &entity.Table{
		Columns: []string{"date", "vendor", "cost"},
		Rows: [][]entity.Cell{
			cells("2024-01-01", "AWS", "12.50"),
			cells("2024-01-02", "AWS", "13.75"),
		},
	}

	cols, warnings := InferTable(table)

	assert.Empty(t, warnings)
	require.Len(t, cols, 3)
	assert.Equal(t, ColumnTimestamp, cols[0].Type)
	assert.Equal(t, ColumnString, cols[1].Type)
	assert.Equal(t, ColumnFloat, cols[2].Type)
}
