package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/relvacode/iso8601"
	"github.com/shopspring/decimal"

	"github.com/diillson/cloudability-export-go/internal/domain/entity"
	"github.com/diillson/cloudability-export-go/internal/shared/types"
)

// ColumnType is the storage type inferred for a column.
type ColumnType int

const (
	ColumnString ColumnType = iota
	ColumnInteger
	ColumnFloat
	ColumnTimestamp
)

func (t ColumnType) String() string {
	switch t {
	case ColumnInteger:
		return "integer"
	case ColumnFloat:
		return "float"
	case ColumnTimestamp:
		return "timestamp"
	default:
		return "string"
	}
}

// timeLayouts são tentados antes do parser ISO 8601 genérico.
var timeLayouts = []string{
	entity.DateLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// InferredColumn is a column with its inferred type and the values coerced to
// that type. Only the slice matching Type is filled; Valid marks non-null rows.
type InferredColumn struct {
	Name   string
	Type   ColumnType
	Valid  []bool
	Ints   []int64
	Floats []float64
	Times  []time.Time
	Texts  []string
}

// InferColumn decides the type of a column from its raw cells.
//
// Integer when every non-null value parses as an int64, float when every value
// is a number and at least one is not an integer, timestamp when every value
// is a recognised date/time, string otherwise. A column of nulls is a string
// column. When some values look numeric or temporal and others do not, the
// column falls back to string and an ErrSerialization warning is returned.
func InferColumn(name string, cells []entity.Cell) (InferredColumn, error) {
	col := InferredColumn{Name: name, Valid: make([]bool, len(cells))}

	var nonNull, ints, nums, times int
	for i, c := range cells {
		if !c.Valid {
			continue
		}
		col.Valid[i] = true
		nonNull++

		s := strings.TrimSpace(c.Text)
		if _, err := strconv.ParseInt(s, 10, 64); err == nil {
			ints++
		}
		if _, err := decimal.NewFromString(s); err == nil {
			nums++
		}
		if _, ok := parseTime(s); ok {
			times++
		}
	}

	var warning error
	switch {
	case nonNull == 0:
		col.Type = ColumnString
	case ints == nonNull:
		col.Type = ColumnInteger
	case nums == nonNull:
		col.Type = ColumnFloat
	case times == nonNull:
		col.Type = ColumnTimestamp
	default:
		col.Type = ColumnString
		if nums > 0 || times > 0 {
			warning = fmt.Errorf("%w: column %q mixes %d numeric and %d date values with text over %d rows, stored as string",
				types.ErrSerialization, name, nums, times, nonNull)
		}
	}

	switch col.Type {
	case ColumnInteger:
		col.Ints = make([]int64, len(cells))
		for i, c := range cells {
			if col.Valid[i] {
				col.Ints[i], _ = strconv.ParseInt(strings.TrimSpace(c.Text), 10, 64)
			}
		}
	case ColumnFloat:
		col.Floats = make([]float64, len(cells))
		for i, c := range cells {
			if col.Valid[i] {
				d, _ := decimal.NewFromString(strings.TrimSpace(c.Text))
				col.Floats[i] = d.InexactFloat64()
			}
		}
	case ColumnTimestamp:
		col.Times = make([]time.Time, len(cells))
		for i, c := range cells {
			if col.Valid[i] {
				col.Times[i], _ = parseTime(strings.TrimSpace(c.Text))
			}
		}
	default:
		col.Texts = make([]string, len(cells))
		for i, c := range cells {
			col.Texts[i] = c.Text
		}
	}

	return col, warning
}

// InferTable infers every column of the table.
func InferTable(table *entity.Table) ([]InferredColumn, []error) {
	cols := make([]InferredColumn, len(table.Columns))
	var warnings []error
	for i, name := range table.Columns {
		col, err := InferColumn(name, table.Column(i))
		if err != nil {
			warnings = append(warnings, err)
		}
		cols[i] = col
	}
	return cols, warnings
}

// parseTime reconhece datas no formato YYYY-MM-DD seguidas opcionalmente de hora.
func parseTime(s string) (time.Time, bool) {
	if len(s) < len(entity.DateLayout) || s[4] != '-' || s[7] != '-' {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	if t, err := iso8601.ParseString(s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}
