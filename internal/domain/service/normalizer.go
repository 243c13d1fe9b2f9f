// Package service holds the pure transformations of the export pipeline: table
// normalization and per-column type inference.
package service

import (
	"encoding/json"
	"fmt"

	"github.com/keboola/go-utils/pkg/orderedmap"
	"github.com/spf13/cast"

	"github.com/diillson/cloudability-export-go/internal/domain/entity"
	"github.com/diillson/cloudability-export-go/internal/shared/types"
)

// Normalize aligns records on a single column set.
//
// The declared columns come first, in order; any other field found in the
// records is appended in first-seen order. Missing fields become null cells and
// row order is kept. Columns mixing scalar and nested values are exported as
// text and reported through the returned ErrSchema warnings.
func Normalize(records []*entity.Record, declared []string) (*entity.Table, []error) {
	columns := make([]string, 0, len(declared))
	index := make(map[string]int)
	addColumn := func(name string) {
		if _, exists := index[name]; exists {
			return
		}
		index[name] = len(columns)
		columns = append(columns, name)
	}

	for _, name := range declared {
		addColumn(name)
	}
	for _, rec := range records {
		for _, key := range rec.Keys() {
			addColumn(key)
		}
	}

	scalar := make([]bool, len(columns))
	nested := make([]bool, len(columns))
	rows := make([][]entity.Cell, 0, len(records))

	for _, rec := range records {
		row := make([]entity.Cell, len(columns))
		for i, name := range columns {
			value, ok := rec.Get(name)
			if !ok || value == nil {
				row[i] = entity.Null
				continue
			}
			text, isNested := cellText(value)
			if isNested {
				nested[i] = true
			} else {
				scalar[i] = true
			}
			row[i] = entity.Value(text)
		}
		rows = append(rows, row)
	}

	var warnings []error
	for i, name := range columns {
		if scalar[i] && nested[i] {
			warnings = append(warnings, fmt.Errorf("%w: column %q mixes scalar and nested values, exported as text", types.ErrSchema, name))
		}
	}

	return &entity.Table{Columns: columns, Rows: rows}, warnings
}

// cellText converts a decoded JSON value to its cell text. Nested structures
// are rendered as compact JSON.
func cellText(value interface{}) (string, bool) {
	switch v := value.(type) {
	case *orderedmap.OrderedMap, orderedmap.OrderedMap, map[string]interface{}, []interface{}:
		return jsonText(v), true
	}

	text, err := cast.ToStringE(value)
	if err != nil {
		return jsonText(value), true
	}
	return text, false
}

func jsonText(value interface{}) string {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(raw)
}
