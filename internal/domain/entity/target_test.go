package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingSinks struct {
	calls []string
}

func (s *recordingSinks) Display(*Table) error {
	s.calls = append(s.calls, "display")
	return nil
}

func (s *recordingSinks) CSV(_ *Table, t CSVTarget) (string, error) {
	s.calls = append(s.calls, "csv")
	return t.Path, nil
}

func (s *recordingSinks) Parquet(_ *Table, t ParquetTarget) (string, error) {
	s.calls = append(s.calls, "parquet")
	return t.Path, nil
}

func TestExportTarget_DispatchesExactlyOneSink(t *testing.T) {
	tests := []struct {
		target   ExportTarget
		wantCall string
		wantPath string
	}{
		{DisplayTarget{}, "display", ""},
		{CSVTarget{Path: "out.csv"}, "csv", "out.csv"},
		{ParquetTarget{Path: "out.parquet"}, "parquet", "out.parquet"},
	}

	for _, tt := range tests {
		t.Run(string(tt.target.Kind()), func(t *testing.T) {
			sinks := &recordingSinks{}
			path, err := tt.target.Dispatch(sinks, &Table{})
			assert.NoError(t, err)
			assert.Equal(t, tt.wantPath, path)
			assert.Equal(t, []string{tt.wantCall}, sinks.calls)
		})
	}
}
