package repository

import (
	"github.com/diillson/cloudability-export-go/internal/domain/entity"
)

// ExportRepository renders a table to the terminal, a CSV file or a Parquet file.
type ExportRepository interface {
	entity.Sinks
}
