package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"go.uber.org/zap"

	"github.com/diillson/cloudability-export-go/internal/domain/entity"
	"github.com/diillson/cloudability-export-go/internal/domain/service"
	"github.com/diillson/cloudability-export-go/internal/shared/types"
)

// Compressions lists the accepted values of the parquet --compression flag.
var Compressions = map[string]compress.Compression{
	"":       compress.Codecs.Uncompressed,
	"none":   compress.Codecs.Uncompressed,
	"snappy": compress.Codecs.Snappy,
	"gzip":   compress.Codecs.Gzip,
	"brotli": compress.Codecs.Brotli,
	"zstd":   compress.Codecs.Zstd,
}

// Parquet grava a tabela em formato colunar. O tipo de cada coluna vem de
// service.InferColumn; colunas ambíguas viram string e geram um aviso.
func (r *ExportRepositoryImpl) Parquet(table *entity.Table, target entity.ParquetTarget) (string, error) {
	codec, ok := Compressions[strings.ToLower(target.Compression)]
	if !ok {
		return "", fmt.Errorf("%w: unsupported parquet compression %q", types.ErrIO, target.Compression)
	}

	cols, warnings := service.InferTable(table)
	for _, w := range warnings {
		r.logger.Warn("parquet column typing degraded", zap.Error(w))
		r.console.LogWarning("%s", w)
	}

	schema := arrowSchema(cols)
	record := buildRecord(schema, cols, table.Len())
	defer record.Release()

	return r.writeAtomically(target.Path, func(w io.Writer) error {
		props := parquet.NewWriterProperties(parquet.WithCompression(codec))
		// Hide Close from the writer: the temp file is closed by writeAtomically.
		fw, err := pqarrow.NewFileWriter(schema, struct{ io.Writer }{w}, props, pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema()))
		if err != nil {
			return fmt.Errorf("%w: %w", types.ErrSerialization, err)
		}
		if record.NumRows() > 0 {
			if err := fw.Write(record); err != nil {
				_ = fw.Close()
				return err
			}
		}
		return fw.Close()
	})
}

func arrowType(t service.ColumnType) arrow.DataType {
	switch t {
	case service.ColumnInteger:
		return arrow.PrimitiveTypes.Int64
	case service.ColumnFloat:
		return arrow.PrimitiveTypes.Float64
	case service.ColumnTimestamp:
		return &arrow.TimestampType{Unit: arrow.Millisecond, TimeZone: "UTC"}
	default:
		return arrow.BinaryTypes.String
	}
}

func arrowSchema(cols []service.InferredColumn) *arrow.Schema {
	fields := make([]arrow.Field, len(cols))
	for i, col := range cols {
		fields[i] = arrow.Field{Name: col.Name, Type: arrowType(col.Type), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

func buildRecord(schema *arrow.Schema, cols []service.InferredColumn, rows int) arrow.Record {
	b := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer b.Release()

	for i, col := range cols {
		switch col.Type {
		case service.ColumnInteger:
			fb := b.Field(i).(*array.Int64Builder)
			for r := 0; r < rows; r++ {
				if col.Valid[r] {
					fb.Append(col.Ints[r])
				} else {
					fb.AppendNull()
				}
			}
		case service.ColumnFloat:
			fb := b.Field(i).(*array.Float64Builder)
			for r := 0; r < rows; r++ {
				if col.Valid[r] {
					fb.Append(col.Floats[r])
				} else {
					fb.AppendNull()
				}
			}
		case service.ColumnTimestamp:
			fb := b.Field(i).(*array.TimestampBuilder)
			for r := 0; r < rows; r++ {
				if col.Valid[r] {
					fb.Append(arrow.Timestamp(col.Times[r].UnixMilli()))
				} else {
					fb.AppendNull()
				}
			}
		default:
			fb := b.Field(i).(*array.StringBuilder)
			for r := 0; r < rows; r++ {
				if col.Valid[r] {
					fb.Append(col.Texts[r])
				} else {
					fb.AppendNull()
				}
			}
		}
	}

	return b.NewRecord()
}
