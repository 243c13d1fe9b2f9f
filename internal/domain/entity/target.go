package entity

// TargetKind names the output mode selected on the command line.
type TargetKind string

const (
	TargetDisplay TargetKind = "print"
	TargetCSV     TargetKind = "csv"
	TargetParquet TargetKind = "parquet"
)

// Sinks is the set of renderers a table can be sent to.
type Sinks interface {
	Display(table *Table) error
	CSV(table *Table, target CSVTarget) (string, error)
	Parquet(table *Table, target ParquetTarget) (string, error)
}

// ExportTarget seleciona exatamente um sink. O conjunto de variantes é fechado:
// só DisplayTarget, CSVTarget e ParquetTarget implementam a interface.
type ExportTarget interface {
	Kind() TargetKind
	// Dispatch sends the table to the one sink this target selects and returns
	// the written file path, or "" when nothing was written to disk.
	Dispatch(sinks Sinks, table *Table) (string, error)
	exportTarget()
}

// DisplayTarget renders the table on the terminal.
type DisplayTarget struct{}

func (DisplayTarget) Kind() TargetKind { return TargetDisplay }

func (DisplayTarget) Dispatch(sinks Sinks, table *Table) (string, error) {
	return "", sinks.Display(table)
}

func (DisplayTarget) exportTarget() {}

// CSVTarget writes the table as a CSV file.
type CSVTarget struct {
	Path string
}

func (CSVTarget) Kind() TargetKind { return TargetCSV }

func (t CSVTarget) Dispatch(sinks Sinks, table *Table) (string, error) {
	return sinks.CSV(table, t)
}

func (CSVTarget) exportTarget() {}

// ParquetTarget writes the table as a Parquet file.
type ParquetTarget struct {
	Path        string
	Compression string
}

func (ParquetTarget) Kind() TargetKind { return TargetParquet }

func (t ParquetTarget) Dispatch(sinks Sinks, table *Table) (string, error) {
	return sinks.Parquet(table, t)
}

func (ParquetTarget) exportTarget() {}
