package entity

// Cell é o valor de uma célula da tabela normalizada.
// Valid == false marca um campo ausente ou nulo.
type Cell struct {
	Text  string
	Valid bool
}

// Value cria uma célula preenchida.
func Value(text string) Cell {
	return Cell{Text: text, Valid: true}
}

// Null is the marker used for missing fields.
var Null = Cell{}

// String returns the cell text, empty for null cells.
func (c Cell) String() string {
	if !c.Valid {
		return ""
	}
	return c.Text
}

// Table is the column-aligned result set shared by every sink.
// Every row holds exactly len(Columns) cells, in column order.
type Table struct {
	Columns []string
	Rows    [][]Cell
}

// Len retorna o número de linhas.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Column returns the cells of column i, top to bottom.
func (t *Table) Column(i int) []Cell {
	cells := make([]Cell, len(t.Rows))
	for r, row := range t.Rows {
		cells[r] = row[i]
	}
	return cells
}

// Strings renders row i as plain strings, nulls as empty strings.
func (t *Table) Strings(i int) []string {
	row := t.Rows[i]
	out := make([]string, len(row))
	for c, cell := range row {
		out[c] = cell.String()
	}
	return out
}
