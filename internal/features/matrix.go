package features

// Matrix is a dense row-major table with named columns.
type Matrix struct {
	Columns []string
	Rows    [][]float64
}

// Len returns the number of rows.
func (m Matrix) Len() int { return len(m.Rows) }

// Width returns the number of columns.
func (m Matrix) Width() int { return len(m.Columns) }

// ColumnIndex returns the position of name, or -1.
func (m Matrix) ColumnIndex(name string) int {
	for i, c := range m.Columns {
		if c == name {
			return i
		}
	}
	return -1
}
