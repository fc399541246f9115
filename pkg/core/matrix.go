package core

// Matrix is a dense row-major feature matrix. Cols names the columns and
// Index carries the originating row identity of each row.
type Matrix struct {
	R, C  int
	Data  []float64
	Cols  []string
	Index []int
}

// NewMatrix allocates a zero matrix.
func NewMatrix(r, c int) *Matrix {
	return &Matrix{R: r, C: c, Data: make([]float64, r*c)}
}

// At returns element (i, j)
func (m *Matrix) At(i, j int) float64 { return m.Data[i*m.C+j] }

// Set sets element (i, j)
func (m *Matrix) Set(i, j int, v float64) { m.Data[i*m.C+j] = v }

// Row returns row i without copying.
func (m *Matrix) Row(i int) []float64 { return m.Data[i*m.C : (i+1)*m.C] }

// ColIndex returns the position of the named column, or -1.
func (m *Matrix) ColIndex(name string) int {
	for j, c := range m.Cols {
		if c == name {
			return j
		}
	}
	return -1
}
