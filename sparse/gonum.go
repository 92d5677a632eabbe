package sparse

import "gonum.org/v1/gonum/mat"

// gonumCSR adapts a Sparse[float64] to gonum's read-only mat.Matrix,
// mat.ColViewer, and mat.RowViewer interfaces so it can be handed
// directly to gonum routines that accept a mat.Matrix (e.g.
// mat.Dense.Mul) without densifying first.
type gonumCSR struct {
	s Sparse[float64]
}

var (
	_ mat.Matrix    = gonumCSR{}
	_ mat.ColViewer = gonumCSR{}
	_ mat.RowViewer = gonumCSR{}
)

// AsGonum wraps s as a gonum mat.Matrix sharing s's storage.
func AsGonum(s Sparse[float64]) mat.Matrix {
	return gonumCSR{s: s}
}

func (g gonumCSR) Dims() (int, int) { return g.s.rows, g.s.cols }

func (g gonumCSR) At(i, j int) float64 { return g.s.At(i, j) }

func (g gonumCSR) T() mat.Matrix { return mat.Transpose{Matrix: g} }

// RowView returns row i as a dense gonum vector.
func (g gonumCSR) RowView(i int) mat.Vector {
	row := make([]float64, g.s.cols)
	for k := g.s.rowStart[i]; k < g.s.rowStart[i+1]; k++ {
		row[g.s.column[k]] = g.s.data[k]
	}
	return mat.NewVecDense(g.s.cols, row)
}

// ColView returns column j as a dense gonum vector.
func (g gonumCSR) ColView(j int) mat.Vector {
	col := make([]float64, g.s.rows)
	for i := 0; i < g.s.rows; i++ {
		col[i] = g.s.At(i, j)
	}
	return mat.NewVecDense(g.s.rows, col)
}
