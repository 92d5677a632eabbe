// Package sparse implements Sparse[T], a compressed-sparse-row matrix
// over tensorcore's dense Tensor[T], plus its structural arithmetic and
// dense interop.
package sparse

import (
	"errors"
	"fmt"
	"sort"

	"github.com/itohio/tensorcore/randsrc"
	"github.com/itohio/tensorcore/tensor"
)

// Number is the scalar element type Sparse is generic over.
type Number = tensor.Number

// ErrDimMismatch reports sparse operands whose rows/cols disagree, or
// a triplet list whose parallel arrays disagree in length.
var ErrDimMismatch = errors.New("sparse: dimension mismatch")

// ErrIndexOutOfRange reports a row or column index outside the matrix.
var ErrIndexOutOfRange = errors.New("sparse: index out of range")

// Sparse is an r x c compressed-sparse-row matrix: rowStart has r+1
// entries (rowStart[i+1]-rowStart[i] is the nnz of row i); column and
// data hold, per row, the (sorted) column indices and values of that
// row's stored entries. It is structurally immutable: there is no
// element write, only whole-matrix construction.
type Sparse[T Number] struct {
	rows, cols int
	rowStart   []int
	column     []int
	data       []T
}

// Rows returns the row count.
func (s Sparse[T]) Rows() int { return s.rows }

// Cols returns the column count.
func (s Sparse[T]) Cols() int { return s.cols }

// NNZ returns the number of stored entries.
func (s Sparse[T]) NNZ() int { return len(s.data) }

// Empty returns an r x c matrix with no stored entries.
func Empty[T Number](r, c int) Sparse[T] {
	return Sparse[T]{rows: r, cols: c, rowStart: make([]int, r+1)}
}

type triplet[T Number] struct {
	row, col int
	value    T
}

// FromTriplets builds a CSR from parallel row/column index arrays and
// a values tensor (all the same length). The effective row/column
// count is max(R, 1+max(rows)) / max(C, 1+max(cols)). Entries are
// sorted by (row, col); among duplicate (row, col) pairs the last
// occurrence (in input order) wins, after zero-valued entries are
// dropped.
func FromTriplets[T Number](rows, cols []int, data tensor.Tensor[T], R, C int) Sparse[T] {
	if len(rows) != len(cols) || len(rows) != data.Size() {
		panic(fmt.Errorf("%w: from_triplets: %d rows, %d cols, %d data", ErrDimMismatch, len(rows), len(cols), data.Size()))
	}

	effR, effC := R, C
	for _, r := range rows {
		if r+1 > effR {
			effR = r + 1
		}
	}
	for _, c := range cols {
		if c+1 > effC {
			effC = c + 1
		}
	}

	values := data.Flat()
	order := make([]int, 0, len(rows))
	for i, v := range values {
		if v == zero[T]() {
			continue
		}
		order = append(order, i)
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if rows[a] != rows[b] {
			return rows[a] < rows[b]
		}
		return cols[a] < cols[b]
	})

	trips := make([]triplet[T], 0, len(order))
	for _, i := range order {
		n := len(trips)
		if n > 0 && trips[n-1].row == rows[i] && trips[n-1].col == cols[i] {
			trips[n-1].value = values[i]
			continue
		}
		trips = append(trips, triplet[T]{row: rows[i], col: cols[i], value: values[i]})
	}

	return fromSortedTriplets(effR, effC, trips)
}

func fromSortedTriplets[T Number](r, c int, trips []triplet[T]) Sparse[T] {
	out := Sparse[T]{rows: r, cols: c, rowStart: make([]int, r+1), column: make([]int, len(trips)), data: make([]T, len(trips))}
	row := 0
	for i, t := range trips {
		for row < t.row {
			out.rowStart[row+1] = i
			row++
		}
		out.column[i] = t.col
		out.data[i] = t.value
	}
	for row < r {
		out.rowStart[row+1] = len(trips)
		row++
	}
	return out
}

func zero[T Number]() T {
	var z T
	return z
}

// FromDense scans t (which must be rank 2) row by row and keeps its
// non-zero entries.
func FromDense[T Number](t tensor.Tensor[T]) Sparse[T] {
	if t.Rank() != 2 {
		panic(fmt.Errorf("sparse: from_dense requires rank 2, got %d", t.Rank()))
	}
	r, c := t.Dims()[0], t.Dims()[1]
	trips := make([]triplet[T], 0)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := t.At(i, j); v != zero[T]() {
				trips = append(trips, triplet[T]{row: i, col: j, value: v})
			}
		}
	}
	return fromSortedTriplets(r, c, trips)
}

// Eye returns the r x c identity pattern (ones on the main diagonal).
func Eye[T Number](r, c int) Sparse[T] {
	n := r
	if c < n {
		n = c
	}
	trips := make([]triplet[T], n)
	for i := 0; i < n; i++ {
		trips[i] = triplet[T]{row: i, col: i, value: one[T]()}
	}
	return fromSortedTriplets(r, c, trips)
}

func one[T Number]() T {
	var z T
	return z + 1
}

// Random returns an r x c matrix where each entry is independently
// kept with probability density, scaled by 1/density.
func Random[T Number](r, c int, density float64) Sparse[T] {
	trips := make([]triplet[T], 0)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if randsrc.RandRange(0, 1) >= density {
				continue
			}
			v := randsrc.Rand[T]()
			trips = append(trips, triplet[T]{row: i, col: j, value: scaleValue(v, 1/density)})
		}
	}
	return fromSortedTriplets(r, c, trips)
}

func scaleValue[T Number](v T, s float64) T {
	switch x := any(v).(type) {
	case float64:
		return any(x * s).(T)
	case complex128:
		return any(x * complex(s, 0)).(T)
	default:
		panic(fmt.Sprintf("sparse: unsupported element type %T", v))
	}
}

// Diag builds an r x c CSR with v (a rank-1 tensor) placed on the k-th
// diagonal, matching dense Diag's semantics.
func Diag[T Number](v tensor.Tensor[T], k, r, c int) Sparse[T] {
	trips := make([]triplet[T], 0, v.Size())
	src := v.Flat()
	for n := 0; n < len(src); n++ {
		var row, col int
		if k >= 0 {
			row, col = n, n+k
		} else {
			row, col = n-k, n
		}
		if row < 0 || row >= r || col < 0 || col >= c {
			break
		}
		if src[n] == zero[T]() {
			continue
		}
		trips = append(trips, triplet[T]{row: row, col: col, value: src[n]})
	}
	return fromSortedTriplets(r, c, trips)
}

// At reads the element at (r, c) via binary search over row r's
// stored column indices (0 if not stored).
func (s Sparse[T]) At(r, c int) T {
	if r < 0 || r >= s.rows || c < 0 || c >= s.cols {
		panic(fmt.Errorf("%w: (%d, %d) in %dx%d", ErrIndexOutOfRange, r, c, s.rows, s.cols))
	}
	lo, hi := s.rowStart[r], s.rowStart[r+1]
	cols := s.column[lo:hi]
	i := sort.SearchInts(cols, c)
	if i < len(cols) && cols[i] == c {
		return s.data[lo+i]
	}
	return zero[T]()
}

// Full allocates an r x c dense tensor, zero-fills it, and scatters
// the stored entries into it.
func Full[T Number](s Sparse[T]) tensor.Tensor[T] {
	out := tensor.Empty[T](s.rows, s.cols)
	for r := 0; r < s.rows; r++ {
		for i := s.rowStart[r]; i < s.rowStart[r+1]; i++ {
			out.SetAt(s.data[i], r, s.column[i])
		}
	}
	return out
}

func checkSameShape[T Number](a, b Sparse[T]) {
	if a.rows != b.rows || a.cols != b.cols {
		panic(fmt.Errorf("%w: %dx%d vs %dx%d", ErrDimMismatch, a.rows, a.cols, b.rows, b.cols))
	}
}

// merge walks both CSRs in row/column order, combining colliding
// entries with combine and passing through unmatched ones according to
// keepA/keepB (used to select union vs. intersection semantics).
func merge[T Number](a, b Sparse[T], combine func(x, y T) T, keepA, keepB bool) Sparse[T] {
	checkSameShape(a, b)
	trips := make([]triplet[T], 0)
	for r := 0; r < a.rows; r++ {
		ai, aEnd := a.rowStart[r], a.rowStart[r+1]
		bi, bEnd := b.rowStart[r], b.rowStart[r+1]
		for ai < aEnd || bi < bEnd {
			switch {
			case bi >= bEnd || (ai < aEnd && a.column[ai] < b.column[bi]):
				if keepA {
					trips = append(trips, triplet[T]{row: r, col: a.column[ai], value: a.data[ai]})
				}
				ai++
			case ai >= aEnd || (bi < bEnd && b.column[bi] < a.column[ai]):
				if keepB {
					trips = append(trips, triplet[T]{row: r, col: b.column[bi], value: b.data[bi]})
				}
				bi++
			default:
				v := combine(a.data[ai], b.data[bi])
				if v != zero[T]() {
					trips = append(trips, triplet[T]{row: r, col: a.column[ai], value: v})
				}
				ai++
				bi++
			}
		}
	}
	return fromSortedTriplets(a.rows, a.cols, trips)
}

// Add computes the structural union of a and b, summing colliding
// entries and dropping results that cancel to zero.
func Add[T Number](a, b Sparse[T]) Sparse[T] {
	return merge(a, b, func(x, y T) T { return x + y }, true, true)
}

// Sub computes the structural union of a and b, subtracting colliding
// entries and dropping results that cancel to zero.
func Sub[T Number](a, b Sparse[T]) Sparse[T] {
	return merge(a, Neg(b), func(x, y T) T { return x + y }, true, true)
}

// Mul computes the element-wise (Hadamard) product: only positions
// stored in both a and b survive.
func Mul[T Number](a, b Sparse[T]) Sparse[T] {
	return merge(a, b, func(x, y T) T { return x * y }, false, false)
}

// Neg negates every stored value.
func Neg[T Number](a Sparse[T]) Sparse[T] {
	out := a
	out.data = make([]T, len(a.data))
	for i, v := range a.data {
		out.data[i] = -v
	}
	return out
}

// MulScalar scales every stored value by alpha.
func MulScalar[T Number](a Sparse[T], alpha T) Sparse[T] {
	out := a
	out.data = make([]T, len(a.data))
	for i, v := range a.data {
		out.data[i] = v * alpha
	}
	return out
}

// DivScalar divides every stored value by alpha.
func DivScalar[T Number](a Sparse[T], alpha T) Sparse[T] {
	out := a
	out.data = make([]T, len(a.data))
	for i, v := range a.data {
		out.data[i] = v / alpha
	}
	return out
}

// MMult computes the dense product S x D, iterating S's stored rows:
// for each (r, c, v), C[r,:] += v * D[c,:].
func MMult[T Number](s Sparse[T], d tensor.Tensor[T]) tensor.Tensor[T] {
	if d.Rank() != 2 {
		panic(fmt.Errorf("sparse: mmult requires a rank-2 dense operand, got %d", d.Rank()))
	}
	if s.cols == 0 || d.Dims()[0] != s.cols {
		panic(fmt.Errorf("%w: mmult: S is %dx%d, D has %d rows", ErrDimMismatch, s.rows, s.cols, d.Dims()[0]))
	}
	n := d.Dims()[1]
	out := tensor.Zeros[T](s.rows, n)
	for r := 0; r < s.rows; r++ {
		for i := s.rowStart[r]; i < s.rowStart[r+1]; i++ {
			c, v := s.column[i], s.data[i]
			for j := 0; j < n; j++ {
				out.SetAt(out.At(r, j)+v*d.At(c, j), r, j)
			}
		}
	}
	return out
}

// MMultDense computes the dense product D x S, the transpose of
// MMult's kernel.
func MMultDense[T Number](d tensor.Tensor[T], s Sparse[T]) tensor.Tensor[T] {
	if d.Rank() != 2 {
		panic(fmt.Errorf("sparse: mmult requires a rank-2 dense operand, got %d", d.Rank()))
	}
	if s.rows == 0 || d.Dims()[1] != s.rows {
		panic(fmt.Errorf("%w: mmult: D has %d cols, S is %dx%d", ErrDimMismatch, d.Dims()[1], s.rows, s.cols))
	}
	m := d.Dims()[0]
	out := tensor.Zeros[T](m, s.cols)
	for r := 0; r < s.rows; r++ {
		for i := s.rowStart[r]; i < s.rowStart[r+1]; i++ {
			c, v := s.column[i], s.data[i]
			for row := 0; row < m; row++ {
				out.SetAt(out.At(row, c)+d.At(row, r)*v, row, c)
			}
		}
	}
	return out
}

// Kron computes the Kronecker product of two CSRs: nnz(a)*nnz(b)
// entries, dimensions (a.rows*b.rows, a.cols*b.cols), walked row-major.
func Kron[T Number](a, b Sparse[T]) Sparse[T] {
	trips := make([]triplet[T], 0, len(a.data)*len(b.data))
	for ar := 0; ar < a.rows; ar++ {
		for ai := a.rowStart[ar]; ai < a.rowStart[ar+1]; ai++ {
			ac, av := a.column[ai], a.data[ai]
			for br := 0; br < b.rows; br++ {
				for bi := b.rowStart[br]; bi < b.rowStart[br+1]; bi++ {
					bc, bv := b.column[bi], b.data[bi]
					trips = append(trips, triplet[T]{
						row:   ar*b.rows + br,
						col:   ac*b.cols + bc,
						value: av * bv,
					})
				}
			}
		}
	}
	sort.SliceStable(trips, func(i, j int) bool {
		if trips[i].row != trips[j].row {
			return trips[i].row < trips[j].row
		}
		return trips[i].col < trips[j].col
	})
	return fromSortedTriplets(a.rows*b.rows, a.cols*b.cols, trips)
}

// Kron2 is Kron with its arguments swapped: Kron2(A, B) == Kron(B, A).
func Kron2[T Number](a, b Sparse[T]) Sparse[T] {
	return Kron(b, a)
}

// AllEqual reports whether two sparses have identical shape and
// structural arrays (row_start, column, data all match exactly).
func AllEqual[T Number](a, b Sparse[T]) bool {
	if a.rows != b.rows || a.cols != b.cols {
		return false
	}
	if len(a.data) != len(b.data) {
		return false
	}
	for i := range a.rowStart {
		if a.rowStart[i] != b.rowStart[i] {
			return false
		}
	}
	for i := range a.data {
		if a.column[i] != b.column[i] || a.data[i] != b.data[i] {
			return false
		}
	}
	return true
}

// AllEqualDense densifies s and compares it element-wise to t.
func AllEqualDense[T Number](s Sparse[T], t tensor.Tensor[T]) bool {
	if t.Rank() != 2 || t.Dims()[0] != s.rows || t.Dims()[1] != s.cols {
		return false
	}
	full := Full(s)
	return full.Dims().Equal(t.Dims()) && flatEqual(full.Flat(), t.Flat())
}

func flatEqual[T Number](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
