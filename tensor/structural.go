package tensor

import (
	"fmt"
	"math/cmplx"

	"github.com/itohio/tensorcore/dims"
)

func resolveAxis(rank, axis int) int {
	a := axis
	if a < 0 {
		a += rank
	}
	if a < 0 || a >= rank {
		panic(fmt.Errorf("%w: axis %d for rank %d", dims.ErrIndexOutOfRange, axis, rank))
	}
	return a
}

func conj[T Number](x T) T {
	if v, ok := any(x).(complex128); ok {
		return any(cmplx.Conj(v)).(T)
	}
	return x
}

// Transpose swaps the two axes of a 2-D tensor.
func Transpose[T Number](m Tensor[T]) Tensor[T] {
	if m.Rank() != 2 {
		panic(fmt.Errorf("tensor: Transpose requires rank 2, got %d", m.Rank()))
	}
	rows, cols := m.dims[0], m.dims[1]
	out := Empty[T](cols, rows)
	data := out.buf.Mutable()
	src := m.Flat()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			data[out.dims.ColumnMajorPosition(j, i)] = src[m.dims.ColumnMajorPosition(i, j)]
		}
	}
	return out
}

// Adjoint is Transpose followed by element-wise complex conjugation
// (a no-op conjugation for real element types).
func Adjoint[T Number](m Tensor[T]) Tensor[T] {
	return mapInto(Transpose(m), conj[T])
}

// Permute exchanges axes i and j of an N-D tensor (negative axes
// wrap). Supports any rank.
func Permute[T Number](t Tensor[T], i, j int) Tensor[T] {
	rank := t.Rank()
	i = resolveAxis(rank, i)
	j = resolveAxis(rank, j)

	outDims := t.dims.Clone()
	outDims[i], outDims[j] = outDims[j], outDims[i]
	out := Empty[T](outDims...)
	data := out.buf.Mutable()
	src := t.Flat()

	for flat := range src {
		idx := t.dims.Unravel(flat)
		idx[i], idx[j] = idx[j], idx[i]
		data[outDims.ColumnMajorPosition(idx...)] = src[flat]
	}
	return out
}

// Diag builds an r x c matrix with v (a rank-1 tensor) placed on the
// k-th diagonal (k=0 main, k>0 above, k<0 below), zero elsewhere.
func Diag[T Number](v Tensor[T], k, r, c int) Tensor[T] {
	if v.Rank() != 1 {
		panic(fmt.Errorf("tensor: Diag requires a rank-1 tensor, got rank %d", v.Rank()))
	}
	out := Empty[T](r, c)
	data := out.buf.Mutable()
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
		data[out.dims.ColumnMajorPosition(row, col)] = src[n]
	}
	return out
}

// TakeDiag is the inverse of Diag on axes (i, j) of a general tensor:
// it drops those two axes and prepends a new leading axis of length
// max(min(d_i, d_j)-|k|, 0) holding the k-th diagonal's entries, with
// the tensor's remaining axes kept in order after it.
func TakeDiag[T Number](m Tensor[T], k, i, j int) Tensor[T] {
	rank := m.Rank()
	i = resolveAxis(rank, i)
	j = resolveAxis(rank, j)

	di, dj := m.dims[i], m.dims[j]
	n := di
	if dj < n {
		n = dj
	}
	n -= abs(k)
	if n < 0 {
		n = 0
	}

	rest := make([]int, 0, rank-2)
	for axis := 0; axis < rank; axis++ {
		if axis == i || axis == j {
			continue
		}
		rest = append(rest, axis)
	}

	outDims := make(dims.Dimensions, 0, rank-1)
	outDims = append(outDims, n)
	for _, axis := range rest {
		outDims = append(outDims, m.dims[axis])
	}

	out := Empty[T](outDims...)
	if n == 0 {
		return out
	}
	data := out.buf.Mutable()
	src := m.Flat()

	restDims := make(dims.Dimensions, len(rest))
	for p, axis := range rest {
		restDims[p] = m.dims[axis]
	}
	restTotal := restDims.TotalSize()

	for d := 0; d < n; d++ {
		var row, col int
		if k >= 0 {
			row, col = d, d+k
		} else {
			row, col = d-k, d
		}
		for flatRest := 0; flatRest < restTotal; flatRest++ {
			restIdx := restDims.Unravel(flatRest)
			full := make([]int, rank)
			full[i] = row
			full[j] = col
			for p, axis := range rest {
				full[axis] = restIdx[p]
			}
			outIdx := append([]int{d}, restIdx...)
			data[outDims.ColumnMajorPosition(outIdx...)] = src[m.dims.ColumnMajorPosition(full...)]
		}
	}
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Trace sums the main diagonal of a matrix (i=0, j=1 by default);
// explicit axes i, j select a different pair on a general tensor,
// summing every entry of TakeDiag(m, 0, i, j) into one value.
func Trace[T Number](m Tensor[T], axes ...int) T {
	i, j := 0, 1
	if len(axes) == 2 {
		i, j = axes[0], axes[1]
	}
	d := TakeDiag(m, 0, i, j)
	var sum T
	for _, v := range d.Flat() {
		sum += v
	}
	return sum
}

// Kron computes the Matlab-order Kronecker product: block B*A[i,j] is
// placed at block (i, j). For 2-D A (m x n) and B (p x q) the result
// is (m*p) x (n*q).
func Kron[T Number](a, b Tensor[T]) Tensor[T] {
	if a.Rank() != 2 || b.Rank() != 2 {
		panic(fmt.Errorf("tensor: Kron requires rank-2 tensors, got %d and %d", a.Rank(), b.Rank()))
	}
	m, n := a.dims[0], a.dims[1]
	p, q := b.dims[0], b.dims[1]
	out := Empty[T](m*p, n*q)
	if m*n == 0 || p*q == 0 {
		return out
	}
	data := out.buf.Mutable()
	ad, bd := a.Flat(), b.Flat()
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			aij := ad[a.dims.ColumnMajorPosition(i, j)]
			for pi := 0; pi < p; pi++ {
				for qi := 0; qi < q; qi++ {
					v := bd[b.dims.ColumnMajorPosition(pi, qi)] * aij
					data[out.dims.ColumnMajorPosition(i*p+pi, j*q+qi)] = v
				}
			}
		}
	}
	return out
}

// Kron2 is Kron with its arguments swapped: Kron2(A, B) == Kron(B, A).
func Kron2[T Number](a, b Tensor[T]) Tensor[T] {
	return Kron(b, a)
}

// Scale multiplies each slice of t along axis by the corresponding
// entry of the rank-1 tensor v (negative axis wraps).
func Scale[T Number](t Tensor[T], axis int, v Tensor[T]) Tensor[T] {
	axis = resolveAxis(t.Rank(), axis)
	if v.Rank() != 1 || v.dims[0] != t.dims[axis] {
		panic(fmt.Errorf("%w: scale vector has %d entries, axis %d has size %d", ErrSizeMismatch, v.Size(), axis, t.dims[axis]))
	}
	out := t.Clone()
	data := out.buf.Mutable()
	vd := v.Flat()
	for flat := range data {
		coord := t.dims.Unravel(flat)
		data[flat] *= vd[coord[axis]]
	}
	return out
}

// Linspace returns n equispaced points from a to b inclusive.
// n=0 yields an empty tensor; n=1 yields just a.
func Linspace[T Number](a, b T, n int) Tensor[T] {
	out := Empty[T](n)
	if n == 0 {
		return out
	}
	data := out.buf.Mutable()
	if n == 1 {
		data[0] = a
		return out
	}
	step := DivScalarValue(SubValue(b, a), T(n-1))
	for i := 0; i < n; i++ {
		data[i] = a + step*T(i)
	}
	return out
}

// SubValue and DivScalarValue exist so Linspace's step computation
// reads the same for real and complex T without a type switch.
func SubValue[T Number](a, b T) T       { return a - b }
func DivScalarValue[T Number](a, b T) T { return a / b }

func axisReduce[T Number](t Tensor[T], axis int, reduce func(acc, x T, first bool) T) Tensor[T] {
	axis = resolveAxis(t.Rank(), axis)
	outDims := make(dims.Dimensions, 0, t.Rank()-1)
	for a, size := range t.dims {
		if a == axis {
			continue
		}
		outDims = append(outDims, size)
	}
	out := Empty[T](outDims...)
	data := out.buf.Mutable()
	src := t.Flat()

	counts := make([]int, len(data))
	for flat := range src {
		idx := t.dims.Unravel(flat)
		outIdx := make([]int, 0, len(idx)-1)
		for a, v := range idx {
			if a == axis {
				continue
			}
			outIdx = append(outIdx, v)
		}
		outFlat := 0
		if len(outDims) > 0 {
			outFlat = outDims.ColumnMajorPosition(outIdx...)
		}
		data[outFlat] = reduce(data[outFlat], src[flat], counts[outFlat] == 0)
		counts[outFlat]++
	}
	return out
}

// Sum reduces t over axis. With no axis given, returns the
// whole-tensor sum as a length-1 tensor.
func Sum[T Number](t Tensor[T], axis ...int) Tensor[T] {
	if len(axis) == 0 {
		var total T
		for _, v := range t.Flat() {
			total += v
		}
		return Scalar(total)
	}
	return axisReduce(t, axis[0], func(acc, x T, first bool) T {
		if first {
			return x
		}
		return acc + x
	})
}

// Mean reduces t over axis by averaging. With no axis given, returns
// the whole-tensor mean as a length-1 tensor.
func Mean[T Number](t Tensor[T], axis ...int) Tensor[T] {
	if len(axis) == 0 {
		s := Sum(t)
		v := s.AtFlat(0)
		return Scalar(DivScalarValue(v, T(t.Size())))
	}
	a := resolveAxis(t.Rank(), axis[0])
	n := T(t.dims[a])
	s := axisReduce(t, a, func(acc, x T, first bool) T {
		if first {
			return x
		}
		return acc + x
	})
	return mapInto(s, func(x T) T { return x / n })
}

// Scalar wraps a single value as a length-1, rank-1 tensor.
func Scalar[T Number](v T) Tensor[T] {
	out := Empty[T](1)
	out.buf.Mutable()[0] = v
	return out
}

// Max reduces t over axis, keeping the largest entry. With no axis
// given, returns the whole-tensor max as a length-1 tensor. Defined
// only for real element types, like Lt/Gt.
func Max[T Number](t Tensor[T], axis ...int) Tensor[T] {
	reduce := func(acc, x T, first bool) T {
		if first || realOrdered(x) > realOrdered(acc) {
			return x
		}
		return acc
	}
	if len(axis) == 0 {
		var best T
		for i, v := range t.Flat() {
			if i == 0 || realOrdered(v) > realOrdered(best) {
				best = v
			}
		}
		return Scalar(best)
	}
	return axisReduce(t, axis[0], reduce)
}

// Min reduces t over axis, keeping the smallest entry. With no axis
// given, returns the whole-tensor min as a length-1 tensor. Defined
// only for real element types, like Lt/Gt.
func Min[T Number](t Tensor[T], axis ...int) Tensor[T] {
	reduce := func(acc, x T, first bool) T {
		if first || realOrdered(x) < realOrdered(acc) {
			return x
		}
		return acc
	}
	if len(axis) == 0 {
		var best T
		for i, v := range t.Flat() {
			if i == 0 || realOrdered(v) < realOrdered(best) {
				best = v
			}
		}
		return Scalar(best)
	}
	return axisReduce(t, axis[0], reduce)
}
