// Package linalg wraps gonum's dense LAPACK-backed factorisations
// (SVD, eigendecomposition, solve, matrix exponential) behind the same
// validate-allocate-invoke-pack contract the rest of this module uses,
// operating on real (float64) Tensor operands.
package linalg

import (
	"errors"
	"fmt"

	"github.com/itohio/tensorcore/dims"
	"github.com/itohio/tensorcore/tensor"
	"gonum.org/v1/gonum/mat"
)

// ErrInvalidInput reports an empty or wrongly-shaped operand (a
// programming error, per spec §7 categories 1-3: these routines never
// silently accept degenerate input).
var ErrInvalidInput = errors.New("linalg: invalid input")

// ErrFactorizationFailed reports the underlying LAPACK-equivalent
// routine failing to converge.
var ErrFactorizationFailed = errors.New("linalg: factorization failed")

func requireMatrix(a tensor.Tensor[float64]) (rows, cols int) {
	if a.Rank() != 2 || a.Size() == 0 {
		panic(fmt.Errorf("%w: expected a non-empty rank-2 tensor, got rank %d size %d", ErrInvalidInput, a.Rank(), a.Size()))
	}
	return a.Dims()[0], a.Dims()[1]
}

func requireSquare(a tensor.Tensor[float64]) int {
	rows, cols := requireMatrix(a)
	if rows != cols {
		panic(fmt.Errorf("%w: expected a square matrix, got %dx%d", ErrInvalidInput, rows, cols))
	}
	return rows
}

func toDense(a tensor.Tensor[float64]) *mat.Dense {
	rows, cols := requireMatrix(a)
	data := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			data[i*cols+j] = a.At(i, j)
		}
	}
	return mat.NewDense(rows, cols, data)
}

func toSymDense(a tensor.Tensor[float64]) *mat.SymDense {
	n := requireSquare(a)
	data := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			data[i*n+j] = a.At(i, j)
		}
	}
	return mat.NewSymDense(n, data)
}

func fromDense(d mat.Matrix) tensor.Tensor[float64] {
	rows, cols := d.Dims()
	out := tensor.Empty[float64](rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.SetAt(d.At(i, j), i, j)
		}
	}
	return out
}

func fromCDense(d *mat.CDense) tensor.Tensor[complex128] {
	rows, cols := d.Dims()
	out := tensor.Empty[complex128](rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.SetAt(d.At(i, j), i, j)
		}
	}
	return out
}

func toVector(v tensor.Tensor[float64]) *mat.VecDense {
	if v.Rank() != 1 {
		panic(fmt.Errorf("%w: expected a rank-1 tensor, got rank %d", ErrInvalidInput, v.Rank()))
	}
	data := make([]float64, v.Size())
	copy(data, v.Flat())
	return mat.NewVecDense(len(data), data)
}

func fromVector(v mat.Vector) tensor.Tensor[float64] {
	n := v.Len()
	data := make([]float64, n)
	for i := 0; i < n; i++ {
		data[i] = v.AtVec(i)
	}
	return tensor.FromFlat[float64](dims.New(n), data)
}

// Svd factorizes a (m x n) into singular values s (descending, >= 0)
// and, when requested, U (m x m, or m x k when economic) and Vt (n x
// n, or k x n when economic), k = min(m, n).
func Svd(a tensor.Tensor[float64], wantU, wantVT, economic bool) (s, u, vt tensor.Tensor[float64]) {
	dense := toDense(a)

	kind := mat.SVDFull
	if economic {
		kind = mat.SVDThin
	}
	var svd mat.SVD
	if !svd.Factorize(dense, kind) {
		panic(fmt.Errorf("%w: svd", ErrFactorizationFailed))
	}

	values := svd.Values(nil)
	s = tensor.FromFlat[float64](dims.New(len(values)), values)

	if wantU {
		var um mat.Dense
		svd.UTo(&um)
		u = fromDense(&um)
	}
	if wantVT {
		var vm mat.Dense
		svd.VTo(&vm)
		vt = tensor.Transpose(fromDense(&vm))
	}
	return s, u, vt
}

// Eig computes the (complex) eigenvalues of a general square matrix
// and, when requested, its right (R) and/or left (L) eigenvector
// matrices, satisfying A*R = R*diag(lambda) and Lᴴ*A = diag(lambda)*Lᴴ
// to numerical tolerance.
func Eig(a tensor.Tensor[float64], wantLeft, wantRight bool) (lambda tensor.Tensor[complex128], l, r tensor.Tensor[complex128]) {
	requireSquare(a)
	dense := toDense(a)

	kind := mat.EigenNone
	if wantLeft {
		kind |= mat.EigenLeft
	}
	if wantRight {
		kind |= mat.EigenRight
	}

	var eig mat.Eigen
	if !eig.Factorize(dense, kind) {
		panic(fmt.Errorf("%w: eig", ErrFactorizationFailed))
	}

	values := eig.Values(nil)
	lambda = tensor.FromFlat[complex128](dims.New(len(values)), values)

	if wantRight {
		var rm mat.CDense
		eig.VectorsTo(&rm)
		r = fromCDense(&rm)
	}
	if wantLeft {
		var lm mat.CDense
		eig.LeftVectorsTo(&lm)
		l = fromCDense(&lm)
	}
	return lambda, l, r
}

// EigSym computes the eigenvalues (ascending) and, when requested, the
// orthogonal eigenvector matrix U of a symmetric matrix.
func EigSym(a tensor.Tensor[float64], wantVectors bool) (lambda, u tensor.Tensor[float64]) {
	sym := toSymDense(a)

	var eig mat.EigenSym
	if !eig.Factorize(sym, wantVectors) {
		panic(fmt.Errorf("%w: eig_sym", ErrFactorizationFailed))
	}

	n := requireSquare(a)
	values := make([]float64, n)
	eig.Values(values)
	lambda = tensor.FromFlat[float64](dims.New(n), values)

	if wantVectors {
		vecs := eig.VectorsTo(nil)
		u = fromDense(vecs)
	}
	return lambda, u
}

// Expm computes the matrix exponential of a.
func Expm(a tensor.Tensor[float64]) tensor.Tensor[float64] {
	dense := toDense(a)
	var out mat.Dense
	out.Exp(dense)
	return fromDense(&out)
}

// Solve returns X solving A*X = B for a square A.
func Solve(a, b tensor.Tensor[float64]) tensor.Tensor[float64] {
	da := toDense(a)
	db := toDense(b)
	var x mat.Dense
	if err := x.Solve(da, db); err != nil {
		panic(fmt.Errorf("%w: solve: %w", ErrFactorizationFailed, err))
	}
	return fromDense(&x)
}
