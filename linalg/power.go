package linalg

import (
	"math"

	"github.com/itohio/tensorcore/dims"
	"github.com/itohio/tensorcore/tensor"
)

// DefaultTolerance is used by the power-iteration entry points when the
// caller passes a non-positive tolerance.
const DefaultTolerance = 1e-10

// DefaultMaxIter bounds power iteration when the caller passes a
// non-positive iteration budget.
const DefaultMaxIter = 1000

func normalized(v []float64) ([]float64, float64) {
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return v, 0
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out, norm
}

func matVec(dense *[][]float64, x []float64, transpose bool) []float64 {
	rows := len(*dense)
	cols := 0
	if rows > 0 {
		cols = len((*dense)[0])
	}
	out := make([]float64, cols)
	if transpose {
		out = make([]float64, cols)
		for j := 0; j < cols; j++ {
			var sum float64
			for i := 0; i < rows; i++ {
				sum += (*dense)[i][j] * x[i]
			}
			out[j] = sum
		}
		return out
	}
	out = make([]float64, rows)
	for i := 0; i < rows; i++ {
		var sum float64
		for j := 0; j < cols; j++ {
			sum += (*dense)[i][j] * x[j]
		}
		out[i] = sum
	}
	return out
}

func toRows(a tensor.Tensor[float64]) [][]float64 {
	rows, cols := requireMatrix(a)
	out := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		out[i] = make([]float64, cols)
		for j := 0; j < cols; j++ {
			out[i][j] = a.At(i, j)
		}
	}
	return out
}

// EigPowerRight returns the dominant eigenvalue and right eigenvector
// of a square matrix via plain power iteration, starting from an
// all-ones vector and iterating x_{k+1} = normalize(A x_k) until the
// Rayleigh quotient stabilizes within tol or maxIter is reached.
func EigPowerRight(a tensor.Tensor[float64], tol float64, maxIter int) (lambda float64, v tensor.Tensor[float64]) {
	return powerIterate(a, tol, maxIter, false)
}

// EigPowerLeft is EigPowerRight applied to Aᵀ, returning the dominant
// left eigenvector of a (satisfying vᵀA = lambda vᵀ).
func EigPowerLeft(a tensor.Tensor[float64], tol float64, maxIter int) (lambda float64, v tensor.Tensor[float64]) {
	return powerIterate(a, tol, maxIter, true)
}

func powerIterate(a tensor.Tensor[float64], tol float64, maxIter int, transpose bool) (float64, tensor.Tensor[float64]) {
	n := requireSquare(a)
	if tol <= 0 {
		tol = DefaultTolerance
	}
	if maxIter <= 0 {
		maxIter = DefaultMaxIter
	}

	rows := toRows(a)
	x := make([]float64, n)
	for i := range x {
		x[i] = 1
	}
	x, _ = normalized(x)

	var lambda, prev float64
	for iter := 0; iter < maxIter; iter++ {
		y := matVec(&rows, x, transpose)
		y, norm := normalized(y)
		if norm == 0 {
			panic(ErrFactorizationFailed)
		}
		lambda = 0
		for i := range x {
			lambda += y[i] * norm * x[i]
		}
		x = y
		if iter > 0 && math.Abs(lambda-prev) < tol {
			break
		}
		prev = lambda
	}

	return lambda, tensor.FromFlat[float64](dims.New(n), x)
}
