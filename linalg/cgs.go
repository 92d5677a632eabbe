package linalg

import (
	"math"

	"github.com/itohio/tensorcore/dims"
	"github.com/itohio/tensorcore/tensor"
)

// MatVec multiplies an implicit linear operator by a vector. Cgs never
// assembles A explicitly, so a caller supplies this instead of a dense
// matrix, the way the spec's "matrix-free" iterative solvers do.
type MatVec func(x []float64) []float64

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func axpy(alpha float64, x, y []float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		out[i] = alpha*x[i] + y[i]
	}
	return out
}

func scale(alpha float64, x []float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		out[i] = alpha * x[i]
	}
	return out
}

func sub(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

func norm2(x []float64) float64 {
	return math.Sqrt(dot(x, x))
}

// Cgs solves A x = b for a general (non-symmetric) square operator via
// the conjugate-gradient-squared method (Sonneveld 1989), iterating
// until the residual norm falls below tol*||b|| or maxIter is reached.
// It reports via the returned bool whether it converged.
func Cgs(apply MatVec, b []float64, x0 []float64, tol float64, maxIter int) (x []float64, converged bool) {
	n := len(b)
	if tol <= 0 {
		tol = DefaultTolerance
	}
	if maxIter <= 0 {
		maxIter = DefaultMaxIter
	}

	x = make([]float64, n)
	if x0 != nil {
		copy(x, x0)
	}

	bNorm := norm2(b)
	if bNorm == 0 {
		bNorm = 1
	}

	r := sub(b, apply(x))
	if norm2(r)/bNorm < tol {
		return x, true
	}

	rTilde := make([]float64, n)
	copy(rTilde, r)

	u := make([]float64, n)
	p := make([]float64, n)
	q := make([]float64, n)
	copy(u, r)
	copy(p, r)

	rho := dot(rTilde, r)
	if rho == 0 {
		return x, false
	}

	for iter := 0; iter < maxIter; iter++ {
		vHat := apply(p)
		denom := dot(rTilde, vHat)
		if denom == 0 {
			return x, false
		}
		alpha := rho / denom

		q = axpy(-alpha, vHat, u)
		uq := axpy(1, u, q)
		ax := apply(uq)

		x = axpy(alpha, uq, x)
		r = axpy(-alpha, ax, r)

		if norm2(r)/bNorm < tol {
			return x, true
		}

		rhoNew := dot(rTilde, r)
		if rho == 0 {
			return x, false
		}
		beta := rhoNew / rho
		rho = rhoNew

		u = axpy(beta, q, r)
		p = axpy(beta, axpy(beta, p, q), u)
	}

	return x, false
}

// CgsTensor adapts Cgs to dense Tensor operands for callers that hold a
// fully materialized A rather than an implicit operator.
func CgsTensor(a tensor.Tensor[float64], b tensor.Tensor[float64], tol float64, maxIter int) (x tensor.Tensor[float64], converged bool) {
	rows := toRows(a)
	apply := func(v []float64) []float64 {
		return matVec(&rows, v, false)
	}
	sol, ok := Cgs(apply, b.Flat(), nil, tol, maxIter)
	return tensor.FromFlat[float64](dims.New(len(sol)), sol), ok
}
