package eigs

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func diagApply(values []float64) MatVec {
	return func(x []float64) []float64 {
		y := make([]float64, len(x))
		for i, v := range values {
			y[i] = v * x[i]
		}
		return y
	}
}

func TestNewRejectsOutOfRangeNev(t *testing.T) {
	_, err := New(5, LM, 0)
	assert.ErrorIs(t, err, ErrInvalidConstruction)

	_, err = New(5, LM, 5)
	assert.ErrorIs(t, err, ErrInvalidConstruction)
}

func TestNewRejectsImaginarySelectorOnRealProblem(t *testing.T) {
	_, err := New(5, LI, 1)
	assert.ErrorIs(t, err, ErrInvalidConstruction)
}

func TestDefaultNcvAndMaxit(t *testing.T) {
	d, err := New(100, LM, 3)
	require.NoError(t, err)
	assert.Equal(t, 20, d.ncv)
	assert.GreaterOrEqual(t, d.maxit, 300)
}

func TestEigsIdentityReturnsOnes(t *testing.T) {
	n := 6
	apply := diagApply([]float64{1, 1, 1, 1, 1, 1})
	result, state, err := Eigs(apply, n, LM, 2, true)
	require.NoError(t, err)
	assert.Contains(t, []State{Finished, NoConvergence, TooManyIterations}, state)
	for _, v := range result.Values {
		assert.InDelta(t, 1.0, real(v), 1e-6)
		assert.InDelta(t, 0.0, imag(v), 1e-6)
	}
}

func TestEigsDiagonalLargestMagnitude(t *testing.T) {
	n := 10
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = float64(i + 1)
	}
	apply := diagApply(vals)

	result, _, err := Eigs(apply, n, LM, 1, false)
	require.NoError(t, err)
	require.Len(t, result.Values, 1)
	assert.InDelta(t, float64(n), real(result.Values[0]), 1e-4)
}

func TestEigsDiagonalSmallestMagnitude(t *testing.T) {
	n := 10
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = float64(i + 1)
	}
	apply := diagApply(vals)

	result, _, err := Eigs(apply, n, SM, 1, false)
	require.NoError(t, err)
	require.Len(t, result.Values, 1)
	assert.InDelta(t, 1.0, real(result.Values[0]), 1e-3)
}

func TestSortValuesOrdersByWhich(t *testing.T) {
	vals := []complex128{3, -5, 1, -2}

	lm := append([]complex128{}, vals...)
	SortValues(lm, nil, LM)
	assert.Equal(t, complex128(-5), lm[0])

	sm := append([]complex128{}, vals...)
	SortValues(sm, nil, SM)
	assert.Equal(t, complex128(1), sm[0])

	lr := append([]complex128{}, vals...)
	SortValues(lr, nil, LR)
	assert.Equal(t, complex128(3), lr[0])

	sr := append([]complex128{}, vals...)
	SortValues(sr, nil, SR)
	assert.Equal(t, complex128(-5), sr[0])
}

func TestDriverStateMachineContractPanics(t *testing.T) {
	d, err := New(4, LM, 1)
	require.NoError(t, err)

	assert.Panics(t, func() { d.GetX() })
	assert.Panics(t, func() { d.SetY([]float64{1, 2, 3, 4}) })

	var out Eigenpairs
	assert.Panics(t, func() { d.GetData(&out) })
}

func TestUpdatePanicsInErrorState(t *testing.T) {
	d, err := New(4, LM, 1)
	require.NoError(t, err)
	d.state = Error
	assert.Panics(t, func() { d.Update() })
}

func TestEigsHermitianOnDiagonalComplexOperator(t *testing.T) {
	n := 6
	vals := []float64{1, 2, 3, 4, 5, 6}
	apply := func(x []complex128) []complex128 {
		y := make([]complex128, n)
		for i, v := range vals {
			y[i] = complex(v, 0) * x[i]
		}
		return y
	}

	result, _, err := EigsHermitian(apply, n, LM, 1, false)
	require.NoError(t, err)
	require.Len(t, result.Values, 1)
	assert.InDelta(t, 6.0, real(result.Values[0]), 1e-3)
	assert.InDelta(t, 0.0, math.Abs(imag(result.Values[0])), 1e-3)
}
