package linalg

import (
	"testing"

	"github.com/itohio/tensorcore/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCgsSolvesDiagonalSystem(t *testing.T) {
	apply := func(x []float64) []float64 {
		return []float64{2 * x[0], 3 * x[1]}
	}
	b := []float64{4, 9}

	x, ok := Cgs(apply, b, nil, 1e-10, 200)
	require.True(t, ok)
	assert.InDelta(t, 2.0, x[0], 1e-6)
	assert.InDelta(t, 3.0, x[1], 1e-6)
}

func TestCgsSolvesNonSymmetricSystem(t *testing.T) {
	apply := func(x []float64) []float64 {
		return []float64{
			3*x[0] + x[1],
			2*x[0] + 2*x[1],
		}
	}
	b := []float64{5, 4}

	x, ok := Cgs(apply, b, nil, 1e-10, 200)
	require.True(t, ok)
	assert.InDelta(t, 3*x[0]+x[1], b[0], 1e-6)
	assert.InDelta(t, 2*x[0]+2*x[1], b[1], 1e-6)
}

func TestCgsTensorAdapter(t *testing.T) {
	a, err := tensor.FromInitializer[float64]([]any{
		[]any{2.0, 0.0},
		[]any{0.0, 4.0},
	})
	require.NoError(t, err)
	b, err := tensor.FromInitializer[float64]([]any{6.0, 8.0})
	require.NoError(t, err)

	x, ok := CgsTensor(a, b, 1e-10, 200)
	require.True(t, ok)
	assert.InDelta(t, 3.0, x.At(0), 1e-6)
	assert.InDelta(t, 2.0, x.At(1), 1e-6)
}

func TestCgsReturnsTrueOnAlreadyZeroResidual(t *testing.T) {
	apply := func(x []float64) []float64 {
		return []float64{0, 0}
	}
	b := []float64{0, 0}

	_, ok := Cgs(apply, b, nil, 1e-10, 10)
	assert.True(t, ok)
}
