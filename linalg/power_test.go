package linalg

import (
	"math"
	"testing"

	"github.com/itohio/tensorcore/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEigPowerRightFindsDominantEigenvalue(t *testing.T) {
	a, err := tensor.FromInitializer[float64]([]any{
		[]any{2.0, 0.0},
		[]any{0.0, 5.0},
	})
	require.NoError(t, err)

	lambda, v := EigPowerRight(a, 1e-12, 500)
	assert.InDelta(t, 5.0, math.Abs(lambda), 1e-6)
	assert.Equal(t, 2, v.Size())
}

func TestEigPowerLeftMatchesTransposeRightEigenvalue(t *testing.T) {
	a, err := tensor.FromInitializer[float64]([]any{
		[]any{4.0, 1.0},
		[]any{0.0, 2.0},
	})
	require.NoError(t, err)

	lambda, _ := EigPowerLeft(a, 1e-12, 1000)
	assert.InDelta(t, 4.0, math.Abs(lambda), 1e-4)
}

func TestPowerIteratePanicsOnZeroVector(t *testing.T) {
	z, err := tensor.FromInitializer[float64]([]any{
		[]any{0.0, 0.0},
		[]any{0.0, 0.0},
	})
	require.NoError(t, err)

	assert.Panics(t, func() { EigPowerRight(z, 1e-9, 50) })
}

func TestNormalizedHandlesZeroVector(t *testing.T) {
	out, norm := normalized([]float64{0, 0, 0})
	assert.Equal(t, 0.0, norm)
	assert.Equal(t, []float64{0, 0, 0}, out)
}
