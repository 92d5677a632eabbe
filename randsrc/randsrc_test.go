package randsrc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReseedIsReproducible(t *testing.T) {
	Reseed(42)
	a := []float64{Rand[float64](), Rand[float64](), Rand[float64]()}

	Reseed(42)
	b := []float64{Rand[float64](), Rand[float64](), Rand[float64]()}

	assert.Equal(t, a, b)
}

func TestRandFloatInUnitInterval(t *testing.T) {
	Reseed(1)
	for i := 0; i < 100; i++ {
		v := Rand[float64]()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestRandComplexParts(t *testing.T) {
	Reseed(1)
	c := Rand[complex128]()
	assert.GreaterOrEqual(t, real(c), 0.0)
	assert.Less(t, real(c), 1.0)
	assert.GreaterOrEqual(t, imag(c), 0.0)
	assert.Less(t, imag(c), 1.0)
}

func TestRandRangeBounds(t *testing.T) {
	Reseed(7)
	for i := 0; i < 50; i++ {
		v := RandRange(-2, 3)
		assert.GreaterOrEqual(t, v, -2.0)
		assert.Less(t, v, 3.0)
	}
}

func TestRandIntBounds(t *testing.T) {
	Reseed(7)
	for i := 0; i < 50; i++ {
		v := RandInt(5, 10)
		assert.GreaterOrEqual(t, v, 5)
		assert.Less(t, v, 10)
	}
}
