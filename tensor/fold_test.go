package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMMultIdentity(t *testing.T) {
	a, _ := FromInitializer[float64]([]any{
		[]any{1.0, 2.0},
		[]any{3.0, 4.0},
	})
	id := Eye[float64](2, 2)
	out := MMult(a, id)
	assert.Equal(t, a.Flat(), out.Flat())
}

func TestMMultKnownProduct(t *testing.T) {
	a, _ := FromInitializer[float64]([]any{
		[]any{1.0, 2.0},
		[]any{3.0, 4.0},
	})
	b, _ := FromInitializer[float64]([]any{
		[]any{5.0, 6.0},
		[]any{7.0, 8.0},
	})
	c := MMult(a, b)
	require.Equal(t, []int{2, 2}, []int(c.Dims()))
	assert.Equal(t, 19.0, c.At(0, 0))
	assert.Equal(t, 22.0, c.At(0, 1))
	assert.Equal(t, 43.0, c.At(1, 0))
	assert.Equal(t, 50.0, c.At(1, 1))
}

func TestMMultIntoWritesPreallocatedTarget(t *testing.T) {
	a, _ := FromInitializer[float64]([]any{
		[]any{1.0, 0.0},
		[]any{0.0, 1.0},
	})
	b, _ := FromInitializer[float64]([]any{
		[]any{2.0, 3.0},
		[]any{4.0, 5.0},
	})
	c := Empty[float64](2, 2)
	MMultInto(&c, a, b)
	assert.Equal(t, b.Flat(), c.Flat())
}

func TestFoldContractsNamedAxes(t *testing.T) {
	a := Linspace[float64](1, 24, 24).Reshape(2, 3, 4)
	v := Ones[float64](4)
	out := Fold(a, 2, v, 0)
	require.Equal(t, []int{2, 3}, []int(out.Dims()))

	var want float64
	for l := 0; l < 4; l++ {
		want += a.At(0, 0, l)
	}
	assert.Equal(t, want, out.At(0, 0))
}

func TestFoldCConjugatesA(t *testing.T) {
	a, _ := FromInitializer[complex128]([]any{
		complex(1.0, 1.0), complex(2.0, -1.0),
	})
	b, _ := FromInitializer[complex128]([]any{
		complex(1.0, 0.0), complex(1.0, 0.0),
	})
	out := FoldC(a, 0, b, 0)
	want := complex(1.0, -1.0) + complex(2.0, 1.0)
	assert.Equal(t, want, out.AtFlat(0))
}

func TestFoldAxisSizeMismatchPanics(t *testing.T) {
	a := Zeros[float64](2, 3)
	b := Zeros[float64](4, 5)
	assert.Panics(t, func() { Fold(a, 1, b, 0) })
}

func TestFoldInPlacesBAxesBeforeA(t *testing.T) {
	a := Linspace[float64](1, 8, 8).Reshape(2, 4)
	op, _ := FromInitializer[float64]([]any{
		[]any{1.0, 0.0, 0.0, 0.0},
		[]any{0.0, 1.0, 0.0, 0.0},
		[]any{0.0, 0.0, 1.0, 0.0},
	})
	out := FoldIn(a, 1, op, 1)
	require.Equal(t, []int{3, 2}, []int(out.Dims()))
	for i := 0; i < 2; i++ {
		for k := 0; k < 3; k++ {
			assert.Equal(t, a.At(i, k), out.At(k, i))
		}
	}
}
