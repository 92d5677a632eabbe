package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransposeSwapsAxes(t *testing.T) {
	m, _ := FromInitializer[float64]([]any{
		[]any{1.0, 2.0, 3.0},
		[]any{4.0, 5.0, 6.0},
	})
	tr := Transpose(m)
	assert.Equal(t, []int{3, 2}, []int(tr.Dims()))
	assert.Equal(t, 2.0, tr.At(1, 0))
	assert.Equal(t, 4.0, tr.At(0, 1))
}

func TestAdjointConjugates(t *testing.T) {
	m, _ := FromInitializer[complex128]([]any{
		[]any{complex(1.0, 2.0), complex(3.0, -1.0)},
	})
	a := Adjoint(m)
	assert.Equal(t, complex(1.0, -2.0), a.At(0, 0))
	assert.Equal(t, complex(3.0, 1.0), a.At(1, 0))
}

func TestPermuteGeneralRank(t *testing.T) {
	m := Linspace[float64](0, 23, 24).Reshape(2, 3, 4)
	p := Permute(m, 0, 2)
	assert.Equal(t, []int{4, 3, 2}, []int(p.Dims()))
	assert.Equal(t, m.At(1, 2, 3), p.At(3, 2, 1))
}

func TestDiagMainAndOffset(t *testing.T) {
	v, _ := FromInitializer[float64]([]any{1.0, 2.0, 3.0})
	d := Diag(v, 0, 3, 3)
	assert.Equal(t, 1.0, d.At(0, 0))
	assert.Equal(t, 2.0, d.At(1, 1))
	assert.Equal(t, 0.0, d.At(0, 1))

	up := Diag(v, 1, 3, 4)
	assert.Equal(t, 1.0, up.At(0, 1))
	assert.Equal(t, 2.0, up.At(1, 2))
}

func TestTakeDiagInvertsDiag(t *testing.T) {
	v, _ := FromInitializer[float64]([]any{1.0, 2.0, 3.0})
	d := Diag(v, 0, 3, 3)
	back := TakeDiag(d, 0, 0, 1)
	assert.Equal(t, []int{3}, []int(back.Dims()))
	assert.Equal(t, 1.0, back.At(0))
	assert.Equal(t, 2.0, back.At(1))
	assert.Equal(t, 3.0, back.At(2))
}

func TestTraceSumsMainDiagonal(t *testing.T) {
	m, _ := FromInitializer[float64]([]any{
		[]any{1.0, 2.0},
		[]any{3.0, 4.0},
	})
	assert.Equal(t, 5.0, Trace(m))
}

func TestKronBlockStructure(t *testing.T) {
	a, _ := FromInitializer[float64]([]any{
		[]any{1.0, 2.0},
	})
	b, _ := FromInitializer[float64]([]any{
		[]any{1.0, 0.0},
		[]any{0.0, 1.0},
	})
	k := Kron(a, b)
	require.Equal(t, []int{2, 4}, []int(k.Dims()))
	assert.Equal(t, 1.0, k.At(0, 0))
	assert.Equal(t, 2.0, k.At(0, 2))
}

func TestKron2SwapsArguments(t *testing.T) {
	a, _ := FromInitializer[float64]([]any{[]any{1.0, 2.0}})
	b, _ := FromInitializer[float64]([]any{[]any{3.0, 4.0}})
	assert.Equal(t, Kron(b, a).Flat(), Kron2(a, b).Flat())
}

func TestScaleMultipliesAlongAxis(t *testing.T) {
	m := Ones[float64](2, 3)
	v, _ := FromInitializer[float64]([]any{1.0, 2.0, 3.0})
	out := Scale(m, 1, v)
	assert.Equal(t, 1.0, out.At(0, 0))
	assert.Equal(t, 2.0, out.At(0, 1))
	assert.Equal(t, 3.0, out.At(0, 2))
}

func TestLinspaceEndpointsInclusive(t *testing.T) {
	l := Linspace[float64](0, 10, 5)
	assert.Equal(t, 0.0, l.AtFlat(0))
	assert.Equal(t, 10.0, l.AtFlat(4))
	assert.Equal(t, 5.0, l.AtFlat(2))
}

func TestSumMeanWholeAndAxis(t *testing.T) {
	m, _ := FromInitializer[float64]([]any{
		[]any{1.0, 2.0},
		[]any{3.0, 4.0},
	})
	assert.Equal(t, 10.0, Sum(m).AtFlat(0))
	assert.Equal(t, 2.5, Mean(m).AtFlat(0))

	colSums := Sum(m, 0)
	assert.Equal(t, []int{2}, []int(colSums.Dims()))
	assert.Equal(t, 4.0, colSums.AtFlat(0))
	assert.Equal(t, 6.0, colSums.AtFlat(1))
}

func TestMaxMinWholeAndAxis(t *testing.T) {
	m, _ := FromInitializer[float64]([]any{
		[]any{1.0, 5.0},
		[]any{3.0, 2.0},
	})
	assert.Equal(t, 5.0, Max(m).AtFlat(0))
	assert.Equal(t, 1.0, Min(m).AtFlat(0))

	rowMax := Max(m, 1)
	assert.Equal(t, 5.0, rowMax.AtFlat(0))
	assert.Equal(t, 3.0, rowMax.AtFlat(1))
}
