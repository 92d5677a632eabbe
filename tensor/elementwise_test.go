package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddSubMulDiv(t *testing.T) {
	a := Linspace[float64](1, 4, 4).Reshape(2, 2)
	b := Ones[float64](2, 2)

	sum := Add(a, b)
	assert.Equal(t, 2.0, sum.AtFlat(0))

	diff := Sub(a, b)
	assert.Equal(t, 0.0, diff.AtFlat(0))

	prod := Mul(a, b)
	assert.Equal(t, 1.0, prod.AtFlat(0))

	quot := Div(a, b)
	assert.Equal(t, 1.0, quot.AtFlat(0))
}

func TestMismatchedDimsPanics(t *testing.T) {
	a := Zeros[float64](2, 2)
	b := Zeros[float64](3, 3)
	assert.Panics(t, func() { Add(a, b) })
}

func TestScalarOps(t *testing.T) {
	a := Ones[float64](3)
	assert.Equal(t, 3.0, AddScalar(a, 2).AtFlat(0))
	assert.Equal(t, -1.0, SubScalar(a, 2).AtFlat(0))
	assert.Equal(t, 1.0, ScalarSub(2, a).AtFlat(0))
	assert.Equal(t, 4.0, MulScalar(a, 4).AtFlat(0))
	assert.Equal(t, 0.5, DivScalar(a, 2).AtFlat(0))
	assert.Equal(t, 2.0, ScalarDiv(2, a).AtFlat(0))
}

func TestAssignOpsMutateInPlaceWithoutAliasing(t *testing.T) {
	a := Ones[float64](2)
	b := a.Clone()
	one := Ones[float64](2)

	b.AddAssign(one)
	assert.Equal(t, 1.0, a.AtFlat(0))
	assert.Equal(t, 2.0, b.AtFlat(0))
}

func TestNeg(t *testing.T) {
	a := Ones[float64](2)
	n := Neg(a)
	assert.Equal(t, -1.0, n.AtFlat(0))
}

func TestTranscendentalFunctions(t *testing.T) {
	a := Zeros[float64](1)
	assert.InDelta(t, 1.0, Exp(a).AtFlat(0), 1e-12)
	assert.InDelta(t, 0.0, Sin(a).AtFlat(0), 1e-12)
	assert.InDelta(t, 1.0, Cos(a).AtFlat(0), 1e-12)
	assert.InDelta(t, 0.0, Tan(a).AtFlat(0), 1e-12)
	assert.InDelta(t, 0.0, Sinh(a).AtFlat(0), 1e-12)
	assert.InDelta(t, 1.0, Cosh(a).AtFlat(0), 1e-12)
	assert.InDelta(t, 0.0, Tanh(a).AtFlat(0), 1e-12)
}

func TestAbsRealAndComplex(t *testing.T) {
	r := Scalar(-3.0)
	assert.Equal(t, 3.0, Abs(r).AtFlat(0))

	c := Scalar(complex(3.0, 4.0))
	assert.Equal(t, 5.0, Abs(c).AtFlat(0))
}

func TestPowAndPowScalar(t *testing.T) {
	base := Scalar(2.0)
	exp := Scalar(3.0)
	assert.Equal(t, 8.0, Pow(base, exp).AtFlat(0))
	assert.Equal(t, 8.0, PowScalar(base, 3.0).AtFlat(0))
}

func TestPowComplex(t *testing.T) {
	base := Scalar(complex(0.0, 1.0))
	exp := Scalar(complex(2.0, 0.0))
	got := Pow(base, exp).AtFlat(0)
	assert.InDelta(t, -1.0, real(got), 1e-9)
	assert.InDelta(t, 0.0, imag(got), 1e-9)
}
