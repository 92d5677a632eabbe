package tensor

import (
	"fmt"
	"math"
	"math/cmplx"
)

func checkSameDims[T Number](a, b Tensor[T]) {
	if !a.dims.Equal(b.dims) {
		panic(fmt.Errorf("%w: %v vs %v", ErrSizeMismatch, a.dims, b.dims))
	}
}

func zipInto[T Number](a, b Tensor[T], op func(x, y T) T) Tensor[T] {
	checkSameDims(a, b)
	out := Empty[T](a.dims...)
	data := out.buf.Mutable()
	ad, bd := a.Flat(), b.Flat()
	for i := range data {
		data[i] = op(ad[i], bd[i])
	}
	return out
}

func mapInto[T Number](a Tensor[T], op func(x T) T) Tensor[T] {
	out := Empty[T](a.dims...)
	data := out.buf.Mutable()
	ad := a.Flat()
	for i := range data {
		data[i] = op(ad[i])
	}
	return out
}

func addT[T Number](x, y T) T { return x + y }
func subT[T Number](x, y T) T { return x - y }
func mulT[T Number](x, y T) T { return x * y }
func divT[T Number](x, y T) T { return x / y }

// Add computes element-wise a+b. Both tensors must share Dims; two
// empty tensors combine to an empty tensor.
func Add[T Number](a, b Tensor[T]) Tensor[T] { return zipInto(a, b, addT[T]) }

// Sub computes element-wise a-b.
func Sub[T Number](a, b Tensor[T]) Tensor[T] { return zipInto(a, b, subT[T]) }

// Mul computes element-wise a*b (Hadamard product, not matrix
// multiplication — see mmult/fold for that).
func Mul[T Number](a, b Tensor[T]) Tensor[T] { return zipInto(a, b, mulT[T]) }

// Div computes element-wise a/b.
func Div[T Number](a, b Tensor[T]) Tensor[T] { return zipInto(a, b, divT[T]) }

// AddScalar adds s to every element of a.
func AddScalar[T Number](a Tensor[T], s T) Tensor[T] { return mapInto(a, func(x T) T { return x + s }) }

// SubScalar subtracts s from every element of a.
func SubScalar[T Number](a Tensor[T], s T) Tensor[T] { return mapInto(a, func(x T) T { return x - s }) }

// ScalarSub computes s-x for every element x of a.
func ScalarSub[T Number](s T, a Tensor[T]) Tensor[T] { return mapInto(a, func(x T) T { return s - x }) }

// MulScalar multiplies every element of a by s.
func MulScalar[T Number](a Tensor[T], s T) Tensor[T] { return mapInto(a, func(x T) T { return x * s }) }

// DivScalar divides every element of a by s.
func DivScalar[T Number](a Tensor[T], s T) Tensor[T] { return mapInto(a, func(x T) T { return x / s }) }

// ScalarDiv computes s/x for every element x of a.
func ScalarDiv[T Number](s T, a Tensor[T]) Tensor[T] { return mapInto(a, func(x T) T { return s / x }) }

// AddAssign forces a to uniquely hold its buffer, then adds b
// element-wise in place.
func (a *Tensor[T]) AddAssign(b Tensor[T]) { a.assignZip(b, addT[T]) }

// SubAssign forces a to uniquely hold its buffer, then subtracts b
// element-wise in place.
func (a *Tensor[T]) SubAssign(b Tensor[T]) { a.assignZip(b, subT[T]) }

// MulAssign forces a to uniquely hold its buffer, then multiplies by
// b element-wise in place.
func (a *Tensor[T]) MulAssign(b Tensor[T]) { a.assignZip(b, mulT[T]) }

// DivAssign forces a to uniquely hold its buffer, then divides by b
// element-wise in place.
func (a *Tensor[T]) DivAssign(b Tensor[T]) { a.assignZip(b, divT[T]) }

func (a *Tensor[T]) assignZip(b Tensor[T], op func(x, y T) T) {
	checkSameDims(*a, b)
	data := a.buf.Mutable()
	bd := b.Flat()
	for i := range data {
		data[i] = op(data[i], bd[i])
	}
}

// Neg negates every element.
func Neg[T Number](a Tensor[T]) Tensor[T] { return mapInto(a, func(x T) T { return -x }) }

func applyReal[T Number](x T, f func(float64) float64, g func(complex128) complex128) T {
	switch v := any(x).(type) {
	case float64:
		return any(f(v)).(T)
	case complex128:
		return any(g(v)).(T)
	default:
		panic(fmt.Sprintf("tensor: unsupported element type %T", x))
	}
}

// Exp applies the exponential function element-wise.
func Exp[T Number](a Tensor[T]) Tensor[T] {
	return mapInto(a, func(x T) T { return applyReal(x, math.Exp, cmplx.Exp) })
}

// Sin applies sine element-wise.
func Sin[T Number](a Tensor[T]) Tensor[T] {
	return mapInto(a, func(x T) T { return applyReal(x, math.Sin, cmplx.Sin) })
}

// Cos applies cosine element-wise.
func Cos[T Number](a Tensor[T]) Tensor[T] {
	return mapInto(a, func(x T) T { return applyReal(x, math.Cos, cmplx.Cos) })
}

// Tan applies tangent element-wise.
func Tan[T Number](a Tensor[T]) Tensor[T] {
	return mapInto(a, func(x T) T { return applyReal(x, math.Tan, cmplx.Tan) })
}

// Sinh applies hyperbolic sine element-wise.
func Sinh[T Number](a Tensor[T]) Tensor[T] {
	return mapInto(a, func(x T) T { return applyReal(x, math.Sinh, cmplx.Sinh) })
}

// Cosh applies hyperbolic cosine element-wise.
func Cosh[T Number](a Tensor[T]) Tensor[T] {
	return mapInto(a, func(x T) T { return applyReal(x, math.Cosh, cmplx.Cosh) })
}

// Tanh applies hyperbolic tangent element-wise.
func Tanh[T Number](a Tensor[T]) Tensor[T] {
	return mapInto(a, func(x T) T { return applyReal(x, math.Tanh, cmplx.Tanh) })
}

// Abs applies the absolute value element-wise. A complex tensor
// yields a real tensor of the same shape; a real tensor yields
// another real tensor.
func Abs[T Number](a Tensor[T]) Tensor[float64] {
	out := Empty[float64](a.dims...)
	data := out.buf.Mutable()
	src := a.Flat()
	for i, x := range src {
		switch v := any(x).(type) {
		case float64:
			data[i] = math.Abs(v)
		case complex128:
			data[i] = cmplx.Abs(v)
		default:
			panic(fmt.Sprintf("tensor: unsupported element type %T", x))
		}
	}
	return out
}

// Pow computes a**b element-wise. Dims of a and b must match. Complex
// bases are handled via the complex exponential (cmplx.Pow).
func Pow[T Number](a, b Tensor[T]) Tensor[T] {
	return zipInto(a, b, func(x, y T) T {
		switch xv := any(x).(type) {
		case float64:
			return any(math.Pow(xv, any(y).(float64))).(T)
		case complex128:
			return any(cmplx.Pow(xv, any(y).(complex128))).(T)
		default:
			panic(fmt.Sprintf("tensor: unsupported element type %T", x))
		}
	})
}

// PowScalar computes a**s element-wise against the scalar exponent s.
func PowScalar[T Number](a Tensor[T], s T) Tensor[T] {
	return mapInto(a, func(x T) T {
		switch xv := any(x).(type) {
		case float64:
			return any(math.Pow(xv, any(s).(float64))).(T)
		case complex128:
			return any(cmplx.Pow(xv, any(s).(complex128))).(T)
		default:
			panic(fmt.Sprintf("tensor: unsupported element type %T", x))
		}
	})
}
