package tensor

import (
	"fmt"
	"sort"
)

// Booleans is the flat vector of truth values produced by a tensor
// comparison. It has no shape of its own beyond its length: callers
// that need the original tensor's Dims back can Reshape the source.
type Booleans struct {
	data []bool
}

// NewBooleans wraps an existing []bool (no copy).
func NewBooleans(data []bool) Booleans {
	return Booleans{data: data}
}

// Len returns the number of entries.
func (b Booleans) Len() int { return len(b.data) }

// At returns entry i (negative wraps).
func (b Booleans) At(i int) bool {
	if i < 0 {
		i += len(b.data)
	}
	return b.data[i]
}

// Slice exposes the backing []bool, read-only by convention.
func (b Booleans) Slice() []bool { return b.data }

func compare[T Number](a, b Tensor[T], cmp func(x, y T) bool) Booleans {
	checkSameDims(a, b)
	ad, bd := a.Flat(), b.Flat()
	out := make([]bool, len(ad))
	for i := range ad {
		out[i] = cmp(ad[i], bd[i])
	}
	return Booleans{data: out}
}

// realOrdered returns x as a float64 for real element types; it panics for
// complex128, which has no total order (matches spec's ordering
// comparisons being defined only for real/real or real/complex-via-abs
// callers — complex ordering is a programming error).
func realOrdered[T Number](x T) float64 {
	switch v := any(x).(type) {
	case float64:
		return v
	default:
		panic(fmt.Sprintf("tensor: ordering comparison undefined for %T", x))
	}
}

// Eq compares a and b element-wise for equality.
func Eq[T Number](a, b Tensor[T]) Booleans { return compare(a, b, func(x, y T) bool { return x == y }) }

// Ne compares a and b element-wise for inequality.
func Ne[T Number](a, b Tensor[T]) Booleans { return compare(a, b, func(x, y T) bool { return x != y }) }

// Lt compares a and b element-wise with <. Defined only for real
// element types.
func Lt[T Number](a, b Tensor[T]) Booleans {
	return compare(a, b, func(x, y T) bool { return realOrdered(x) < realOrdered(y) })
}

// Le compares a and b element-wise with <=. Defined only for real
// element types.
func Le[T Number](a, b Tensor[T]) Booleans {
	return compare(a, b, func(x, y T) bool { return realOrdered(x) <= realOrdered(y) })
}

// Gt compares a and b element-wise with >. Defined only for real
// element types.
func Gt[T Number](a, b Tensor[T]) Booleans {
	return compare(a, b, func(x, y T) bool { return realOrdered(x) > realOrdered(y) })
}

// Ge compares a and b element-wise with >=. Defined only for real
// element types.
func Ge[T Number](a, b Tensor[T]) Booleans {
	return compare(a, b, func(x, y T) bool { return realOrdered(x) >= realOrdered(y) })
}

// Not negates every entry.
func Not(b Booleans) Booleans {
	out := make([]bool, len(b.data))
	for i, v := range b.data {
		out[i] = !v
	}
	return Booleans{data: out}
}

func zipBool(a, b Booleans, op func(x, y bool) bool) Booleans {
	if len(a.data) != len(b.data) {
		panic(fmt.Errorf("%w: %d vs %d", ErrSizeMismatch, len(a.data), len(b.data)))
	}
	out := make([]bool, len(a.data))
	for i := range a.data {
		out[i] = op(a.data[i], b.data[i])
	}
	return Booleans{data: out}
}

// And computes element-wise logical AND.
func And(a, b Booleans) Booleans { return zipBool(a, b, func(x, y bool) bool { return x && y }) }

// Or computes element-wise logical OR.
func Or(a, b Booleans) Booleans { return zipBool(a, b, func(x, y bool) bool { return x || y }) }

// AllOf reports whether every entry is true (vacuously true for an
// empty Booleans).
func (b Booleans) AllOf() bool {
	for _, v := range b.data {
		if !v {
			return false
		}
	}
	return true
}

// AnyOf reports whether at least one entry is true.
func (b Booleans) AnyOf() bool {
	for _, v := range b.data {
		if v {
			return true
		}
	}
	return false
}

// NoneOf reports whether every entry is false.
func (b Booleans) NoneOf() bool {
	return !b.AnyOf()
}

// Which returns the sorted indices of the true entries.
func (b Booleans) Which() []int {
	out := make([]int, 0)
	for i, v := range b.data {
		if v {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}
