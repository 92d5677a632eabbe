// Package tensor implements Tensor[T], a dense N-dimensional,
// column-major array over a copy-on-write buffer, plus the views,
// element-wise arithmetic, contraction kernels, and structural
// operators built on top of it.
package tensor

import (
	"errors"
	"fmt"

	"github.com/itohio/tensorcore/buffer"
	"github.com/itohio/tensorcore/dims"
	"github.com/itohio/tensorcore/randsrc"
)

// Number is the scalar element type Tensor is generic over: a real
// float64 or a complex128.
type Number = buffer.Number

// ErrSizeMismatch reports a tensor constructed from data whose length
// disagrees with its declared Dimensions, or a reshape/fold whose
// sizes don't line up.
var ErrSizeMismatch = errors.New("tensor: size mismatch")

// ErrRaggedInitializer reports a from_initializer nested literal whose
// levels are not all the same length.
var ErrRaggedInitializer = errors.New("tensor: ragged initializer")

// Tensor is a dense N-dimensional array of T, addressed in
// column-major order, backed by a copy-on-write buffer.Vector[T].
// The zero value is not valid; build one with Empty, Zeros, Ones, Eye,
// Random, or FromInitializer.
type Tensor[T Number] struct {
	dims dims.Dimensions
	buf  buffer.Vector[T]
}

// Dims returns a copy of the tensor's shape.
func (t Tensor[T]) Dims() dims.Dimensions {
	return t.dims.Clone()
}

// Rank returns the number of axes.
func (t Tensor[T]) Rank() int {
	return t.dims.Rank()
}

// Size returns the total element count.
func (t Tensor[T]) Size() int {
	return t.dims.TotalSize()
}

// Empty reports whether the tensor has zero total size.
func (t Tensor[T]) Empty() bool {
	return t.Size() == 0
}

func checkSize(d dims.Dimensions, n int) {
	if d.TotalSize() != n {
		panic(fmt.Errorf("%w: dims %v total %d, got %d elements", ErrSizeMismatch, d, d.TotalSize(), n))
	}
}

// Empty constructs a tensor of the given shape; its buffer starts
// zero-filled.
func Empty[T Number](shape ...int) Tensor[T] {
	d := dims.New(shape...)
	return Tensor[T]{dims: d, buf: buffer.New[T](d.TotalSize())}
}

// Zeros constructs a tensor of the given shape filled with the zero
// value of T.
func Zeros[T Number](shape ...int) Tensor[T] {
	return Empty[T](shape...)
}

// Ones constructs a tensor of the given shape filled with 1.
func Ones[T Number](shape ...int) Tensor[T] {
	t := Empty[T](shape...)
	data := t.buf.Mutable()
	one := T(1)
	for i := range data {
		data[i] = one
	}
	return t
}

// Eye constructs an r x c matrix with 1 on the main diagonal and 0
// elsewhere.
func Eye[T Number](r, c int) Tensor[T] {
	t := Empty[T](r, c)
	data := t.buf.Mutable()
	one := T(1)
	n := r
	if c < n {
		n = c
	}
	for i := 0; i < n; i++ {
		data[t.dims.ColumnMajorPosition(i, i)] = one
	}
	return t
}

// Random constructs a tensor of the given shape with every element
// independently drawn from randsrc.Rand[T].
func Random[T Number](shape ...int) Tensor[T] {
	t := Empty[T](shape...)
	data := t.buf.Mutable()
	for i := range data {
		data[i] = randsrc.Rand[T]()
	}
	return t
}

// FromFlat wraps an existing flat, column-major data slice with
// shape. Panics if the sizes disagree. The tensor takes ownership of
// data; callers must not mutate the slice afterwards through any
// other alias.
func FromFlat[T Number](shape dims.Dimensions, data []T) Tensor[T] {
	checkSize(shape, len(data))
	return Tensor[T]{dims: shape.Clone(), buf: buffer.FromSlice(data)}
}

// nestedShape inspects a from_initializer literal's nesting to infer
// dims; it returns ErrRaggedInitializer on a ragged (non-uniform) level.
func nestedShape(v any) (dims.Dimensions, error) {
	switch vv := v.(type) {
	case []any:
		if len(vv) == 0 {
			return dims.New(0), nil
		}
		sub, err := nestedShape(vv[0])
		if err != nil {
			return nil, err
		}
		for _, elem := range vv[1:] {
			s, err := nestedShape(elem)
			if err != nil {
				return nil, err
			}
			if !s.Equal(sub) {
				return nil, fmt.Errorf("%w: level of length %d vs %d", ErrRaggedInitializer, len(vv), len(sub))
			}
		}
		return append(dims.New(len(vv)), sub...), nil
	default:
		return dims.New(), nil
	}
}

func flatten[T Number](v any, out []T, pos *int) {
	switch vv := v.(type) {
	case []any:
		for _, elem := range vv {
			flatten(elem, out, pos)
		}
	default:
		out[*pos] = vv.(T)
		*pos++
	}
}

// FromInitializer builds a tensor from an arbitrarily nested Go slice
// literal (e.g. []any{[]any{1.0, 2.0}, []any{3.0, 4.0}}). Rank is
// inferred from the nesting depth; every level must have uniform
// length or construction fails with ErrRaggedInitializer.
//
// Note: column-major storage means the natural row-major nesting of a
// Go literal is transposed into place on construction rather than
// copied flat; FromInitializer performs that transposition.
func FromInitializer[T Number](nested any) (Tensor[T], error) {
	shape, err := nestedShape(nested)
	if err != nil {
		return Tensor[T]{}, err
	}
	n := shape.TotalSize()
	rowMajor := make([]T, n)
	pos := 0
	flatten(nested, rowMajor, &pos)

	t := Empty[T](shape...)
	data := t.buf.Mutable()
	strides := shape.Strides()
	for flat := 0; flat < n; flat++ {
		idx := unravelRowMajor(flat, shape)
		off := 0
		for axis, i := range idx {
			off += i * strides[axis]
		}
		data[off] = rowMajor[flat]
	}
	return t, nil
}

func unravelRowMajor(flat int, shape dims.Dimensions) []int {
	idx := make([]int, len(shape))
	for axis := len(shape) - 1; axis >= 0; axis-- {
		size := shape[axis]
		if size == 0 {
			continue
		}
		idx[axis] = flat % size
		flat /= size
	}
	return idx
}

// Clone duplicates the tensor. The backing buffer is shared (O(1),
// refcount bump) until one of the two copies is mutated.
func (t Tensor[T]) Clone() Tensor[T] {
	return Tensor[T]{dims: t.dims.Clone(), buf: t.buf.Clone()}
}

// Flat returns the tensor's backing column-major data, read-only.
func (t Tensor[T]) Flat() []T {
	return t.buf.Slice()
}

func (t Tensor[T]) resolveIndex(indices []int) int {
	if len(indices) != t.dims.Rank() {
		panic(fmt.Errorf("tensor: expected %d indices, got %d", t.dims.Rank(), len(indices)))
	}
	return t.dims.ColumnMajorPosition(indices...)
}

// At reads the element at the multi-dimensional index, with
// per-axis negative wraparound.
func (t Tensor[T]) At(indices ...int) T {
	return t.buf.Slice()[t.resolveIndex(indices)]
}

// AtFlat reads the flat offset i directly (negative wraps against the
// total size), bypassing per-axis validation.
func (t Tensor[T]) AtFlat(i int) T {
	if i < 0 {
		i += t.Size()
	}
	return t.buf.Slice()[i]
}

// SetAt ensures the backing buffer is uniquely held (copy-on-write)
// then writes v at the multi-dimensional index.
func (t *Tensor[T]) SetAt(v T, indices ...int) {
	off := t.resolveIndex(indices)
	t.buf.Mutable()[off] = v
}

// SetAtFlat is the unchecked flat-offset counterpart to SetAt.
func (t *Tensor[T]) SetAtFlat(i int, v T) {
	if i < 0 {
		i += t.Size()
	}
	t.buf.Mutable()[i] = v
}

// Reshape returns a tensor sharing this tensor's buffer (Clone
// semantics) under new dims. Panics if the total size changes.
func (t Tensor[T]) Reshape(shape ...int) Tensor[T] {
	d := dims.New(shape...)
	checkSize(d, t.Size())
	return Tensor[T]{dims: d, buf: t.buf.Clone()}
}

// ChangeDimension returns a new tensor with axis (negative wraps)
// resized to newSize: shrinking truncates along that axis, growing
// zero-pads. Always materialises a fresh buffer since the element
// layout changes.
func (t Tensor[T]) ChangeDimension(axis, newSize int) Tensor[T] {
	rank := t.dims.Rank()
	a := axis
	if a < 0 {
		a += rank
	}
	if a < 0 || a >= rank {
		panic(fmt.Errorf("%w: axis %d for rank %d", dims.ErrIndexOutOfRange, axis, rank))
	}

	out := Empty[T](t.dims.WithDimension(a, newSize)...)
	outData := out.buf.Mutable()
	srcData := t.buf.Slice()

	limit := t.dims[a]
	if newSize < limit {
		limit = newSize
	}

	for srcOff := 0; srcOff < len(srcData); srcOff++ {
		idx := t.dims.Unravel(srcOff)
		if idx[a] >= limit {
			continue
		}
		outData[out.dims.ColumnMajorPosition(idx...)] = srcData[srcOff]
	}
	return out
}

// String renders the tensor's shape for debugging/logging.
func (t Tensor[T]) String() string {
	return fmt.Sprintf("Tensor%v", t.dims)
}
