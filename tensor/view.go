package tensor

import (
	"fmt"

	"github.com/itohio/tensorcore/dims"
	"github.com/itohio/tensorcore/rangeiter"
)

// Range selects one axis of a view; build one with Full, Single, Span,
// Stepped, or Indices.
type Range = rangeiter.Range

// Full selects every index of an axis.
func Full() Range { return rangeiter.Full() }

// Single selects exactly index i and squeezes that axis out of the
// resulting view's shape.
func Single(i int) Range { return rangeiter.Single(i) }

// Span selects [lo, hi] with step 1, without squeezing.
func Span(lo, hi int) Range { return rangeiter.Span(lo, hi) }

// Stepped selects the arithmetic sequence lo, lo+step, ... up to hi.
func Stepped(lo, hi, step int) Range { return rangeiter.Stepped(lo, hi, step) }

// Indices selects the explicit index list, in order.
func Indices(idx []int) Range { return rangeiter.Indices(idx) }

// padRanges right-pads an axis selector list with Full() so callers
// may give a prefix of ranges, as in `t(range, ...)`.
func padRanges(rank int, ranges []Range) []Range {
	if len(ranges) > rank {
		panic(fmt.Errorf("tensor: %d ranges for rank %d tensor", len(ranges), rank))
	}
	out := make([]Range, rank)
	copy(out, ranges)
	for i := len(ranges); i < rank; i++ {
		out[i] = Full()
	}
	return out
}

// viewShape derives the squeezed Dimensions and backing offsets for
// ranges resolved against source.
func viewShape[T Number](t Tensor[T], ranges []Range) (dims.Dimensions, []int) {
	full := padRanges(t.dims.Rank(), ranges)
	it := rangeiter.New(t.dims, full)
	offsets := it.All()

	shape := make(dims.Dimensions, 0, len(full))
	for axis, r := range full {
		resolved := r.SetDimension(t.dims.Dimension(axis))
		if resolved.Squeeze() {
			continue
		}
		shape = append(shape, resolved.Size())
	}
	return shape, offsets
}

// TensorView is a read-only window into a Tensor's backing buffer,
// described by one Range per source axis (Single ranges squeeze out
// of the view's shape).
type TensorView[T Number] struct {
	dims    dims.Dimensions
	data    []T
	offsets []int
}

// View returns a read-only TensorView selecting ranges (padded with
// Full() for any unspecified trailing axes).
func (t Tensor[T]) View(ranges ...Range) TensorView[T] {
	shape, offsets := viewShape(t, ranges)
	return TensorView[T]{dims: shape, data: t.buf.Slice(), offsets: offsets}
}

// Dims returns the (squeezed) shape of the view.
func (v TensorView[T]) Dims() dims.Dimensions { return v.dims.Clone() }

// Size returns the number of elements the view selects.
func (v TensorView[T]) Size() int { return len(v.offsets) }

// At reads the element at the multi-dimensional index within the
// view's (squeezed) shape.
func (v TensorView[T]) At(indices ...int) T {
	return v.data[v.offsets[v.dims.ColumnMajorPosition(indices...)]]
}

// AtFlat reads the view's k-th element in its own column-major order.
func (v TensorView[T]) AtFlat(k int) T {
	if k < 0 {
		k += len(v.offsets)
	}
	return v.data[v.offsets[k]]
}

// Materialize copies the view out into an independent Tensor with the
// view's (squeezed) shape.
func (v TensorView[T]) Materialize() Tensor[T] {
	out := Empty[T](v.dims...)
	data := out.buf.Mutable()
	for i, off := range v.offsets {
		data[i] = v.data[off]
	}
	return out
}

// MutableTensorView is an assignable window into a Tensor's backing
// buffer. Constructing one via Tensor.MutableView forces the source
// tensor's buffer to be uniquely held (copy-on-write), so writes
// through the view never perturb another holder of the same buffer.
type MutableTensorView[T Number] struct {
	dims    dims.Dimensions
	data    []T
	offsets []int
}

// MutableView ensures this tensor's buffer is uniquely held, then
// returns an assignable MutableTensorView selecting ranges.
func (t *Tensor[T]) MutableView(ranges ...Range) MutableTensorView[T] {
	shape, offsets := viewShape(*t, ranges)
	data := t.buf.Mutable()
	return MutableTensorView[T]{dims: shape, data: data, offsets: offsets}
}

// Dims returns the (squeezed) shape of the view.
func (v MutableTensorView[T]) Dims() dims.Dimensions { return v.dims.Clone() }

// Size returns the number of elements the view selects.
func (v MutableTensorView[T]) Size() int { return len(v.offsets) }

// At reads the element at the multi-dimensional index within the
// view's shape.
func (v MutableTensorView[T]) At(indices ...int) T {
	return v.data[v.offsets[v.dims.ColumnMajorPosition(indices...)]]
}

// SetAt writes v at the multi-dimensional index within the view's
// shape.
func (v MutableTensorView[T]) SetAt(value T, indices ...int) {
	v.data[v.offsets[v.dims.ColumnMajorPosition(indices...)]] = value
}

// AssignScalar broadcasts value to every offset the view selects.
func (v MutableTensorView[T]) AssignScalar(value T) {
	for _, off := range v.offsets {
		v.data[off] = value
	}
}

// AssignFlat assigns a flat sequence of values to the view's offsets,
// in the view's own column-major order. Panics if the lengths
// disagree (spec's "tensor whose flat size equals the view's size"
// broadcast form).
func (v MutableTensorView[T]) AssignFlat(values []T) {
	if len(values) != len(v.offsets) {
		panic(fmt.Errorf("%w: view has %d elements, got %d", ErrSizeMismatch, len(v.offsets), len(values)))
	}
	for i, off := range v.offsets {
		v.data[off] = values[i]
	}
}

// Assign writes the contents of a Tensor whose Dimensions equal the
// view's own (post-squeeze) shape; AssignView takes a TensorView.
func (v MutableTensorView[T]) Assign(src Tensor[T]) {
	if !src.dims.Equal(v.dims) {
		panic(fmt.Errorf("%w: view shape %v, source shape %v", ErrSizeMismatch, v.dims, src.dims))
	}
	v.AssignFlat(src.Flat())
}

// AssignView writes the contents of a TensorView whose Dimensions
// equal the view's own (post-squeeze) shape.
func (v MutableTensorView[T]) AssignView(src TensorView[T]) {
	if !src.dims.Equal(v.dims) {
		panic(fmt.Errorf("%w: view shape %v, source shape %v", ErrSizeMismatch, v.dims, src.dims))
	}
	for i, off := range v.offsets {
		v.data[off] = src.data[src.offsets[i]]
	}
}
