// Package rangeiter implements Range, a 1-D axis selector (stepped,
// indexed, or "full"), and RangeIterator, which walks the linearised
// column-major offsets of the Cartesian product of a list of resolved
// Ranges.
package rangeiter

import "fmt"

type kind int

const (
	kindFull kind = iota
	kindStepped
	kindIndexed
)

// Range is a selector over one tensor axis. It starts unresolved;
// SetDimension binds it against a concrete axis size, validating and
// computing its Size.
type Range struct {
	kind     kind
	start    int
	limit    int
	step     int
	indices  []int
	squeeze  bool
	resolved bool
	dim      int
	size     int
}

// Full returns the sentinel Range meaning "all of this axis".
func Full() Range {
	return Range{kind: kindFull}
}

// Single returns a Range selecting exactly index i. Per SPEC_FULL.md's
// resolution of the squeeze Open Question, a Range built this way
// squeezes away on a MutableTensorView/TensorView (unlike an explicit
// one-element Indices list or Span(i, i), which do not).
func Single(i int) Range {
	return Range{kind: kindStepped, start: i, limit: i, step: 1, squeeze: true}
}

// Span returns the stepped Range [lo, hi] with step 1.
func Span(lo, hi int) Range {
	return Stepped(lo, hi, 1)
}

// Stepped returns the Range walking the arithmetic sequence
// lo, lo+step, ... up to and including the largest value <= hi (or
// down to hi for a negative step).
func Stepped(lo, hi, step int) Range {
	if step == 0 {
		panic(fmt.Errorf("rangeiter: zero step"))
	}
	return Range{kind: kindStepped, start: lo, limit: hi, step: step}
}

// Indices returns the Range selecting the explicit (non-negative)
// index list idx, in the given order.
func Indices(idx []int) Range {
	cp := make([]int, len(idx))
	copy(cp, idx)
	return Range{kind: kindIndexed, indices: cp}
}

func steppedSize(start, limit, step int) int {
	if step > 0 {
		if limit < start {
			return 0
		}
		return (limit-start)/step + 1
	}
	if limit > start {
		return 0
	}
	return (start-limit)/(-step) + 1
}

// SetDimension resolves the Range against axis size d, validating
// and fixing its Size. It may not widen beyond d: any
// index that would be >= d after wraparound is a programming error.
func (r Range) SetDimension(d int) Range {
	switch r.kind {
	case kindFull:
		return Range{kind: kindStepped, start: 0, limit: d - 1, step: 1, resolved: true, dim: d, size: d}

	case kindStepped:
		start, limit := r.start, r.limit
		if start < 0 {
			start += d
		}
		if limit < 0 {
			limit += d
		}
		size := steppedSize(start, limit, r.step)
		if size > 0 {
			last := start + (size-1)*r.step
			if start < 0 || start >= d || last < 0 || last >= d {
				panic(fmt.Errorf("rangeiter: stepped range [%d:%d:%d] out of bounds for dimension %d", start, limit, r.step, d))
			}
		}
		return Range{kind: kindStepped, start: start, limit: limit, step: r.step, squeeze: r.squeeze, resolved: true, dim: d, size: size}

	case kindIndexed:
		for _, idx := range r.indices {
			if idx < 0 || idx >= d {
				panic(fmt.Errorf("rangeiter: index %d out of bounds for dimension %d", idx, d))
			}
		}
		return Range{kind: kindIndexed, indices: r.indices, resolved: true, dim: d, size: len(r.indices)}

	default:
		panic("rangeiter: unknown range kind")
	}
}

// Size returns the number of elements this Range selects. Valid only
// after SetDimension.
func (r Range) Size() int {
	return r.size
}

// Squeeze reports whether this Range should collapse out of a view's
// rank (true only for a Single(i) Range).
func (r Range) Squeeze() bool {
	return r.squeeze
}

// Resolved reports whether SetDimension has been called.
func (r Range) Resolved() bool {
	return r.resolved
}

// ValueAt returns the resolved axis index selected by local position k
// (0 <= k < Size()).
func (r Range) ValueAt(k int) int {
	switch r.kind {
	case kindIndexed:
		return r.indices[k]
	default:
		return r.start + k*r.step
	}
}

// IsFullAxis reports whether this resolved Range selects every index
// of its axis with unit step, in order — the condition under which a
// RangeIterator may fuse it into a contiguous run.
func (r Range) IsFullAxis() bool {
	return r.kind == kindStepped && r.step == 1 && r.start == 0 && r.size == r.dim
}
