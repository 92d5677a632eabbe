package rangeiter

import "github.com/itohio/tensorcore/dims"

// RangeIterator walks the Cartesian product of a list of resolved
// Ranges and emits the linearised column-major offsets into a tensor
// of dims sourceDims. The first (leftmost, axis 0) range varies
// fastest, matching column-major order.
type RangeIterator struct {
	ranges   []Range
	strides  []int
	sizes    []int
	counters []int
	total    int
	idx      int
	done     bool

	contiguous bool
	base       int
}

// New resolves ranges against sourceDims (one Range per axis — pad the
// caller's list with Full() for any trailing axes first) and returns an
// iterator over their product.
func New(sourceDims dims.Dimensions, ranges []Range) *RangeIterator {
	if len(ranges) != sourceDims.Rank() {
		panic("rangeiter: one Range required per axis")
	}

	resolved := make([]Range, len(ranges))
	for axis, r := range ranges {
		resolved[axis] = r.SetDimension(sourceDims.Dimension(axis))
	}

	sizes := make([]int, len(resolved))
	total := 1
	allFull := true
	for axis, r := range resolved {
		sizes[axis] = r.Size()
		total *= r.Size()
		if !r.IsFullAxis() {
			allFull = false
		}
	}

	ri := &RangeIterator{
		ranges:   resolved,
		strides:  sourceDims.Strides(),
		sizes:    sizes,
		counters: make([]int, len(resolved)),
		total:    total,
	}
	// Fusion optimisation (spec: "adjacent stepped ranges that together
	// form a contiguous block MAY be fused"): the common case of
	// selecting the whole tensor collapses to a single counter over
	// [0, total).
	if allFull {
		ri.contiguous = true
		ri.base = 0
	}
	return ri
}

// Len returns the total number of offsets the iterator will emit:
// the product of each Range's resolved Size.
func (ri *RangeIterator) Len() int {
	return ri.total
}

// Dims returns the Dimensions of the view this iterator walks: the
// resolved Size of each Range, before any squeeze is applied.
func (ri *RangeIterator) Dims() dims.Dimensions {
	d := make(dims.Dimensions, len(ri.sizes))
	copy(d, ri.sizes)
	return d
}

// Start resets the iterator and returns the first offset, or (0, true)
// immediately if any Range has size 0 (spec's mandatory empty-iterator
// optimisation).
func (ri *RangeIterator) Start() (int, bool) {
	ri.idx = 0
	for i := range ri.counters {
		ri.counters[i] = 0
	}
	if ri.total == 0 {
		ri.done = true
		return 0, true
	}
	ri.done = false
	return ri.offset(), false
}

// Done reports whether iteration has finished.
func (ri *RangeIterator) Done() bool {
	return ri.done
}

// Next advances the iterator and returns the next offset, or
// (0, true) once exhausted.
func (ri *RangeIterator) Next() (int, bool) {
	ri.idx++
	if ri.idx >= ri.total {
		ri.done = true
		return 0, true
	}
	for axis := 0; axis < len(ri.counters); axis++ {
		ri.counters[axis]++
		if ri.counters[axis] < ri.sizes[axis] {
			break
		}
		ri.counters[axis] = 0
	}
	return ri.offset(), false
}

func (ri *RangeIterator) offset() int {
	if ri.contiguous {
		return ri.base + ri.idx
	}
	off := 0
	for axis, r := range ri.ranges {
		off += r.ValueAt(ri.counters[axis]) * ri.strides[axis]
	}
	return off
}

// All returns every offset the iterator will emit, in order. Intended
// for tests and for callers happy to materialise the whole walk.
func (ri *RangeIterator) All() []int {
	offsets := make([]int, 0, ri.total)
	for off, done := ri.Start(); !done; off, done = ri.Next() {
		offsets = append(offsets, off)
	}
	return offsets
}
