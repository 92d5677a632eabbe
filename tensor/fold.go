package tensor

import (
	"fmt"

	"github.com/itohio/tensorcore/dims"
	gt "gorgonia.org/tensor"
)

// foldPlan describes one resolved contraction: A's axis ndx1 against
// B's axis ndx2. iLen/jLen are the combined sizes of A's axes before/
// after ndx1; kLen/mLen are B's before/after ndx2; lLen is the shared
// contracted size. Mirrors the (i,l,j) x (k,l,m) decomposition of the
// reference fold kernel.
type foldPlan struct {
	aBefore, aAfter []int
	bBefore, bAfter []int
	iLen, jLen      int
	kLen, mLen      int
	lLen            int
}

func planFold[T Number](a Tensor[T], ndx1 int, b Tensor[T], ndx2 int) (foldPlan, int, int) {
	ranka, rankb := a.Rank(), b.Rank()
	ndx1r := resolveAxis(ranka, ndx1)
	ndx2r := resolveAxis(rankb, ndx2)

	if a.dims[ndx1r] != b.dims[ndx2r] {
		panic(fmt.Errorf("%w: fold axis %d of A (size %d) vs axis %d of B (size %d)", ErrSizeMismatch, ndx1r, a.dims[ndx1r], ndx2r, b.dims[ndx2r]))
	}

	p := foldPlan{lLen: a.dims[ndx1r], iLen: 1, jLen: 1, kLen: 1, mLen: 1}
	for i := 0; i < ndx1r; i++ {
		p.aBefore = append(p.aBefore, i)
		p.iLen *= a.dims[i]
	}
	for i := ndx1r + 1; i < ranka; i++ {
		p.aAfter = append(p.aAfter, i)
		p.jLen *= a.dims[i]
	}
	for i := 0; i < ndx2r; i++ {
		p.bBefore = append(p.bBefore, i)
		p.kLen *= b.dims[i]
	}
	for i := ndx2r + 1; i < rankb; i++ {
		p.bAfter = append(p.bAfter, i)
		p.mLen *= b.dims[i]
	}
	return p, ndx1r, ndx2r
}

func axesSizes(d dims.Dimensions, axes []int) []int {
	out := make([]int, len(axes))
	for i, axis := range axes {
		out[i] = d[axis]
	}
	return out
}

func product(sizes []int) int {
	n := 1
	for _, s := range sizes {
		n *= s
	}
	return n
}

// unravelSizes converts flat (row-major, last axis fastest) into a
// per-axis index tuple against sizes.
func unravelSizes(flat int, sizes []int) []int {
	idx := make([]int, len(sizes))
	for a := len(sizes) - 1; a >= 0; a-- {
		if sizes[a] == 0 {
			continue
		}
		idx[a] = flat % sizes[a]
		flat /= sizes[a]
	}
	return idx
}

// gemm multiplies the row-major (m x k) buffer a by the row-major
// (k x n) buffer b via gorgonia.org/tensor's StdEng — the same
// adapter idiom used for the CPU fallback path of an MPS-backed
// engine: build *tensor.Dense operands over the raw buffers (their
// Dtype is inferred from the backing slice's element type), run
// MatMul, and read the result back out.
func gemm[T Number](a []T, m, k int, b []T, n int) []T {
	ta := gt.New(gt.WithShape(m, k), gt.WithBacking(a))
	tb := gt.New(gt.WithShape(k, n), gt.WithBacking(b))
	out := make([]T, m*n)
	tc := gt.New(gt.WithShape(m, n), gt.WithBacking(out))

	var eng gt.StdEng
	if err := eng.MatMul(ta, tb, tc); err != nil {
		panic(fmt.Errorf("tensor: gemm: %w", err))
	}
	return tc.Data().([]T)
}

func foldImpl[T Number](a Tensor[T], ndx1 int, b Tensor[T], ndx2 int, conjA, foldinOrder bool) Tensor[T] {
	p, ndx1r, ndx2r := planFold(a, ndx1, b, ndx2)

	var outDims dims.Dimensions
	if foldinOrder {
		outDims = collectDims(b.dims, p.bBefore, a.dims, p.aBefore, a.dims, p.aAfter, b.dims, p.bAfter)
	} else {
		outDims = collectDims(a.dims, p.aBefore, a.dims, p.aAfter, b.dims, p.bBefore, b.dims, p.bAfter)
	}
	if len(outDims) == 0 {
		outDims = dims.New(1)
	}
	out := Empty[T](outDims...)
	if p.lLen == 0 || out.Size() == 0 {
		return out
	}
	outData := out.buf.Mutable()
	aData, bData := a.Flat(), b.Flat()

	iSizes := axesSizes(a.dims, p.aBefore)
	jSizes := axesSizes(a.dims, p.aAfter)
	kSizes := axesSizes(b.dims, p.bBefore)
	mSizes := axesSizes(b.dims, p.bAfter)
	jTotal, mTotal := product(jSizes), product(mSizes)

	for jFlat := 0; jFlat < jTotal; jFlat++ {
		jIdx := unravelSizes(jFlat, jSizes)

		aMat := make([]T, p.iLen*p.lLen)
		for iFlat := 0; iFlat < p.iLen; iFlat++ {
			iIdx := unravelSizes(iFlat, iSizes)
			full := make([]int, a.Rank())
			for ii, axis := range p.aBefore {
				full[axis] = iIdx[ii]
			}
			for ii, axis := range p.aAfter {
				full[axis] = jIdx[ii]
			}
			for l := 0; l < p.lLen; l++ {
				full[ndx1r] = l
				v := aData[a.dims.ColumnMajorPosition(full...)]
				if conjA {
					v = conj(v)
				}
				aMat[iFlat*p.lLen+l] = v
			}
		}

		for mFlat := 0; mFlat < mTotal; mFlat++ {
			mIdx := unravelSizes(mFlat, mSizes)

			bMat := make([]T, p.lLen*p.kLen)
			for kFlat := 0; kFlat < p.kLen; kFlat++ {
				kIdx := unravelSizes(kFlat, kSizes)
				full := make([]int, b.Rank())
				for ii, axis := range p.bBefore {
					full[axis] = kIdx[ii]
				}
				for ii, axis := range p.bAfter {
					full[axis] = mIdx[ii]
				}
				for l := 0; l < p.lLen; l++ {
					full[ndx2r] = l
					bMat[l*p.kLen+kFlat] = bData[b.dims.ColumnMajorPosition(full...)]
				}
			}

			c := gemm(aMat, p.iLen, p.lLen, bMat, p.kLen)

			for iFlat := 0; iFlat < p.iLen; iFlat++ {
				iIdx := unravelSizes(iFlat, iSizes)
				for kFlat := 0; kFlat < p.kLen; kFlat++ {
					kIdx := unravelSizes(kFlat, kSizes)

					full := make([]int, len(outDims))
					pos := 0
					if foldinOrder {
						for ii := range p.bBefore {
							full[pos] = kIdx[ii]
							pos++
						}
						for ii := range p.aBefore {
							full[pos] = iIdx[ii]
							pos++
						}
						for ii := range p.aAfter {
							full[pos] = jIdx[ii]
							pos++
						}
						for ii := range p.bAfter {
							full[pos] = mIdx[ii]
							pos++
						}
					} else {
						for ii := range p.aBefore {
							full[pos] = iIdx[ii]
							pos++
						}
						for ii := range p.aAfter {
							full[pos] = jIdx[ii]
							pos++
						}
						for ii := range p.bBefore {
							full[pos] = kIdx[ii]
							pos++
						}
						for ii := range p.bAfter {
							full[pos] = mIdx[ii]
							pos++
						}
					}
					outData[outDims.ColumnMajorPosition(full...)] = c[iFlat*p.kLen+kFlat]
				}
			}
		}
	}
	return out
}

// collectDims concatenates the sizes named by four (source-dims,
// axis-list) pairs, in order.
func collectDims(d1 dims.Dimensions, a1 []int, d2 dims.Dimensions, a2 []int, d3 dims.Dimensions, a3 []int, d4 dims.Dimensions, a4 []int) dims.Dimensions {
	out := make(dims.Dimensions, 0, len(a1)+len(a2)+len(a3)+len(a4))
	for _, a := range a1 {
		out = append(out, d1[a])
	}
	for _, a := range a2 {
		out = append(out, d2[a])
	}
	for _, a := range a3 {
		out = append(out, d3[a])
	}
	for _, a := range a4 {
		out = append(out, d4[a])
	}
	return out
}

// Fold contracts A's axis ndx1 against B's axis ndx2 (negative axes
// wrap). The result's axes are A's non-contracted axes (in order)
// followed by B's non-contracted axes (in order); a fully-contracted
// result (rank 0) becomes a length-1 tensor. A.dim(ndx1) must equal
// B.dim(ndx2). When both sides contract a size-0 axis, the result is
// empty with the correctly composed dimensions.
func Fold[T Number](a Tensor[T], ndx1 int, b Tensor[T], ndx2 int) Tensor[T] {
	return foldImpl(a, ndx1, b, ndx2, false, false)
}

// FoldC is Fold with A's elements conjugated during the contraction.
func FoldC[T Number](a Tensor[T], ndx1 int, b Tensor[T], ndx2 int) Tensor[T] {
	return foldImpl(a, ndx1, b, ndx2, true, false)
}

// FoldIn is Fold with a different output axis order: B's axes before
// ndx2, then A's non-contracted axes (in order), then B's axes after
// ndx2. This is the form used to apply a small operator (A) to a
// chosen axis of a larger tensor (B) without disturbing B's other
// axes' relative order.
func FoldIn[T Number](a Tensor[T], ndx1 int, b Tensor[T], ndx2 int) Tensor[T] {
	return foldImpl(a, ndx1, b, ndx2, false, true)
}

// MMult is the 2-D specialisation Fold(A, -1, B, 0): ordinary matrix
// multiplication.
func MMult[T Number](a, b Tensor[T]) Tensor[T] {
	return Fold(a, -1, b, 0)
}

// MMultInto computes MMult(a, b) into the pre-allocated tensor c,
// which must already have the resulting dimensions.
func MMultInto[T Number](c *Tensor[T], a, b Tensor[T]) {
	result := MMult(a, b)
	if !result.dims.Equal(c.dims) {
		panic(fmt.Errorf("%w: mmult_into target %v, result %v", ErrSizeMismatch, c.dims, result.dims))
	}
	data := c.buf.Mutable()
	copy(data, result.Flat())
}
