package sparse

import (
	"sort"

	"github.com/itohio/tensorcore/dims"
	"github.com/itohio/tensorcore/tensor"
	"gonum.org/v1/gonum/mat"
)

// unionFind is a standard disjoint-set structure over a fixed universe
// of rows ++ cols nodes (row i at index i, column j at index rows+j).
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &unionFind{parent: p}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}

// FindBlocks searches for a permutation of rows and columns exposing a
// block-diagonal structure of a (|a[i,j]| > tol connects row i with
// column j), walked column-major via a union-find over row+column
// nodes. It returns ok == false when a is connected (not separable).
// A row-major matrix (rows > cols) is transposed first; the returned
// row/column lists are swapped back before returning.
func FindBlocks[T Number](a tensor.Tensor[T], tol float64) (rows [][]int, cols [][]int, ok bool) {
	nr, nc := a.Dims()[0], a.Dims()[1]

	swapped := false
	if nr > nc {
		a = tensor.Transpose(a)
		nr, nc = nc, nr
		swapped = true
	}

	uf := newUnionFind(nr + nc)
	colHasEntry := make([]bool, nc)

	for j := 0; j < nc; j++ {
		for i := 0; i < nr; i++ {
			if absAbove(a.At(i, j), tol) {
				colHasEntry[j] = true
				uf.union(nr+j, i)
			}
		}
	}

	groups := map[int][]int{}
	order := []int{}
	for i := 0; i < nr; i++ {
		root := uf.find(i)
		if _, seen := groups[root]; !seen {
			order = append(order, root)
		}
		groups[root] = append(groups[root], i)
	}

	type block struct {
		rows []int
		cols []int
	}
	blockOf := map[int]*block{}
	blockOrder := []int{}
	for _, root := range order {
		blockOf[root] = &block{rows: groups[root]}
		blockOrder = append(blockOrder, root)
	}

	for j := 0; j < nc; j++ {
		root := uf.find(nr + j)
		b, exists := blockOf[root]
		if !exists {
			if !colHasEntry[j] {
				b = &block{}
				blockOf[root] = b
				blockOrder = append(blockOrder, root)
			} else {
				continue
			}
		}
		b.cols = append(b.cols, j)
	}

	if len(blockOrder) < 2 {
		return nil, nil, false
	}

	for _, root := range blockOrder {
		b := blockOf[root]
		sort.Ints(b.rows)
		sort.Ints(b.cols)
		rows = append(rows, b.rows)
		cols = append(cols, b.cols)
	}

	if swapped {
		rows, cols = cols, rows
	}
	return rows, cols, true
}

func absAbove[T Number](v T, tol float64) bool {
	switch x := any(v).(type) {
	case float64:
		return x > tol || -x > tol
	case complex128:
		r, i := real(x), imag(x)
		return r*r+i*i > tol*tol
	default:
		return false
	}
}

// DenseSVD abstracts the plain dense SVD solver BlockSVD falls back
// to, so this package does not need to import linalg directly
// (avoiding an import-cycle risk between sparse and linalg, mirroring
// how the teacher keeps its tensor_linalg driver decoupled from
// storage-layer packages).
type DenseSVD func(a tensor.Tensor[float64], wantU, wantVT, economic bool) (s, u, vt tensor.Tensor[float64])

// BlockSVD uses FindBlocks to look for block-diagonal structure in a.
// When a is not separable (or collapses to one full-size block), it
// forwards to svdFunc directly. Otherwise it SVDs each block on its
// own, scatters the per-block U/Vt into the correct row/column subset
// of the full-size outputs, and returns the combined singular values
// sorted descending with U/Vt permuted to match.
func BlockSVD(a tensor.Tensor[float64], economic bool, svdFunc DenseSVD) (s, u, vt tensor.Tensor[float64]) {
	rowBlocks, colBlocks, ok := FindBlocks(a, 0)
	m, n := a.Dims()[0], a.Dims()[1]
	if !ok || len(rowBlocks) < 2 || (len(rowBlocks) == 1 && len(rowBlocks[0]) == m) {
		return svdFunc(a, true, true, economic)
	}

	type piece struct {
		sv   float64
		uCol []float64
		vRow []float64
		block int
	}
	var pieces []piece

	for b, rIdx := range rowBlocks {
		cIdx := colBlocks[b]
		sub := extractBlock(a, rIdx, cIdx)
		bs, bu, bvt := svdFunc(sub, true, true, true)
		k := bs.Size()
		for c := 0; c < k; c++ {
			uCol := make([]float64, len(rIdx))
			for r := range rIdx {
				uCol[r] = bu.At(r, c)
			}
			vRow := make([]float64, len(cIdx))
			for cc := range cIdx {
				vRow[cc] = bvt.At(c, cc)
			}
			pieces = append(pieces, piece{sv: bs.At(c), uCol: uCol, vRow: vRow, block: b})
		}
	}

	sort.Slice(pieces, func(i, j int) bool { return pieces[i].sv > pieces[j].sv })

	total := len(pieces)
	sVals := make([]float64, total)
	uDense := mat.NewDense(m, total, nil)
	vtDense := mat.NewDense(total, n, nil)

	for k, p := range pieces {
		sVals[k] = p.sv
		rIdx := rowBlocks[p.block]
		cIdx := colBlocks[p.block]
		for ri, r := range rIdx {
			uDense.Set(r, k, p.uCol[ri])
		}
		for ci, c := range cIdx {
			vtDense.Set(k, c, p.vRow[ci])
		}
	}

	s = tensor.FromFlat[float64](dims.New(total), sVals)
	u = denseToTensor(uDense)
	vt = denseToTensor(vtDense)
	return s, u, vt
}

func extractBlock[T Number](a tensor.Tensor[T], rIdx, cIdx []int) tensor.Tensor[T] {
	out := tensor.Empty[T](len(rIdx), len(cIdx))
	for ri, r := range rIdx {
		for ci, c := range cIdx {
			out.SetAt(a.At(r, c), ri, ci)
		}
	}
	return out
}

func denseToTensor(d *mat.Dense) tensor.Tensor[float64] {
	rows, cols := d.Dims()
	out := tensor.Empty[float64](rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.SetAt(d.At(i, j), i, j)
		}
	}
	return out
}
