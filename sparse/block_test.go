package sparse

import (
	"testing"

	"github.com/itohio/tensorcore/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindBlocksSeparatesTwoDiagonalBlocks(t *testing.T) {
	a := denseF64(
		[]float64{1, 2, 0, 0},
		[]float64{3, 4, 0, 0},
		[]float64{0, 0, 5, 6},
		[]float64{0, 0, 7, 8},
	)

	rows, cols, ok := FindBlocks(a, 1e-9)
	require.True(t, ok)
	require.Len(t, rows, 2)
	require.Len(t, cols, 2)

	assert.ElementsMatch(t, []int{0, 1}, rows[0])
	assert.ElementsMatch(t, []int{0, 1}, cols[0])
	assert.ElementsMatch(t, []int{2, 3}, rows[1])
	assert.ElementsMatch(t, []int{2, 3}, cols[1])
}

func TestFindBlocksConnectedMatrixNotSeparable(t *testing.T) {
	a := denseF64(
		[]float64{1, 1, 0},
		[]float64{1, 1, 1},
		[]float64{0, 1, 1},
	)

	_, _, ok := FindBlocks(a, 1e-9)
	assert.False(t, ok)
}

func TestFindBlocksTransposesRowMajorInput(t *testing.T) {
	a := denseF64(
		[]float64{1, 0},
		[]float64{0, 2},
		[]float64{0, 0},
	)

	rows, cols, ok := FindBlocks(a, 1e-9)
	require.True(t, ok)
	require.Len(t, rows, 3)

	for i := range rows {
		assert.Len(t, rows[i], 1)
	}
	total := 0
	for _, c := range cols {
		total += len(c)
	}
	assert.Equal(t, 2, total)
}

func fakeSVD(a tensor.Tensor[float64], wantU, wantVT, economic bool) (s, u, vt tensor.Tensor[float64]) {
	rows, cols := a.Dims()[0], a.Dims()[1]
	k := rows
	if cols < k {
		k = cols
	}
	sVals := make([]float64, k)
	uData := make([]float64, rows*k)
	vData := make([]float64, k*cols)
	for i := 0; i < k; i++ {
		sVals[i] = a.At(i, i)
		uData[i*k+i] = 1
		vData[i*cols+i] = 1
	}
	s, _ = tensor.FromInitializer[float64](toAnySlice(sVals))
	u = tensor.Empty[float64](rows, k)
	for i := 0; i < rows; i++ {
		for j := 0; j < k; j++ {
			u.SetAt(uData[i*k+j], i, j)
		}
	}
	vt = tensor.Empty[float64](k, cols)
	for i := 0; i < k; i++ {
		for j := 0; j < cols; j++ {
			vt.SetAt(vData[i*cols+j], i, j)
		}
	}
	return s, u, vt
}

func toAnySlice(v []float64) []any {
	out := make([]any, len(v))
	for i, x := range v {
		out[i] = x
	}
	return out
}

func TestBlockSVDFallsBackWhenNotSeparable(t *testing.T) {
	a := denseF64(
		[]float64{1, 1},
		[]float64{1, 1},
	)
	called := false
	svd := func(a tensor.Tensor[float64], wantU, wantVT, economic bool) (s, u, vt tensor.Tensor[float64]) {
		called = true
		return fakeSVD(a, wantU, wantVT, economic)
	}
	BlockSVD(a, true, svd)
	assert.True(t, called)
}

func TestBlockSVDCombinesBlocksDescending(t *testing.T) {
	a := denseF64(
		[]float64{2, 0},
		[]float64{0, 5},
	)
	s, u, vt := BlockSVD(a, true, fakeSVD)
	require.Equal(t, 2, s.Size())
	assert.InDelta(t, 5.0, s.At(0), 1e-9)
	assert.InDelta(t, 2.0, s.At(1), 1e-9)
	assert.Equal(t, 2, u.Dims()[0])
	assert.Equal(t, 2, vt.Dims()[1])
}
