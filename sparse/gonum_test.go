package sparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsGonumReadsThroughToSparse(t *testing.T) {
	s := FromDense(denseF64([]float64{1, 0}, []float64{0, 2}))
	g := AsGonum(s)

	r, c := g.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, 1.0, g.At(0, 0))
	assert.Equal(t, 0.0, g.At(0, 1))
	assert.Equal(t, 2.0, g.At(1, 1))
}

func TestAsGonumRowAndColView(t *testing.T) {
	s := FromDense(denseF64([]float64{1, 2}, []float64{3, 4}))
	g := AsGonum(s).(gonumCSR)

	row := g.RowView(1)
	assert.Equal(t, 3.0, row.AtVec(0))
	assert.Equal(t, 4.0, row.AtVec(1))

	col := g.ColView(0)
	assert.Equal(t, 1.0, col.AtVec(0))
	assert.Equal(t, 3.0, col.AtVec(1))
}
