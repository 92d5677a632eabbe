package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorCloneSharesStorage(t *testing.T) {
	a := FromSlice([]float64{1, 2, 3})
	b := a.Clone()

	require.Equal(t, 2, a.RefCount())
	require.Equal(t, 2, b.RefCount())
	assert.Equal(t, a.Slice(), b.Slice())
}

func TestVectorMutableCopiesOnWrite(t *testing.T) {
	a := FromSlice([]float64{1, 2, 3})
	b := a.Clone()

	bData := b.Mutable()
	bData[0] = 99

	assert.Equal(t, float64(1), a.Slice()[0], "mutation through b must not affect a")
	assert.Equal(t, float64(99), b.Slice()[0])
	assert.Equal(t, 1, a.RefCount())
	assert.Equal(t, 1, b.RefCount())
}

func TestVectorMutableNoopWhenUnique(t *testing.T) {
	a := New[float64](4)
	data := a.Mutable()
	data[0] = 7

	assert.Equal(t, float64(7), a.Slice()[0])
	assert.Equal(t, 1, a.RefCount())
}

func TestVectorMutableIdempotentAfterDetach(t *testing.T) {
	a := FromSlice([]complex128{1 + 0i, 2 + 0i})
	b := a.Clone()

	b.Mutable()[0] = 5 + 1i
	// second Mutable call on b should not copy again (refcount already 1).
	before := b.Slice()
	after := b.Mutable()
	assert.Equal(t, &before[0], &after[0])
	_ = a
}
