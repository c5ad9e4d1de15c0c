package orderbookv1

import (
	"testing"

	"github.com/rimrakhimov/inno-dex/pkg/orderedset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testID(b byte) OrderID {
	var id OrderID
	for i := range id {
		id[i] = b
	}
	return id
}

func TestSortedPriceIndex_Ensure(t *testing.T) {
	idx := NewSortedPriceIndex()

	level := idx.Ensure(100)
	require.NotNil(t, level)
	assert.Equal(t, 1, idx.Len())

	// Ensure on a populated price returns the same level.
	level.Add(testID(0xab))
	again := idx.Ensure(100)
	assert.True(t, again.Contains(testID(0xab)))
	assert.Equal(t, 1, idx.Len())
}

func TestSortedPriceIndex_DropIfEmpty(t *testing.T) {
	idx := NewSortedPriceIndex()

	level := idx.Ensure(100)
	level.Add(testID(0xab))

	idx.DropIfEmpty(100)
	assert.Equal(t, 1, idx.Len(), "non-empty level must not be dropped")

	level.Remove(testID(0xab))
	idx.DropIfEmpty(100)
	assert.Equal(t, 0, idx.Len())

	_, ok := idx.Level(100)
	assert.False(t, ok)

	// Dropping an absent price is a no-op.
	idx.DropIfEmpty(42)
}

func TestSortedPriceIndex_Best(t *testing.T) {
	idx := NewSortedPriceIndex()

	_, err := idx.Best(false)
	assert.ErrorIs(t, err, ErrEmptyIndex)
	_, err = idx.Best(true)
	assert.ErrorIs(t, err, ErrEmptyIndex)

	for _, price := range []uint64{200, 50, 700, 100} {
		idx.Ensure(price).Add(testID(byte(price)))
	}

	best, err := idx.Best(false)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), best)

	best, err = idx.Best(true)
	require.NoError(t, err)
	assert.Equal(t, uint64(700), best)
}

func TestSortedPriceIndex_Levels(t *testing.T) {
	idx := NewSortedPriceIndex()

	// Insertion order deliberately differs from numeric order.
	for _, price := range []uint64{300, 100, 500, 200, 400} {
		idx.Ensure(price)
	}

	var ascending []uint64
	idx.Levels(false, func(price uint64, ids *orderedset.Set[OrderID]) bool {
		ascending = append(ascending, price)
		return true
	})
	assert.Equal(t, []uint64{100, 200, 300, 400, 500}, ascending)

	var descending []uint64
	idx.Levels(true, func(price uint64, ids *orderedset.Set[OrderID]) bool {
		descending = append(descending, price)
		return true
	})
	assert.Equal(t, []uint64{500, 400, 300, 200, 100}, descending)
}

func TestSortedPriceIndex_LevelsEarlyStop(t *testing.T) {
	idx := NewSortedPriceIndex()

	for _, price := range []uint64{10, 20, 30} {
		idx.Ensure(price)
	}

	var visited []uint64
	idx.Levels(false, func(price uint64, ids *orderedset.Set[OrderID]) bool {
		visited = append(visited, price)
		return len(visited) < 2
	})
	assert.Equal(t, []uint64{10, 20}, visited)
}

func TestOrderID_Text(t *testing.T) {
	id := NewOrderID("TST1/TST2", 1)
	assert.NotEqual(t, OrderID{}, id)

	text, err := id.MarshalText()
	require.NoError(t, err)

	var decoded OrderID
	require.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, id, decoded)

	// Sequence numbers never repeat, so neither do ids.
	other := NewOrderID("TST1/TST2", 2)
	assert.NotEqual(t, id, other)
}
