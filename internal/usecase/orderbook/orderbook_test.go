package orderbook

import (
	"testing"

	orderbookv1 "github.com/rimrakhimov/inno-dex/internal/domain/orderbook/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const trader = orderbookv1.Account("0x1212121212121212121212121212121212121212")

func id(b byte) orderbookv1.OrderID {
	var id orderbookv1.OrderID
	for i := range id {
		id[i] = b
	}
	return id
}

func bid(idByte byte, price, qty uint64) *orderbookv1.Order {
	return orderbookv1.NewOrder(id(idByte), price, qty, trader, orderbookv1.SideBid)
}

func ask(idByte byte, price, qty uint64) *orderbookv1.Order {
	return orderbookv1.NewOrder(id(idByte), price, qty, trader, orderbookv1.SideAsk)
}

func TestBook_Empty(t *testing.T) {
	b := NewBook(orderbookv1.SideBid)
	assert.True(t, b.Empty())

	_, err := b.Add(bid(0xab, 1, 1))
	require.NoError(t, err)
	assert.False(t, b.Empty())
	assert.Equal(t, 1, b.Len())
}

func TestBook_Member(t *testing.T) {
	b := NewBook(orderbookv1.SideBid)

	_, err := b.Add(bid(0xab, 1, 1))
	require.NoError(t, err)

	assert.True(t, b.Member(id(0xab)))
	assert.False(t, b.Member(id(0xbc)))
}

func TestBook_GetOrder(t *testing.T) {
	b := NewBook(orderbookv1.SideBid)

	order := bid(0xab, 1, 1)
	_, err := b.Add(order)
	require.NoError(t, err)

	got, err := b.GetOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, order, got)

	_, err = b.GetOrder(id(0xbc))
	assert.ErrorIs(t, err, orderbookv1.ErrOrderNotFound)
}

func TestBook_Add(t *testing.T) {
	t.Run("new order is not a modification", func(t *testing.T) {
		b := NewBook(orderbookv1.SideBid)

		modified, err := b.Add(bid(0xab, 1, 10))
		require.NoError(t, err)
		assert.False(t, modified)
	})

	t.Run("same id and price updates qty in place", func(t *testing.T) {
		b := NewBook(orderbookv1.SideBid)

		_, err := b.Add(bid(0xab, 1, 10))
		require.NoError(t, err)

		modified, err := b.Add(bid(0xab, 1, 5))
		require.NoError(t, err)
		assert.True(t, modified)

		got, err := b.GetOrder(id(0xab))
		require.NoError(t, err)
		assert.Equal(t, uint64(5), got.Qty)
		assert.Equal(t, 1, b.Len())
	})

	t.Run("same id with changed price is rejected", func(t *testing.T) {
		b := NewBook(orderbookv1.SideBid)

		_, err := b.Add(bid(0xab, 1, 10))
		require.NoError(t, err)

		_, err = b.Add(bid(0xab, 2, 10))
		assert.ErrorIs(t, err, orderbookv1.ErrPriceImmutable)
	})

	t.Run("side mismatch is rejected", func(t *testing.T) {
		b := NewBook(orderbookv1.SideBid)

		_, err := b.Add(ask(0xab, 1, 10))
		assert.ErrorIs(t, err, orderbookv1.ErrSideMismatch)
	})

	t.Run("zero qty and zero price are rejected", func(t *testing.T) {
		b := NewBook(orderbookv1.SideBid)

		_, err := b.Add(bid(0xab, 1, 0))
		assert.ErrorIs(t, err, orderbookv1.ErrInvalidInput)

		_, err = b.Add(bid(0xab, 0, 1))
		assert.ErrorIs(t, err, orderbookv1.ErrInvalidInput)
	})
}

func TestBook_Remove(t *testing.T) {
	b := NewBook(orderbookv1.SideBid)

	_, err := b.Add(bid(0xab, 1, 1))
	require.NoError(t, err)
	_, err = b.Add(bid(0xbc, 1, 2))
	require.NoError(t, err)

	assert.False(t, b.Remove(id(0xcd)), "absent id should report non-removal")

	assert.True(t, b.Remove(id(0xab)))
	assert.False(t, b.Member(id(0xab)))
	assert.False(t, b.Remove(id(0xab)), "second removal should report absence")

	assert.True(t, b.Remove(id(0xbc)))
	assert.True(t, b.Empty())

	_, err = b.GetOrder(id(0xab))
	assert.ErrorIs(t, err, orderbookv1.ErrOrderNotFound)
}

func TestBook_SpotPrice(t *testing.T) {
	t.Run("bid side tracks the maximum price", func(t *testing.T) {
		b := NewBook(orderbookv1.SideBid)

		_, err := b.SpotPrice()
		assert.ErrorIs(t, err, orderbookv1.ErrEmptyBook)

		_, err = b.Add(bid(0xbc, 2, 2))
		require.NoError(t, err)
		spot, err := b.SpotPrice()
		require.NoError(t, err)
		assert.Equal(t, uint64(2), spot)

		_, err = b.Add(bid(0xcd, 3, 3))
		require.NoError(t, err)
		spot, err = b.SpotPrice()
		require.NoError(t, err)
		assert.Equal(t, uint64(3), spot)

		_, err = b.Add(bid(0xab, 1, 1))
		require.NoError(t, err)
		spot, err = b.SpotPrice()
		require.NoError(t, err)
		assert.Equal(t, uint64(3), spot, "lower bid should not move the spot price")
	})

	t.Run("ask side tracks the minimum price", func(t *testing.T) {
		b := NewBook(orderbookv1.SideAsk)

		_, err := b.Add(ask(0xbc, 2, 2))
		require.NoError(t, err)
		_, err = b.Add(ask(0xab, 1, 1))
		require.NoError(t, err)
		_, err = b.Add(ask(0xcd, 3, 3))
		require.NoError(t, err)

		spot, err := b.SpotPrice()
		require.NoError(t, err)
		assert.Equal(t, uint64(1), spot)
	})
}

func TestBook_NextOrder(t *testing.T) {
	b := NewBook(orderbookv1.SideBid)

	_, err := b.NextOrder()
	assert.ErrorIs(t, err, orderbookv1.ErrEmptyBook)

	_, err = b.Add(bid(0xab, 1, 1))
	require.NoError(t, err)
	next, err := b.NextOrder()
	require.NoError(t, err)
	assert.Equal(t, id(0xab), next.ID)

	// A better price takes over the front of the book.
	_, err = b.Add(bid(0xbc, 2, 2))
	require.NoError(t, err)
	next, err = b.NextOrder()
	require.NoError(t, err)
	assert.Equal(t, id(0xbc), next.ID)

	// Within one level the oldest order stays in front.
	_, err = b.Add(bid(0xcd, 2, 5))
	require.NoError(t, err)
	next, err = b.NextOrder()
	require.NoError(t, err)
	assert.Equal(t, id(0xbc), next.ID)
}

func TestBook_Records(t *testing.T) {
	b := NewBook(orderbookv1.SideBid)

	assert.Empty(t, b.Records(false))
	assert.Empty(t, b.Records(true))

	// Orders at price 2 share one aggregated level.
	_, err := b.Add(bid(0xcd, 2, 3))
	require.NoError(t, err)
	_, err = b.Add(bid(0xab, 1, 1))
	require.NoError(t, err)
	_, err = b.Add(bid(0xbc, 2, 2))
	require.NoError(t, err)

	ascending := b.Records(false)
	require.Len(t, ascending, 2)
	assert.Equal(t, orderbookv1.Record{Price: 1, Qty: 1, Side: orderbookv1.SideBid}, ascending[0])
	assert.Equal(t, orderbookv1.Record{Price: 2, Qty: 5, Side: orderbookv1.SideBid}, ascending[1])

	descending := b.Records(true)
	require.Len(t, descending, 2)
	assert.Equal(t, uint64(2), descending[0].Price)
	assert.Equal(t, uint64(5), descending[0].Qty)
	assert.Equal(t, uint64(1), descending[1].Price)
	assert.Equal(t, uint64(1), descending[1].Qty)
}

func TestBook_RecordsAfterRemovals(t *testing.T) {
	b := NewBook(orderbookv1.SideBid)

	_, err := b.Add(bid(0xab, 1, 1))
	require.NoError(t, err)
	_, err = b.Add(bid(0xbc, 2, 2))
	require.NoError(t, err)
	_, err = b.Add(bid(0xcd, 2, 5))
	require.NoError(t, err)
	_, err = b.Add(bid(0xde, 4, 4))
	require.NoError(t, err)

	require.True(t, b.Remove(id(0xbc)))
	require.True(t, b.Remove(id(0xde)))

	ascending := b.Records(false)
	require.Len(t, ascending, 2)
	assert.Equal(t, uint64(1), ascending[0].Price)
	assert.Equal(t, uint64(1), ascending[0].Qty)
	assert.Equal(t, uint64(2), ascending[1].Price)
	assert.Equal(t, uint64(5), ascending[1].Qty)

	descending := b.Records(true)
	require.Len(t, descending, 2)
	assert.Equal(t, uint64(2), descending[0].Price)
	assert.Equal(t, uint64(1), descending[1].Price)
}

func TestBook_Walk(t *testing.T) {
	t.Run("bid side walks best price first, oldest first", func(t *testing.T) {
		b := NewBook(orderbookv1.SideBid)

		_, err := b.Add(bid(0xab, 900, 10))
		require.NoError(t, err)
		_, err = b.Add(bid(0xbc, 1000, 5))
		require.NoError(t, err)
		_, err = b.Add(bid(0xcd, 1000, 7))
		require.NoError(t, err)

		var visited []orderbookv1.OrderID
		b.Walk(func(order *orderbookv1.Order) bool {
			visited = append(visited, order.ID)
			return true
		})
		assert.Equal(t, []orderbookv1.OrderID{id(0xbc), id(0xcd), id(0xab)}, visited)
	})

	t.Run("ask side walks lowest price first", func(t *testing.T) {
		b := NewBook(orderbookv1.SideAsk)

		_, err := b.Add(ask(0xab, 900, 10))
		require.NoError(t, err)
		_, err = b.Add(ask(0xbc, 800, 5))
		require.NoError(t, err)

		var visited []orderbookv1.OrderID
		b.Walk(func(order *orderbookv1.Order) bool {
			visited = append(visited, order.ID)
			return true
		})
		assert.Equal(t, []orderbookv1.OrderID{id(0xbc), id(0xab)}, visited)
	})

	t.Run("walk stops when fn returns false", func(t *testing.T) {
		b := NewBook(orderbookv1.SideAsk)

		_, err := b.Add(ask(0xab, 800, 5))
		require.NoError(t, err)
		_, err = b.Add(ask(0xbc, 900, 5))
		require.NoError(t, err)

		var count int
		b.Walk(func(order *orderbookv1.Order) bool {
			count++
			return false
		})
		assert.Equal(t, 1, count)
	})
}
