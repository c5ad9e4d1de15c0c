package orderbook

import (
	orderbookv1 "github.com/rimrakhimov/inno-dex/internal/domain/orderbook/v1"
	"github.com/rimrakhimov/inno-dex/pkg/orderedset"
)

// Book holds the resting orders of one side of an instrument.
//
// Every id in the order map is a member of exactly one price level matching
// the order's price, and a price level is present in the index iff it is
// non-empty. The book is not safe for concurrent use; the instrument
// serializes all calls.
type Book struct {
	side   orderbookv1.Side
	index  *orderbookv1.SortedPriceIndex
	orders map[orderbookv1.OrderID]*orderbookv1.Order
}

var _ orderbookv1.Book = (*Book)(nil)

// NewBook creates an empty order book for the given side.
func NewBook(side orderbookv1.Side) *Book {
	return &Book{
		side:   side,
		index:  orderbookv1.NewSortedPriceIndex(),
		orders: make(map[orderbookv1.OrderID]*orderbookv1.Order),
	}
}

// Side returns which side of the instrument the book holds.
func (b *Book) Side() orderbookv1.Side {
	return b.side
}

// Add inserts a new order into its price level, creating the level if
// needed, and returns false. If an order with the same id is already
// resting, its quantity is updated in place and Add returns true; the
// price of a resting order can never change.
func (b *Book) Add(order *orderbookv1.Order) (bool, error) {
	if order.Side != b.side {
		return false, orderbookv1.ErrSideMismatch
	}
	if order.Qty == 0 || order.Price == 0 {
		return false, orderbookv1.ErrInvalidInput
	}

	if existing, ok := b.orders[order.ID]; ok {
		if existing.Price != order.Price {
			return false, orderbookv1.ErrPriceImmutable
		}
		existing.Qty = order.Qty
		return true, nil
	}

	b.index.Ensure(order.Price).Add(order.ID)
	b.orders[order.ID] = order
	return false, nil
}

// Remove deletes the order and its price-level membership, dropping the
// level if it becomes empty. It returns whether the id was present.
func (b *Book) Remove(id orderbookv1.OrderID) bool {
	order, ok := b.orders[id]
	if !ok {
		return false
	}

	if level, ok := b.index.Level(order.Price); ok {
		level.Remove(id)
	}
	b.index.DropIfEmpty(order.Price)
	delete(b.orders, id)
	return true
}

// Member reports whether the id is resting in the book.
func (b *Book) Member(id orderbookv1.OrderID) bool {
	_, ok := b.orders[id]
	return ok
}

// Empty reports whether the book holds no orders.
func (b *Book) Empty() bool {
	return len(b.orders) == 0
}

// Len returns the number of resting orders.
func (b *Book) Len() int {
	return len(b.orders)
}

// GetOrder returns the order with the given id.
func (b *Book) GetOrder(id orderbookv1.OrderID) (*orderbookv1.Order, error) {
	order, ok := b.orders[id]
	if !ok {
		return nil, orderbookv1.ErrOrderNotFound
	}
	return order, nil
}

// SpotPrice returns the best price for this side: the maximum populated
// price for bids, the minimum for asks.
func (b *Book) SpotPrice() (uint64, error) {
	price, err := b.index.Best(b.side == orderbookv1.SideBid)
	if err != nil {
		return 0, orderbookv1.ErrEmptyBook
	}
	return price, nil
}

// NextOrder returns the order at the front of the best price level's
// queue, i.e. the next order a crossing incoming order would fill.
func (b *Book) NextOrder() (*orderbookv1.Order, error) {
	price, err := b.SpotPrice()
	if err != nil {
		return nil, err
	}

	level, _ := b.index.Level(price)
	id, ok := level.Front()
	if !ok {
		return nil, orderbookv1.ErrEmptyBook
	}
	return b.orders[id], nil
}

// Records returns one aggregated record per populated price level in the
// requested price order, quantity summed over all orders at the level.
func (b *Book) Records(descending bool) []orderbookv1.Record {
	records := make([]orderbookv1.Record, 0, b.index.Len())

	b.index.Levels(descending, func(price uint64, ids *orderedset.Set[orderbookv1.OrderID]) bool {
		var qty uint64
		ids.Each(func(id orderbookv1.OrderID) bool {
			qty += b.orders[id].Qty
			return true
		})
		records = append(records, orderbookv1.Record{
			Price: price,
			Qty:   qty,
			Side:  b.side,
		})
		return true
	})
	return records
}

// Walk traverses resting orders in match priority for this side: best
// price level first (highest for bids, lowest for asks), oldest order
// first within a level. Traversal stops when fn returns false.
func (b *Book) Walk(fn func(order *orderbookv1.Order) bool) {
	b.index.Levels(b.side == orderbookv1.SideBid, func(price uint64, ids *orderedset.Set[orderbookv1.OrderID]) bool {
		keepGoing := true
		ids.Each(func(id orderbookv1.OrderID) bool {
			keepGoing = fn(b.orders[id])
			return keepGoing
		})
		return keepGoing
	})
}
