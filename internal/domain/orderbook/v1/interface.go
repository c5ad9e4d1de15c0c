package orderbookv1

// Book defines the interface for one side of an instrument's order book.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=orderbookv1_mock
type Book interface {
	// Add inserts a new order or updates the quantity of an existing one.
	// It returns true when an existing order was modified.
	Add(order *Order) (bool, error)
	// Remove deletes an order, dropping its price level if it empties.
	// It returns whether the id was present.
	Remove(id OrderID) bool
	// Member reports whether the id is resting in the book.
	Member(id OrderID) bool
	// Empty reports whether the book holds no orders.
	Empty() bool
	// Len returns the number of resting orders.
	Len() int
	// GetOrder returns the order with the given id.
	GetOrder(id OrderID) (*Order, error)
	// SpotPrice returns the best price for the book's side.
	SpotPrice() (uint64, error)
	// NextOrder returns the oldest order at the best price level.
	NextOrder() (*Order, error)
	// Records returns one aggregated record per populated price level.
	Records(descending bool) []Record
	// Walk traverses resting orders in match priority: best price level
	// first, oldest order first within a level.
	Walk(fn func(order *Order) bool)
	// Side returns which side of the instrument the book holds.
	Side() Side
}
