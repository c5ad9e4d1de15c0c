package orderbookv1

import "errors"

var (
	// ErrInvalidInput is returned for orders with a zero quantity or price.
	ErrInvalidInput = errors.New("order quantity and price must be positive")
	// ErrSideMismatch is returned when an order's side does not correspond to the book.
	ErrSideMismatch = errors.New("order side does not correspond to order book side")
	// ErrPriceImmutable is returned when re-adding an existing id with a different price.
	ErrPriceImmutable = errors.New("order price cannot be changed")
	// ErrOrderNotFound is returned when the requested order is not in the book.
	ErrOrderNotFound = errors.New("order is not located in the order book")
	// ErrUnauthorized is returned when a trader acts on an order they do not own.
	ErrUnauthorized = errors.New("order is owned by another trader")
	// ErrEmptyBook is returned for spot-price and next-order queries on an empty book.
	ErrEmptyBook = errors.New("order book is empty")
	// ErrEmptyIndex is returned for best-price queries on an empty price index.
	ErrEmptyIndex = errors.New("price index is empty")
)
