// Package eventv1 defines the domain events an instrument emits.
//
// Events form an ordered, append-only trail per external call: emission
// order matches the chronological order fills occur, best price level
// first and oldest order first within a level. The matching engine is
// decoupled from any particular transport by publishing through the Sink
// interface; no event of a failed call is ever published.
package eventv1

import (
	orderbookv1 "github.com/rimrakhimov/inno-dex/internal/domain/orderbook/v1"
)

// Kind discriminates the event types of the trail.
type Kind string

const (
	// KindOrderPlaced marks acceptance of a new order.
	KindOrderPlaced Kind = "OrderPlaced"
	// KindOrderPartiallyExecuted marks a fill against an order that may still have a remainder.
	KindOrderPartiallyExecuted Kind = "OrderPartiallyExecuted"
	// KindOrderExecuted marks an order whose quantity reached zero.
	KindOrderExecuted Kind = "OrderExecuted"
	// KindOrderCancelled marks an order cancelled by its owner.
	KindOrderCancelled Kind = "OrderCancelled"
	// KindSpotPriceChanged marks a change of the best price on one side.
	KindSpotPriceChanged Kind = "SpotPriceChanged"
)

// Event is one entry of the per-call event trail.
type Event interface {
	Kind() Kind
}

// OrderPlaced is emitted when an order is accepted, before any crossing.
// Market orders carry price 0.
type OrderPlaced struct {
	OrderID orderbookv1.OrderID `json:"orderId"`
	Bidder  orderbookv1.Account `json:"bidder"`
	Side    orderbookv1.Side    `json:"orderType"`
	Price   uint64              `json:"price"`
	Qty     uint64              `json:"qty"`
}

// Kind implements Event.
func (OrderPlaced) Kind() Kind { return KindOrderPlaced }

// OrderPartiallyExecuted is emitted for each side of a fill. Price is
// always the resting order's price.
type OrderPartiallyExecuted struct {
	OrderID orderbookv1.OrderID `json:"orderId"`
	Qty     uint64              `json:"qty"`
	Price   uint64              `json:"price"`
}

// Kind implements Event.
func (OrderPartiallyExecuted) Kind() Kind { return KindOrderPartiallyExecuted }

// OrderExecuted is emitted when an order's remaining quantity reaches zero.
type OrderExecuted struct {
	OrderID orderbookv1.OrderID `json:"orderId"`
}

// Kind implements Event.
func (OrderExecuted) Kind() Kind { return KindOrderExecuted }

// OrderCancelled is emitted when an order is removed by its owner.
type OrderCancelled struct {
	OrderID orderbookv1.OrderID `json:"orderId"`
}

// Kind implements Event.
func (OrderCancelled) Kind() Kind { return KindOrderCancelled }

// SpotPriceChanged is emitted when the best price of a side moves.
// NewPrice is 0 when the side emptied.
type SpotPriceChanged struct {
	Side     orderbookv1.Side `json:"orderBookType"`
	NewPrice uint64           `json:"newPrice"`
}

// Kind implements Event.
func (SpotPriceChanged) Kind() Kind { return KindSpotPriceChanged }
