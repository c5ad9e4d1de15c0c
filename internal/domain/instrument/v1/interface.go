package instrumentv1

import (
	"context"

	orderbookv1 "github.com/rimrakhimov/inno-dex/internal/domain/orderbook/v1"
	snapshotv1 "github.com/rimrakhimov/inno-dex/internal/domain/snapshot/v1"
)

// Instrument defines the trading surface of one token pair: two order
// books matched by price-time priority with escrowed settlement. All
// mutation is synchronous and atomic within one call.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=instrumentv1_mock
type Instrument interface {
	// Pair returns the instrument's trading pair, e.g. "TST1/TST2".
	Pair() string
	// LimitOrder places an order bounded by price; the unmatched
	// remainder rests in the book.
	LimitOrder(ctx context.Context, trader orderbookv1.Account, toBuy bool, price, qty uint64) (orderbookv1.OrderID, error)
	// MarketOrder places an order with no price bound; the unmatched
	// remainder is discarded, never rested.
	MarketOrder(ctx context.Context, trader orderbookv1.Account, toBuy bool, qty uint64) (orderbookv1.OrderID, error)
	// CancelOrder removes a resting order owned by the trader and
	// refunds its remaining escrow.
	CancelOrder(ctx context.Context, trader orderbookv1.Account, id orderbookv1.OrderID) error
	// OrderBookRecords returns the aggregated levels of both sides in
	// one strict price order.
	OrderBookRecords(descending bool) []orderbookv1.Record
	// OrderIDs returns the trader's active order ids.
	OrderIDs(trader orderbookv1.Account) []orderbookv1.OrderID
	// SpotPrice returns the best resting price of the given side.
	SpotPrice(side orderbookv1.Side) (uint64, error)
	// Snapshot captures the resting state of both books.
	Snapshot() *snapshotv1.Snapshot
	// Restore replaces the books with the contents of a snapshot.
	Restore(snapshot *snapshotv1.Snapshot) error
}
