// Package instrument implements the matching engine for one trading
// pair: two order books crossed by price-time priority, escrowed
// settlement through two asset capabilities, and an ordered event trail
// per call.
//
// Calls are serialized and all-or-nothing. Each call validates its
// input and computes a fill plan before any funds move or any book
// mutates, escrows the taker's funds in a single transfer, then applies
// the plan; the buffered event trail reaches the sink only after the
// call has committed. Sink failure is a delivery problem, not a
// matching problem: the committed call still succeeds and the failure
// is logged.
package instrument

import (
	"context"
	"math/bits"
	"sort"
	"sync"

	assetv1 "github.com/rimrakhimov/inno-dex/internal/domain/asset/v1"
	eventv1 "github.com/rimrakhimov/inno-dex/internal/domain/event/v1"
	instrumentv1 "github.com/rimrakhimov/inno-dex/internal/domain/instrument/v1"
	orderbookv1 "github.com/rimrakhimov/inno-dex/internal/domain/orderbook/v1"
	snapshotv1 "github.com/rimrakhimov/inno-dex/internal/domain/snapshot/v1"
	"github.com/rimrakhimov/inno-dex/internal/usecase/orderbook"
	"github.com/rimrakhimov/inno-dex/pkg/logger"
	"github.com/rimrakhimov/inno-dex/pkg/orderedset"
)

// Instrument matches orders for one token pair. The base asset is the
// token being traded, the quote asset the one it is priced in: a bid
// escrows price*qty of quote, an ask escrows qty of base.
type Instrument struct {
	pair  string
	base  assetv1.Asset
	quote assetv1.Asset

	mu      sync.Mutex
	bids    *orderbook.Book
	asks    *orderbook.Book
	traders map[orderbookv1.Account]*orderedset.Set[orderbookv1.OrderID]
	seq     uint64

	sink   eventv1.Sink
	logger *logger.Logger
}

var _ instrumentv1.Instrument = (*Instrument)(nil)

// NewInstrument creates an instrument for the given pair with empty books.
func NewInstrument(pair string, base, quote assetv1.Asset, sink eventv1.Sink, log *logger.Logger) *Instrument {
	return &Instrument{
		pair:    pair,
		base:    base,
		quote:   quote,
		bids:    orderbook.NewBook(orderbookv1.SideBid),
		asks:    orderbook.NewBook(orderbookv1.SideAsk),
		traders: make(map[orderbookv1.Account]*orderedset.Set[orderbookv1.OrderID]),
		sink:    sink,
		logger:  log,
	}
}

// Pair returns the instrument's trading pair.
func (ins *Instrument) Pair() string {
	return ins.pair
}

// fill is one planned match: qty units taken from a resting order at
// the resting order's price.
type fill struct {
	resting *orderbookv1.Order
	qty     uint64
}

// mul64 multiplies two amounts, reporting whether the product fits in
// 64 bits. Notional arithmetic never wraps silently; an overflowing
// amount rejects the whole call.
func mul64(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	return lo, hi == 0
}

// add64 adds two amounts, reporting whether the sum fits in 64 bits.
func add64(a, b uint64) (uint64, bool) {
	sum, carry := bits.Add64(a, b, 0)
	return sum, carry == 0
}

// planCrossing walks the book opposite to the incoming side in match
// priority and plans fills up to qty. limit bounds the acceptable price
// (0 means unbounded, i.e. a market order). Nothing is mutated. It
// returns the planned fills, the total quantity they cover and the total
// quote notional they settle at, or ErrInvalidInput when that notional
// does not fit in 64 bits.
func (ins *Instrument) planCrossing(side orderbookv1.Side, limit, qty uint64) (fills []fill, filled, notional uint64, err error) {
	remaining := qty

	var overflowed bool
	ins.book(side.Opposite()).Walk(func(resting *orderbookv1.Order) bool {
		if remaining == 0 {
			return false
		}
		if limit != 0 {
			if side == orderbookv1.SideBid && resting.Price > limit {
				return false
			}
			if side == orderbookv1.SideAsk && resting.Price < limit {
				return false
			}
		}

		q := min(remaining, resting.Qty)

		amount, ok := mul64(q, resting.Price)
		if ok {
			notional, ok = add64(notional, amount)
		}
		if !ok {
			overflowed = true
			return false
		}

		fills = append(fills, fill{resting: resting, qty: q})
		remaining -= q
		filled += q
		return true
	})
	if overflowed {
		return nil, 0, 0, orderbookv1.ErrInvalidInput
	}

	return fills, filled, notional, nil
}

// applyFills settles and applies a planned crossing for the incoming
// order with the given id and side, appending the fill trail to events.
// Escrow arithmetic guarantees the outbound transfers are covered, so a
// transfer failure here indicates corrupted accounting and aborts the call.
func (ins *Instrument) applyFills(
	ctx context.Context,
	trader orderbookv1.Account,
	id orderbookv1.OrderID,
	side orderbookv1.Side,
	fills []fill,
	events []eventv1.Event,
) ([]eventv1.Event, error) {
	opposite := ins.book(side.Opposite())

	for _, f := range fills {
		q, price := f.qty, f.resting.Price
		maker := f.resting.Bidder

		// Each fill is a simultaneous two-way movement sized by the
		// resting price: the taker's asset goes to the maker, the
		// maker's escrowed counter-asset goes to the taker.
		if side == orderbookv1.SideBid {
			if err := ins.quote.TransferOut(ctx, maker, q*price); err != nil {
				return events, err
			}
			if err := ins.base.TransferOut(ctx, trader, q); err != nil {
				return events, err
			}
		} else {
			if err := ins.base.TransferOut(ctx, maker, q); err != nil {
				return events, err
			}
			if err := ins.quote.TransferOut(ctx, trader, q*price); err != nil {
				return events, err
			}
		}

		events = append(events,
			eventv1.OrderPartiallyExecuted{OrderID: f.resting.ID, Qty: q, Price: price},
			eventv1.OrderPartiallyExecuted{OrderID: id, Qty: q, Price: price},
		)

		f.resting.Qty -= q
		if f.resting.Qty == 0 {
			opposite.Remove(f.resting.ID)
			ins.ownerRemove(maker, f.resting.ID)
			events = append(events, eventv1.OrderExecuted{OrderID: f.resting.ID})
		}
	}

	return events, nil
}

// LimitOrder validates the order, escrows the full notional up front,
// crosses it against the opposite book and rests any remainder. Escrow
// held beyond what the fills and the resting remainder need, i.e. price
// improvement, is refunded to the caller.
func (ins *Instrument) LimitOrder(ctx context.Context, trader orderbookv1.Account, toBuy bool, price, qty uint64) (orderbookv1.OrderID, error) {
	if qty == 0 || price == 0 {
		return orderbookv1.OrderID{}, orderbookv1.ErrInvalidInput
	}

	ins.mu.Lock()
	defer ins.mu.Unlock()

	side := orderbookv1.SideAsk
	if toBuy {
		side = orderbookv1.SideBid
	}

	escrow := qty
	escrowAsset := ins.base
	if toBuy {
		var ok bool
		escrow, ok = mul64(price, qty)
		if !ok {
			return orderbookv1.OrderID{}, orderbookv1.ErrInvalidInput
		}
		escrowAsset = ins.quote
	}

	fills, filled, notional, err := ins.planCrossing(side, price, qty)
	if err != nil {
		return orderbookv1.OrderID{}, err
	}

	if err := escrowAsset.TransferIn(ctx, trader, escrow); err != nil {
		return orderbookv1.OrderID{}, err
	}

	id := ins.nextOrderID()
	events := []eventv1.Event{eventv1.OrderPlaced{
		OrderID: id,
		Bidder:  trader,
		Side:    side,
		Price:   price,
		Qty:     qty,
	}}

	ownSpotBefore := ins.spotOrZero(side)
	oppSpotBefore := ins.spotOrZero(side.Opposite())

	events, err = ins.applyFills(ctx, trader, id, side, fills, events)
	if err != nil {
		ins.logger.ErrorContext(ctx, err, logger.Field{Key: "pair", Value: ins.pair})
		return orderbookv1.OrderID{}, err
	}

	remainder := qty - filled
	if remainder > 0 {
		order := orderbookv1.NewOrder(id, price, remainder, trader, side)
		if _, err := ins.book(side).Add(order); err != nil {
			return orderbookv1.OrderID{}, err
		}
		ins.ownerAdd(trader, id)
	}

	// Price improvement accrues to the taker: fills settled at the
	// resting price, so anything escrowed beyond the fills and the
	// resting remainder goes back.
	if toBuy {
		if refund := escrow - notional - remainder*price; refund > 0 {
			if err := ins.quote.TransferOut(ctx, trader, refund); err != nil {
				ins.logger.ErrorContext(ctx, err, logger.Field{Key: "pair", Value: ins.pair})
				return orderbookv1.OrderID{}, err
			}
		}
	}

	events = ins.appendSpotChanges(events, side.Opposite(), oppSpotBefore)
	events = ins.appendSpotChanges(events, side, ownSpotBefore)

	ins.publish(ctx, events)

	ins.logger.DebugContext(ctx, "limit order processed",
		logger.Field{Key: "pair", Value: ins.pair},
		logger.Field{Key: "orderId", Value: id.String()},
		logger.Field{Key: "side", Value: side.String()},
		logger.Field{Key: "price", Value: price},
		logger.Field{Key: "qty", Value: qty},
		logger.Field{Key: "filled", Value: filled},
	)

	return id, nil
}

// MarketOrder crosses qty against the opposite book with no price bound.
// The escrow is sized by the planned fills, so the unfilled remainder
// never holds funds and is simply not placed.
func (ins *Instrument) MarketOrder(ctx context.Context, trader orderbookv1.Account, toBuy bool, qty uint64) (orderbookv1.OrderID, error) {
	if qty == 0 {
		return orderbookv1.OrderID{}, orderbookv1.ErrInvalidInput
	}

	ins.mu.Lock()
	defer ins.mu.Unlock()

	side := orderbookv1.SideAsk
	if toBuy {
		side = orderbookv1.SideBid
	}

	fills, filled, notional, err := ins.planCrossing(side, 0, qty)
	if err != nil {
		return orderbookv1.OrderID{}, err
	}

	if filled > 0 {
		if toBuy {
			if err := ins.quote.TransferIn(ctx, trader, notional); err != nil {
				return orderbookv1.OrderID{}, err
			}
		} else {
			if err := ins.base.TransferIn(ctx, trader, filled); err != nil {
				return orderbookv1.OrderID{}, err
			}
		}
	}

	id := ins.nextOrderID()

	// Market orders carry price 0 in the trail to mark their type.
	events := []eventv1.Event{eventv1.OrderPlaced{
		OrderID: id,
		Bidder:  trader,
		Side:    side,
		Price:   0,
		Qty:     qty,
	}}

	oppSpotBefore := ins.spotOrZero(side.Opposite())

	events, err = ins.applyFills(ctx, trader, id, side, fills, events)
	if err != nil {
		ins.logger.ErrorContext(ctx, err, logger.Field{Key: "pair", Value: ins.pair})
		return orderbookv1.OrderID{}, err
	}

	events = ins.appendSpotChanges(events, side.Opposite(), oppSpotBefore)

	ins.publish(ctx, events)

	ins.logger.DebugContext(ctx, "market order processed",
		logger.Field{Key: "pair", Value: ins.pair},
		logger.Field{Key: "orderId", Value: id.String()},
		logger.Field{Key: "side", Value: side.String()},
		logger.Field{Key: "qty", Value: qty},
		logger.Field{Key: "filled", Value: filled},
	)

	return id, nil
}

// CancelOrder removes a resting order owned by the caller and refunds
// the escrow backing its remainder.
func (ins *Instrument) CancelOrder(ctx context.Context, trader orderbookv1.Account, id orderbookv1.OrderID) error {
	ins.mu.Lock()
	defer ins.mu.Unlock()

	var book *orderbook.Book
	switch {
	case ins.bids.Member(id):
		book = ins.bids
	case ins.asks.Member(id):
		book = ins.asks
	default:
		return orderbookv1.ErrOrderNotFound
	}

	order, err := book.GetOrder(id)
	if err != nil {
		return err
	}
	if order.Bidder != trader {
		return orderbookv1.ErrUnauthorized
	}

	spotBefore := ins.spotOrZero(order.Side)

	book.Remove(id)
	ins.ownerRemove(trader, id)

	// Refund exactly the remaining escrow: quote for a bid, base for an ask.
	refundAsset := ins.base
	if order.IsBid() {
		refundAsset = ins.quote
	}
	if err := refundAsset.TransferOut(ctx, trader, order.Notional()); err != nil {
		ins.logger.ErrorContext(ctx, err, logger.Field{Key: "pair", Value: ins.pair})
		return err
	}

	events := []eventv1.Event{eventv1.OrderCancelled{OrderID: id}}
	events = ins.appendSpotChanges(events, order.Side, spotBefore)

	ins.publish(ctx, events)

	ins.logger.DebugContext(ctx, "order cancelled",
		logger.Field{Key: "pair", Value: ins.pair},
		logger.Field{Key: "orderId", Value: id.String()},
	)

	return nil
}

// OrderBookRecords returns the aggregated levels of both sides merged in
// one strict price order. Read-only; no events.
func (ins *Instrument) OrderBookRecords(descending bool) []orderbookv1.Record {
	ins.mu.Lock()
	defer ins.mu.Unlock()

	records := append(ins.bids.Records(descending), ins.asks.Records(descending)...)
	sort.SliceStable(records, func(i, j int) bool {
		if descending {
			return records[i].Price > records[j].Price
		}
		return records[i].Price < records[j].Price
	})
	return records
}

// OrderIDs returns the trader's active order ids in placement order.
func (ins *Instrument) OrderIDs(trader orderbookv1.Account) []orderbookv1.OrderID {
	ins.mu.Lock()
	defer ins.mu.Unlock()

	owned, ok := ins.traders[trader]
	if !ok {
		return nil
	}
	return owned.Values()
}

// SpotPrice returns the best resting price of the given side.
func (ins *Instrument) SpotPrice(side orderbookv1.Side) (uint64, error) {
	ins.mu.Lock()
	defer ins.mu.Unlock()
	return ins.book(side).SpotPrice()
}

// Snapshot captures the resting state of both books in match priority,
// so replaying the orders in listed order reconstructs every level's
// time priority.
func (ins *Instrument) Snapshot() *snapshotv1.Snapshot {
	ins.mu.Lock()
	defer ins.mu.Unlock()

	var orders []snapshotv1.BookOrder
	for _, book := range []*orderbook.Book{ins.bids, ins.asks} {
		book.Walk(func(order *orderbookv1.Order) bool {
			orders = append(orders, snapshotv1.BookOrder{
				OrderID: order.ID,
				Price:   order.Price,
				Qty:     order.Qty,
				Bidder:  order.Bidder,
				Side:    order.Side,
			})
			return true
		})
	}

	return &snapshotv1.Snapshot{
		Pair:     ins.pair,
		OrderSeq: ins.seq,
		Orders:   orders,
	}
}

// Restore replaces the books and the trader registry with the contents
// of a snapshot.
func (ins *Instrument) Restore(snapshot *snapshotv1.Snapshot) error {
	ins.mu.Lock()
	defer ins.mu.Unlock()

	bids := orderbook.NewBook(orderbookv1.SideBid)
	asks := orderbook.NewBook(orderbookv1.SideAsk)
	traders := make(map[orderbookv1.Account]*orderedset.Set[orderbookv1.OrderID])

	for _, bo := range snapshot.Orders {
		order := orderbookv1.NewOrder(bo.OrderID, bo.Price, bo.Qty, bo.Bidder, bo.Side)

		book := asks
		if order.IsBid() {
			book = bids
		}
		if _, err := book.Add(order); err != nil {
			return err
		}

		owned, ok := traders[bo.Bidder]
		if !ok {
			owned = orderedset.New[orderbookv1.OrderID]()
			traders[bo.Bidder] = owned
		}
		owned.Add(bo.OrderID)
	}

	ins.bids = bids
	ins.asks = asks
	ins.traders = traders
	ins.seq = snapshot.OrderSeq
	return nil
}

// publish delivers a committed call's event trail. The books and the
// ledgers have already moved by the time the sink sees the trail, so a
// sink failure cannot roll the call back; it is logged and the call
// still succeeds.
func (ins *Instrument) publish(ctx context.Context, events []eventv1.Event) {
	if err := ins.sink.Publish(ctx, events...); err != nil {
		ins.logger.ErrorContext(ctx, err,
			logger.Field{Key: "pair", Value: ins.pair},
			logger.Field{Key: "events", Value: len(events)},
		)
	}
}

func (ins *Instrument) book(side orderbookv1.Side) *orderbook.Book {
	if side == orderbookv1.SideBid {
		return ins.bids
	}
	return ins.asks
}

// nextOrderID assigns a fresh id; sequence numbers only ever grow, so
// ids are never reused.
func (ins *Instrument) nextOrderID() orderbookv1.OrderID {
	ins.seq++
	return orderbookv1.NewOrderID(ins.pair, ins.seq)
}

// spotOrZero returns the side's best price, or 0 when the book is empty.
func (ins *Instrument) spotOrZero(side orderbookv1.Side) uint64 {
	price, err := ins.book(side).SpotPrice()
	if err != nil {
		return 0
	}
	return price
}

// appendSpotChanges appends a SpotPriceChanged event if the side's best
// price differs from before; price 0 marks an emptied side.
func (ins *Instrument) appendSpotChanges(events []eventv1.Event, side orderbookv1.Side, before uint64) []eventv1.Event {
	after := ins.spotOrZero(side)
	if after == before {
		return events
	}
	return append(events, eventv1.SpotPriceChanged{Side: side, NewPrice: after})
}

func (ins *Instrument) ownerAdd(trader orderbookv1.Account, id orderbookv1.OrderID) {
	owned, ok := ins.traders[trader]
	if !ok {
		owned = orderedset.New[orderbookv1.OrderID]()
		ins.traders[trader] = owned
	}
	owned.Add(id)
}

func (ins *Instrument) ownerRemove(trader orderbookv1.Account, id orderbookv1.OrderID) {
	owned, ok := ins.traders[trader]
	if !ok {
		return
	}
	owned.Remove(id)
	if owned.Len() == 0 {
		delete(ins.traders, trader)
	}
}
