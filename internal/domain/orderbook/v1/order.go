package orderbookv1

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// Side represents the side of the book an order belongs to.
type Side int

const (
	// SideBid represents a buy order.
	SideBid Side = iota
	// SideAsk represents a sell order.
	SideAsk
)

// String returns the textual name of the side.
func (s Side) String() string {
	switch s {
	case SideBid:
		return "bid"
	case SideAsk:
		return "ask"
	default:
		return fmt.Sprintf("side(%d)", int(s))
	}
}

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == SideBid {
		return SideAsk
	}
	return SideBid
}

// OrderID is an opaque 32-byte order identifier. Ids are never reused.
type OrderID [32]byte

// NewOrderID derives an order id from the instrument pair and a
// monotonically increasing sequence number.
func NewOrderID(pair string, seq uint64) OrderID {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], seq)

	h := sha256.New()
	h.Write([]byte(pair))
	h.Write(buf[:])

	var id OrderID
	copy(id[:], h.Sum(nil))
	return id
}

// String returns the hex representation of the id.
func (id OrderID) String() string {
	return "0x" + hex.EncodeToString(id[:])
}

// MarshalText implements encoding.TextMarshaler so ids survive JSON snapshots.
func (id OrderID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *OrderID) UnmarshalText(text []byte) error {
	s := string(text)
	if len(s) >= 2 && s[:2] == "0x" {
		s = s[2:]
	}

	raw, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	if len(raw) != len(id) {
		return fmt.Errorf("invalid order id length %d", len(raw))
	}

	copy(id[:], raw)
	return nil
}

// Account identifies a trader.
type Account string

// Order represents a single resting order in the order book.
//
// Everything but Qty is immutable once the order is placed: fills only ever
// decrease Qty, and a full fill or a cancellation deletes the order.
type Order struct {
	ID     OrderID `json:"id"`
	Price  uint64  `json:"price"`
	Qty    uint64  `json:"qty"`
	Bidder Account `json:"bidder"`
	Side   Side    `json:"side"`
}

// NewOrder creates a new order with the given parameters.
func NewOrder(id OrderID, price, qty uint64, bidder Account, side Side) *Order {
	return &Order{
		ID:     id,
		Price:  price,
		Qty:    qty,
		Bidder: bidder,
		Side:   side,
	}
}

// IsBid checks if the order is a bid (buy) order.
func (o *Order) IsBid() bool {
	return o.Side == SideBid
}

// IsAsk checks if the order is an ask (sell) order.
func (o *Order) IsAsk() bool {
	return o.Side == SideAsk
}

// Notional returns the escrowed amount backing the order remainder:
// price times remaining quantity of the quote asset for a bid, the
// remaining quantity of the base asset for an ask.
func (o *Order) Notional() uint64 {
	if o.IsBid() {
		return o.Price * o.Qty
	}
	return o.Qty
}

// Record is the aggregated read view of one populated price level: the
// quantity is summed over all orders resting at that price.
type Record struct {
	Price uint64 `json:"price"`
	Qty   uint64 `json:"qty"`
	Side  Side   `json:"side"`
}
