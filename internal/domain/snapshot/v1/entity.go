package snapshotv1

import (
	orderbookv1 "github.com/rimrakhimov/inno-dex/internal/domain/orderbook/v1"
)

// Snapshot captures the resting state of an instrument at a point in time.
type Snapshot struct {
	Pair        string      `json:"pair"`
	OrderSeq    uint64      `json:"orderSeq"`
	OrderOffset int64       `json:"orderOffset"`
	Orders      []BookOrder `json:"orders"`
}

// BookOrder is one resting order inside a snapshot. Orders are listed in
// match priority per side, so replaying them in order reconstructs the
// time priority of every price level.
type BookOrder struct {
	OrderID orderbookv1.OrderID `json:"orderId"`
	Price   uint64              `json:"price"`
	Qty     uint64              `json:"qty"`
	Bidder  orderbookv1.Account `json:"bidder"`
	Side    orderbookv1.Side    `json:"side"`
}
