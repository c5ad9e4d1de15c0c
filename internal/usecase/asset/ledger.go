// Package asset provides an in-memory token ledger implementing the
// escrow capability consumed by an instrument. It mirrors the
// approve/transferFrom flow of a mintable token: traders hold balances,
// grant the instrument an allowance, and the instrument pulls funds into
// escrow when orders are placed.
package asset

import (
	"context"
	"fmt"
	"sync"

	assetv1 "github.com/rimrakhimov/inno-dex/internal/domain/asset/v1"
	orderbookv1 "github.com/rimrakhimov/inno-dex/internal/domain/orderbook/v1"
)

// Ledger is an in-memory implementation of the Asset capability.
type Ledger struct {
	symbol string

	mu         sync.Mutex
	balances   map[orderbookv1.Account]uint64
	allowances map[orderbookv1.Account]uint64
	escrowed   uint64
}

var _ assetv1.Asset = (*Ledger)(nil)

// NewLedger creates an empty ledger for the given token symbol.
func NewLedger(symbol string) *Ledger {
	return &Ledger{
		symbol:     symbol,
		balances:   make(map[orderbookv1.Account]uint64),
		allowances: make(map[orderbookv1.Account]uint64),
	}
}

// Symbol returns the token symbol.
func (l *Ledger) Symbol() string {
	return l.symbol
}

// Mint credits the account with new tokens.
func (l *Ledger) Mint(account orderbookv1.Account, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[account] += amount
}

// Approve sets the amount the instrument may pull from the account.
func (l *Ledger) Approve(account orderbookv1.Account, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.allowances[account] = amount
}

// BalanceOf returns the free (non-escrowed) balance of the account.
func (l *Ledger) BalanceOf(account orderbookv1.Account) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[account]
}

// Escrowed returns the total amount currently held in escrow.
func (l *Ledger) Escrowed() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.escrowed
}

// TransferIn moves amount from the trader's balance into escrow. The
// whole transfer fails if either the balance or the allowance is short;
// no partial movement happens.
func (l *Ledger) TransferIn(ctx context.Context, from orderbookv1.Account, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balances[from] < amount {
		return assetv1.ErrInsufficientBalance
	}
	if l.allowances[from] < amount {
		return assetv1.ErrInsufficientAllowance
	}

	l.balances[from] -= amount
	l.allowances[from] -= amount
	l.escrowed += amount
	return nil
}

// TransferOut releases amount from escrow to the trader.
func (l *Ledger) TransferOut(ctx context.Context, to orderbookv1.Account, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.escrowed < amount {
		// An instrument never releases more than it escrowed; this is an
		// accounting invariant violation, not a caller error.
		return fmt.Errorf("escrow underflow on %s: have %d, release %d", l.symbol, l.escrowed, amount)
	}

	l.escrowed -= amount
	l.balances[to] += amount
	return nil
}
