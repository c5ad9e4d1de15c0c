package assetv1

import (
	"context"
	"errors"

	orderbookv1 "github.com/rimrakhimov/inno-dex/internal/domain/orderbook/v1"
)

var (
	// ErrInsufficientBalance is returned when a transfer exceeds the payer's balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInsufficientAllowance is returned when a transfer exceeds the approved allowance.
	ErrInsufficientAllowance = errors.New("insufficient allowance")
)

// Asset is the escrow capability an instrument holds over one token.
//
// TransferIn pulls funds from a trader into escrow and fails with
// ErrInsufficientBalance or ErrInsufficientAllowance; TransferOut releases
// escrowed funds back to a trader.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=assetv1_mock
type Asset interface {
	// Symbol returns the token symbol, e.g. "TST1".
	Symbol() string
	// TransferIn moves amount from the trader's balance into escrow.
	TransferIn(ctx context.Context, from orderbookv1.Account, amount uint64) error
	// TransferOut releases amount from escrow to the trader.
	TransferOut(ctx context.Context, to orderbookv1.Account, amount uint64) error
}
