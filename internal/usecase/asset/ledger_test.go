package asset

import (
	"context"
	"testing"

	assetv1 "github.com/rimrakhimov/inno-dex/internal/domain/asset/v1"
	orderbookv1 "github.com/rimrakhimov/inno-dex/internal/domain/orderbook/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const alice = orderbookv1.Account("alice")

func TestLedger_TransferIn(t *testing.T) {
	ctx := context.Background()

	t.Run("moves funds into escrow", func(t *testing.T) {
		l := NewLedger("TST1")
		l.Mint(alice, 100)
		l.Approve(alice, 100)

		require.NoError(t, l.TransferIn(ctx, alice, 40))
		assert.Equal(t, uint64(60), l.BalanceOf(alice))
		assert.Equal(t, uint64(40), l.Escrowed())
	})

	t.Run("fails on insufficient balance", func(t *testing.T) {
		l := NewLedger("TST1")
		l.Mint(alice, 10)
		l.Approve(alice, 100)

		err := l.TransferIn(ctx, alice, 40)
		assert.ErrorIs(t, err, assetv1.ErrInsufficientBalance)
		assert.Equal(t, uint64(10), l.BalanceOf(alice), "failed transfer must not move funds")
		assert.Zero(t, l.Escrowed())
	})

	t.Run("fails on insufficient allowance", func(t *testing.T) {
		l := NewLedger("TST1")
		l.Mint(alice, 100)
		l.Approve(alice, 10)

		err := l.TransferIn(ctx, alice, 40)
		assert.ErrorIs(t, err, assetv1.ErrInsufficientAllowance)
		assert.Equal(t, uint64(100), l.BalanceOf(alice))
	})

	t.Run("consumes allowance", func(t *testing.T) {
		l := NewLedger("TST1")
		l.Mint(alice, 100)
		l.Approve(alice, 50)

		require.NoError(t, l.TransferIn(ctx, alice, 30))
		err := l.TransferIn(ctx, alice, 30)
		assert.ErrorIs(t, err, assetv1.ErrInsufficientAllowance)
	})
}

func TestLedger_TransferOut(t *testing.T) {
	ctx := context.Background()

	l := NewLedger("TST2")
	l.Mint(alice, 100)
	l.Approve(alice, 100)
	require.NoError(t, l.TransferIn(ctx, alice, 70))

	require.NoError(t, l.TransferOut(ctx, alice, 30))
	assert.Equal(t, uint64(60), l.BalanceOf(alice))
	assert.Equal(t, uint64(40), l.Escrowed())

	err := l.TransferOut(ctx, alice, 41)
	assert.Error(t, err, "releasing more than escrowed must fail")
}
