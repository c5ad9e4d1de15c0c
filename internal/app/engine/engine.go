// Package engine runs the exchange service loop: it restores the
// matching engine from the latest snapshot, consumes trading requests
// from the order topic and snapshots the book periodically so a restart
// resumes from where the last snapshot left off.
package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap/zapcore"

	instrumentv1 "github.com/rimrakhimov/inno-dex/internal/domain/instrument/v1"
	orderbookv1 "github.com/rimrakhimov/inno-dex/internal/domain/orderbook/v1"
	orderreaderv1 "github.com/rimrakhimov/inno-dex/internal/domain/orderreader/v1"
	snapshotv1 "github.com/rimrakhimov/inno-dex/internal/domain/snapshot/v1"
	"github.com/rimrakhimov/inno-dex/pkg/errors"
	"github.com/rimrakhimov/inno-dex/pkg/logger"
)

// Engine consumes trading requests and drives the instrument.
type Engine struct {
	instrument    instrumentv1.Instrument
	orderReader   orderreaderv1.OrderReader
	snapshotStore snapshotv1.Store
	logger        *logger.Logger

	mu                 sync.RWMutex
	orderOffset        int64
	lastSnapshotOffset int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	snapshotInterval    time.Duration
	snapshotOffsetDelta int64
}

// NewEngine creates an engine with the default options.
func NewEngine(
	instrument instrumentv1.Instrument,
	orderReader orderreaderv1.OrderReader,
	snapshotStore snapshotv1.Store,
	log *logger.Logger,
) (*Engine, error) {
	return NewEngineWithOptions(instrument, orderReader, snapshotStore, log, DefaultEngineOptions())
}

// NewEngineWithOptions creates an engine and restores the instrument
// from the latest stored snapshot, if any.
func NewEngineWithOptions(
	instrument instrumentv1.Instrument,
	orderReader orderreaderv1.OrderReader,
	snapshotStore snapshotv1.Store,
	log *logger.Logger,
	options *Options,
) (*Engine, error) {
	e := &Engine{
		instrument:    instrument,
		orderReader:   orderReader,
		snapshotStore: snapshotStore,
		logger:        log,

		snapshotInterval:    options.SnapshotInterval,
		snapshotOffsetDelta: options.SnapshotOffsetDelta,
		orderOffset:         -1,
	}

	if err := e.loadSnapshot(context.Background()); err != nil {
		return nil, errors.NewTracer("engine_restore_error").Wrap(err)
	}

	return e, nil
}

// Start launches the processing routines.
func (e *Engine) Start(ctx context.Context) error {
	e.ctx, e.cancel = context.WithCancel(ctx)

	e.wg.Add(2)
	go e.runOrderProcessor()
	go e.runSnapshotManager()

	e.logger.Info("engine started", logger.Field{
		Key:   "pair",
		Value: e.instrument.Pair(),
	})

	return nil
}

// Stop gracefully shuts down the engine, bounded by ctx.
func (e *Engine) Stop(ctx context.Context) error {
	if e.cancel != nil {
		e.cancel()
	}

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.logger.Info("engine stopped gracefully")
		return nil
	case <-ctx.Done():
		e.logger.Warn("engine stop timeout exceeded")
		return ctx.Err()
	}
}

// runOrderProcessor reads and applies trading requests in arrival order.
func (e *Engine) runOrderProcessor() {
	defer e.wg.Done()

	e.logger.Info("starting order processor", logger.Field{
		Key:   "pair",
		Value: e.instrument.Pair(),
	})

	// Resume after the last request the snapshot covers.
	currentOffset := e.getOrderOffset()
	if currentOffset > 0 {
		currentOffset++
	}

	if err := e.orderReader.SetOffset(currentOffset); err != nil {
		e.logger.GetZap().Fatal("failed to set offset for order reader", zapcore.Field{
			Key:       "error",
			Interface: err,
		})
	}

	for {
		select {
		case <-e.ctx.Done():
			e.logger.Info("order processor shutting down")
			e.orderReader.Close()
			return
		default:
			msg, request, err := e.orderReader.ReadMessage(e.ctx)
			if err != nil {
				e.logger.ErrorContext(e.ctx, err, logger.Field{
					Key:   "action",
					Value: "read_order_message",
				})
				time.Sleep(100 * time.Millisecond)
				continue
			}

			if err := e.orderReader.CommitMessages(e.ctx, msg); err != nil {
				e.logger.ErrorContext(e.ctx, err, logger.Field{
					Key:   "action",
					Value: "commit_order_message",
				})
			}

			// A rejected request is final for its sender; it never
			// blocks the stream.
			if err := e.processOrder(e.ctx, request); err != nil {
				e.logger.ErrorContext(e.ctx, err,
					logger.Field{Key: "action", Value: "process_order"},
					logger.Field{Key: "trader", Value: request.Trader},
					logger.Field{Key: "requestAction", Value: request.Action},
					logger.Field{Key: "offset", Value: msg.Offset},
				)
			}

			e.setOrderOffset(msg.Offset)
		}
	}
}

// runSnapshotManager snapshots the book periodically once enough
// requests have been applied since the last snapshot.
func (e *Engine) runSnapshotManager() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.snapshotInterval)
	defer ticker.Stop()

	e.logger.Info("starting snapshot manager")

	for {
		select {
		case <-e.ctx.Done():
			e.logger.Info("snapshot manager shutting down")
			return
		case <-ticker.C:
			if e.shouldCreateSnapshot() {
				e.createAndStoreSnapshot()
			}
		}
	}
}

// processOrder applies a single trading request to the instrument.
func (e *Engine) processOrder(ctx context.Context, request *orderreaderv1.OrderRequest) error {
	trader := orderbookv1.Account(request.Trader)

	switch request.Action {
	case orderreaderv1.ActionLimit:
		_, err := e.instrument.LimitOrder(ctx, trader, request.ToBuy, request.Price, request.Qty)
		return err
	case orderreaderv1.ActionMarket:
		_, err := e.instrument.MarketOrder(ctx, trader, request.ToBuy, request.Qty)
		return err
	case orderreaderv1.ActionCancel:
		var id orderbookv1.OrderID
		if err := id.UnmarshalText([]byte(request.OrderID)); err != nil {
			return errors.NewTracer("order_id_parse_error").Wrap(err)
		}
		return e.instrument.CancelOrder(ctx, trader, id)
	default:
		return errors.NewTracer("unknown_order_action")
	}
}

func (e *Engine) shouldCreateSnapshot() bool {
	e.mu.RLock()
	currentOffset := e.orderOffset
	lastSnapshotOffset := e.lastSnapshotOffset
	e.mu.RUnlock()

	if currentOffset <= 0 {
		return false
	}

	return currentOffset-lastSnapshotOffset >= e.snapshotOffsetDelta
}

func (e *Engine) createAndStoreSnapshot() {
	currentOffset := e.getOrderOffset()

	snapshot := e.instrument.Snapshot()
	snapshot.OrderOffset = currentOffset

	if err := e.snapshotStore.Store(e.ctx, snapshot); err != nil {
		e.logger.ErrorContext(e.ctx, err, logger.Field{
			Key:   "action",
			Value: "store_snapshot",
		})
		return
	}

	e.setLastSnapshotOffset(currentOffset)
	e.logger.Info("snapshot stored",
		logger.Field{Key: "pair", Value: e.instrument.Pair()},
		logger.Field{Key: "offset", Value: currentOffset},
	)
}

func (e *Engine) getOrderOffset() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.orderOffset
}

func (e *Engine) setOrderOffset(offset int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.orderOffset = offset
}

func (e *Engine) getLastSnapshotOffset() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastSnapshotOffset
}

func (e *Engine) setLastSnapshotOffset(offset int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSnapshotOffset = offset
}

// loadSnapshot restores the instrument from the latest stored snapshot.
func (e *Engine) loadSnapshot(ctx context.Context) error {
	snapshot, err := e.snapshotStore.Load(ctx)
	if err != nil {
		return err
	}

	if snapshot == nil {
		return nil
	}

	if err := e.instrument.Restore(snapshot); err != nil {
		return err
	}

	e.mu.Lock()
	e.orderOffset = snapshot.OrderOffset
	e.lastSnapshotOffset = snapshot.OrderOffset
	e.mu.Unlock()

	e.logger.Info("instrument restored from snapshot",
		logger.Field{Key: "pair", Value: snapshot.Pair},
		logger.Field{Key: "orderOffset", Value: snapshot.OrderOffset},
		logger.Field{Key: "orders", Value: len(snapshot.Orders)},
	)

	return nil
}

// GetOrderOffset returns the offset of the last applied request.
func (e *Engine) GetOrderOffset() int64 {
	return e.getOrderOffset()
}

// GetLastSnapshotOffset returns the offset covered by the last stored snapshot.
func (e *Engine) GetLastSnapshotOffset() int64 {
	return e.getLastSnapshotOffset()
}
