// Package snapshot persists order book snapshots in Redis, keyed by pair.
package snapshot

import (
	"context"
	"encoding/json"

	snapshotv1 "github.com/rimrakhimov/inno-dex/internal/domain/snapshot/v1"
	"github.com/rimrakhimov/inno-dex/pkg/errors"
	"github.com/rimrakhimov/inno-dex/pkg/logger"
	"github.com/rimrakhimov/inno-dex/pkg/redis"
)

// Store reads and writes snapshots for one pair.
type Store struct {
	pair        string
	logger      *logger.Logger
	redisclient redis.Client
}

var _ snapshotv1.Store = (*Store)(nil)

// NewStore creates a snapshot store backed by the given Redis client.
func NewStore(redisclient redis.Client, pair string, log *logger.Logger) *Store {
	return &Store{
		pair:        pair,
		redisclient: redisclient,
		logger:      log,
	}
}

// Store serializes the snapshot and writes it under the pair key. The
// previous snapshot is overwritten.
func (s *Store) Store(ctx context.Context, snapshot *snapshotv1.Snapshot) error {
	buf, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{Key: "pair", Value: s.pair})
		return errors.NewTracer("snapshot_marshal_error").Wrap(err)
	}

	if err := s.redisclient.Set(ctx, s.pair, buf, 0); err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{Key: "pair", Value: s.pair})
		return errors.NewTracer("snapshot_store_error").Wrap(err)
	}

	s.logger.InfoContext(ctx, "snapshot stored",
		logger.Field{Key: "pair", Value: s.pair},
		logger.Field{Key: "orderSeq", Value: snapshot.OrderSeq},
		logger.Field{Key: "orderOffset", Value: snapshot.OrderOffset},
		logger.Field{Key: "orders", Value: len(snapshot.Orders)},
	)
	return nil
}

// Load reads the pair's snapshot. It returns nil without error when no
// snapshot has been stored yet.
func (s *Store) Load(ctx context.Context) (*snapshotv1.Snapshot, error) {
	data, err := s.redisclient.Get(ctx, s.pair)
	if err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{Key: "pair", Value: s.pair})
		return nil, errors.NewTracer("snapshot_load_error").Wrap(err)
	}

	if data == "" {
		s.logger.WarnContext(ctx, "no snapshot found", logger.Field{Key: "pair", Value: s.pair})
		return nil, nil
	}

	var snapshot snapshotv1.Snapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{Key: "pair", Value: s.pair})
		return nil, errors.NewTracer("snapshot_unmarshal_error").Wrap(err)
	}

	return &snapshot, nil
}
