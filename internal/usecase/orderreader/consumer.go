package orderreader

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/rimrakhimov/inno-dex/pkg/config"
	"github.com/rimrakhimov/inno-dex/pkg/logger"

	orderreaderv1 "github.com/rimrakhimov/inno-dex/internal/domain/orderreader/v1"
)

// Reader consumes trading requests from the order topic. It reads a
// single partition directly rather than joining a consumer group, so
// the engine can seek to the offset recorded in a snapshot; consumed
// offsets are tracked through snapshots, not broker commits.
type Reader struct {
	kafkaReader *kafka.Reader
	logger      *logger.Logger
}

var _ orderreaderv1.OrderReader = (*Reader)(nil)

// NewReader creates a Kafka reader positioned at the end of the order topic.
func NewReader(cfg config.KafkaConfig, log *logger.Logger) *Reader {
	kafkaReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		Partition:   0,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.LastOffset,
	})

	return &Reader{
		kafkaReader: kafkaReader,
		logger:      log,
	}
}

func (r *Reader) logError(err error, operation string) {
	r.logger.Error(err,
		logger.Field{Key: "operation", Value: operation},
	)
}

// SetOffset positions the reader on the partition.
func (r *Reader) SetOffset(offset int64) error {
	if err := r.kafkaReader.SetOffset(offset); err != nil {
		r.logError(err, "SetOffset")
		return err
	}
	return nil
}

// ReadMessage reads the next message and parses it as an OrderRequest.
func (r *Reader) ReadMessage(ctx context.Context) (kafka.Message, *orderreaderv1.OrderRequest, error) {
	msg, err := r.kafkaReader.ReadMessage(ctx)
	if err != nil {
		r.logError(err, "ReadMessage")
		return kafka.Message{}, nil, err
	}

	var request orderreaderv1.OrderRequest
	if err := json.Unmarshal(msg.Value, &request); err != nil {
		r.logError(err, "UnmarshalOrderRequest")
		return kafka.Message{}, nil, err
	}

	request.Offset = msg.Offset

	r.logger.DebugContext(ctx, "order request read",
		logger.Field{Key: "action", Value: request.Action},
		logger.Field{Key: "trader", Value: request.Trader},
		logger.Field{Key: "toBuy", Value: request.ToBuy},
		logger.Field{Key: "price", Value: request.Price},
		logger.Field{Key: "qty", Value: request.Qty},
		logger.Field{Key: "offset", Value: msg.Offset},
	)

	return msg, &request, nil
}

// CommitMessages is a no-op for a partition reader; progress is
// persisted through the snapshot's order offset instead.
func (r *Reader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	return nil
}

// Close closes the underlying Kafka reader.
func (r *Reader) Close() error {
	if err := r.kafkaReader.Close(); err != nil {
		r.logError(err, "Close")
		return err
	}
	return nil
}
