package orderreaderv1

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// OrderReader reads trading requests from the order topic.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=orderreaderv1_mock
type OrderReader interface {
	// ReadMessage reads the next message and its parsed request.
	ReadMessage(ctx context.Context) (kafka.Message, *OrderRequest, error)
	// SetOffset positions the reader on the topic.
	SetOffset(offset int64) error
	// CommitMessages acknowledges processed messages.
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	// Close closes the reader.
	Close() error
}
