// Package eventpublisher delivers the per-call event trail to a Kafka
// topic. Each event ships in an envelope carrying a ULID, so consumers
// can dedupe and order events even across engine restarts.
package eventpublisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/segmentio/kafka-go"

	eventv1 "github.com/rimrakhimov/inno-dex/internal/domain/event/v1"
	"github.com/rimrakhimov/inno-dex/pkg/config"
	"github.com/rimrakhimov/inno-dex/pkg/errors"
	"github.com/rimrakhimov/inno-dex/pkg/logger"
)

// Envelope wraps one event with its identity and emission metadata.
type Envelope struct {
	ID        string          `json:"id"`
	Pair      string          `json:"pair"`
	Kind      eventv1.Kind    `json:"kind"`
	EmittedAt time.Time       `json:"emittedAt"`
	Payload   json.RawMessage `json:"payload"`
}

// Publisher writes event envelopes to the events topic. It implements
// the event sink consumed by the matching engine.
type Publisher struct {
	pair        string
	kafkaWriter *kafka.Writer
	logger      *logger.Logger
}

var _ eventv1.Sink = (*Publisher)(nil)

// NewPublisher creates a Kafka publisher for the events topic.
func NewPublisher(cfg config.EventPublisherConfig, pair string, log *logger.Logger) *Publisher {
	kafkaWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
	})

	return &Publisher{
		pair:        pair,
		kafkaWriter: kafkaWriter,
		logger:      log,
	}
}

// Publish wraps each event in an envelope and writes the whole trail in
// one batch, preserving emission order.
func (p *Publisher) Publish(ctx context.Context, events ...eventv1.Event) error {
	if len(events) == 0 {
		return nil
	}

	now := time.Now().UTC()
	msgs := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			p.logger.ErrorContext(ctx, err, logger.Field{Key: "kind", Value: event.Kind()})
			return errors.NewTracer("event_marshal_error").Wrap(err)
		}

		envelope := Envelope{
			ID:        ulid.Make().String(),
			Pair:      p.pair,
			Kind:      event.Kind(),
			EmittedAt: now,
			Payload:   payload,
		}
		value, err := json.Marshal(envelope)
		if err != nil {
			p.logger.ErrorContext(ctx, err, logger.Field{Key: "kind", Value: event.Kind()})
			return errors.NewTracer("envelope_marshal_error").Wrap(err)
		}

		msgs = append(msgs, kafka.Message{
			Key:   []byte(p.pair),
			Value: value,
		})
	}

	if err := p.kafkaWriter.WriteMessages(ctx, msgs...); err != nil {
		p.logger.ErrorContext(ctx, err,
			logger.Field{Key: "pair", Value: p.pair},
			logger.Field{Key: "events", Value: len(msgs)},
		)
		return errors.NewTracer("event_publish_error").Wrap(err)
	}
	return nil
}

// Close flushes and closes the underlying Kafka writer.
func (p *Publisher) Close() error {
	return p.kafkaWriter.Close()
}
