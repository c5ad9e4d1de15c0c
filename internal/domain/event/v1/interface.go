package eventv1

import "context"

// Sink receives the event trail of a completed call.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=eventv1_mock
type Sink interface {
	// Publish appends the events of one call to the sink, in order.
	Publish(ctx context.Context, events ...Event) error
}
