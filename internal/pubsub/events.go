// Package pubsub provides the generic publish/subscribe channel used as the
// single notification path between the desktop core and the workspace shell.
package pubsub

import (
	"context"
	"time"
)

// Event wraps a typed payload with the time it was published.
type Event[T any] struct {
	Payload T
	At      time.Time
}

// Subscriber hands out subscription channels for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher fans a typed payload out to all subscribers.
type Publisher[T any] interface {
	Publish(payload T)
}
