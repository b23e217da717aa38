package shared

import "context"

// EventHandler reacts to published domain events, e.g. queueing the order
// notification email on OrderPlaced
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the types the handler subscribes to by default
	EventTypes() []string
}

// EventPublisher is what application services depend on. Publishing never
// fails the operation that produced the events.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventBus is the process-wide publisher with subscription and lifecycle
type EventBus interface {
	EventPublisher
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
