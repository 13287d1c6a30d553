package shared

import "context"

// EventHandler reacts to console events after the state change that raised them
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the events the handler wants; empty means all of them
	EventTypes() []string
}

// EventPublisher is how the console service emits events. Publishing never
// fails the operation that produced the events.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventBus is a publisher that handlers can subscribe to, with a lifecycle
// owned by cmd/server
type EventBus interface {
	EventPublisher
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
