package shared

import "context"

// EventHandler consumes domain events delivered by the bus
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the event types the handler wants; an empty
	// slice subscribes it to everything
	EventTypes() []string
}

// EventPublisher delivers domain events to subscribed handlers
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber manages handler registrations
type EventSubscriber interface {
	// Subscribe registers a handler; with no explicit types the
	// handler's own EventTypes decide what it receives
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}

// EventBus is the full publish/subscribe surface with lifecycle hooks
type EventBus interface {
	EventPublisher
	EventSubscriber
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// OutboxEventSaver writes domain events into the outbox table inside the
// transaction that also commits the aggregate, so state and events can
// never diverge. Redelivery is owned by the outbox processor from then on.
type OutboxEventSaver interface {
	// SaveEvents stores events in the caller's transaction; txProvider
	// is expected to be a *gorm.DB
	SaveEvents(ctx context.Context, txProvider interface{}, events ...DomainEvent) error
}
