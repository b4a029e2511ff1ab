package shared

import (
	"context"

	"github.com/google/uuid"
)

// AggregateRoot is the base interface for all aggregate roots
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
	PurgeEvents(ctx context.Context, deliver EventDeliverer) error
}

// EventDeliverer delivers a single buffered domain event to the message bus
// (or, in the persistence layer, to the transactional outbox).
type EventDeliverer func(ctx context.Context, event DomainEvent) error

// BaseAggregateRoot provides common fields for aggregate roots.
//
// It buffers not-yet-delivered domain events in memory. The buffer and the
// delivered set live only on the loaded instance: they deduplicate delivery
// within the lifetime of this object, not across reloads, so the overall
// delivery contract is at-least-once.
type BaseAggregateRoot struct {
	BaseEntity
	Version      int                    `gorm:"not null;default:1"`
	domainEvents []DomainEvent          `gorm:"-"`
	delivered    map[uuid.UUID]struct{} `gorm:"-"`
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion increments the version number
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// AddDomainEvent buffers a domain event for delivery after the next save
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns all pending domain events
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents clears the pending domain events
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}

// PurgeEvents delivers the buffered events in append order.
//
// Each event id is recorded in the delivered set before deliver is invoked,
// so a failed delivery is not re-attempted by a later purge on this instance.
// A deliver error is returned immediately and the buffer is retained; only a
// fully successful pass clears it. Calling PurgeEvents again on the same
// instance skips events that were already handed to deliver.
func (a *BaseAggregateRoot) PurgeEvents(ctx context.Context, deliver EventDeliverer) error {
	if a.delivered == nil {
		a.delivered = make(map[uuid.UUID]struct{})
	}
	for _, event := range a.domainEvents {
		if _, ok := a.delivered[event.EventID()]; ok {
			continue
		}
		a.delivered[event.EventID()] = struct{}{}
		if err := deliver(ctx, event); err != nil {
			return err
		}
	}
	a.domainEvents = nil
	return nil
}

// NewBaseAggregateRoot creates a new base aggregate root
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity:   NewBaseEntity(),
		Version:      1,
		domainEvents: make([]DomainEvent, 0),
	}
}

// TenantAggregateRoot extends BaseAggregateRoot with multi-tenant support
type TenantAggregateRoot struct {
	BaseAggregateRoot
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid;index"`
}

// NewTenantAggregateRoot creates a new tenant-scoped aggregate root
func NewTenantAggregateRoot(tenantID uuid.UUID) TenantAggregateRoot {
	return TenantAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		TenantID:          tenantID,
	}
}

// SetCreatedBy sets the creator user ID
func (t *TenantAggregateRoot) SetCreatedBy(userID uuid.UUID) {
	t.CreatedBy = &userID
}
