package partner

import (
	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
)

// Event type constants for the partner context
const (
	EventTypeCustomerCreated = "customer.created"
	EventTypeCustomerUpdated = "customer.updated"
	EventTypeCustomerDeleted = "customer.deleted"
)

const aggregateTypeCustomer = "Customer"

// CustomerCreatedEvent is published when a customer is created
type CustomerCreatedEvent struct {
	shared.BaseDomainEvent
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// NewCustomerCreatedEvent creates a customer created event
func NewCustomerCreatedEvent(customer *Customer) *CustomerCreatedEvent {
	return &CustomerCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerCreated, aggregateTypeCustomer, customer.GetID(), customer.TenantID),
		Name:            customer.Name,
		Email:           customer.Email,
	}
}

// CustomerUpdatedEvent is published when a customer is updated
type CustomerUpdatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewCustomerUpdatedEvent creates a customer updated event
func NewCustomerUpdatedEvent(customer *Customer) *CustomerUpdatedEvent {
	return &CustomerUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerUpdated, aggregateTypeCustomer, customer.GetID(), customer.TenantID),
		Name:            customer.Name,
	}
}
