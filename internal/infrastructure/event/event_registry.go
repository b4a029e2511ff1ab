package event

import (
	"github.com/kellertobias/servobill-sub000/internal/domain/billing"
	"github.com/kellertobias/servobill-sub000/internal/domain/catalog"
	"github.com/kellertobias/servobill-sub000/internal/domain/finance"
	"github.com/kellertobias/servobill-sub000/internal/domain/partner"
)

// RegisterAllEvents registers every domain event type with the serializer.
// An event type missing here cannot leave the outbox: deserialization fails
// and the entry retries until it dead-letters.
func RegisterAllEvents(serializer *EventSerializer) {
	// billing
	serializer.Register(billing.EventTypeInvoicePdfRequested, &billing.InvoicePdfRequestedEvent{})
	serializer.Register(billing.EventTypeInvoiceSend, &billing.InvoiceSendEvent{})
	serializer.Register(billing.EventTypeInvoiceSendLater, &billing.InvoiceSendLaterEvent{})
	serializer.Register(billing.EventTypeInvoiceScheduled, &billing.InvoiceScheduledEvent{})
	serializer.Register(billing.EventTypeInvoicePublished, &billing.InvoicePublishedEvent{})
	serializer.Register(billing.EventTypeInvoicePayment, &billing.InvoicePaymentEvent{})
	serializer.Register(billing.EventTypeInvoicePaid, &billing.InvoicePaidEvent{})
	serializer.Register(billing.EventTypeInvoiceCancelled, &billing.InvoiceCancelledEvent{})
	serializer.Register(billing.EventTypeInvoiceDatesChanged, &billing.InvoiceDatesChangedEvent{})

	// partner
	serializer.Register(partner.EventTypeCustomerCreated, &partner.CustomerCreatedEvent{})
	serializer.Register(partner.EventTypeCustomerUpdated, &partner.CustomerUpdatedEvent{})

	// catalog
	serializer.Register(catalog.EventTypeProductCreated, &catalog.ProductCreatedEvent{})
	serializer.Register(catalog.EventTypeProductUpdated, &catalog.ProductUpdatedEvent{})

	// finance
	serializer.Register(finance.EventTypeExpenseCreated, &finance.ExpenseCreatedEvent{})
	serializer.Register(finance.EventTypeExpenseUpdated, &finance.ExpenseUpdatedEvent{})
}
