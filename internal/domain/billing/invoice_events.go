package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
)

// Event type constants used on the wire and in the outbox
const (
	EventTypeInvoicePdfRequested = "invoice.pdf"
	EventTypeInvoiceSend         = "invoice.send"
	EventTypeInvoiceSendLater    = "invoice.later"
	EventTypeInvoiceScheduled    = "invoice.scheduled"
	EventTypeInvoicePublished    = "invoice.published"
	EventTypeInvoicePayment      = "invoice.payment"
	EventTypeInvoicePaid         = "InvoicePaid"
	EventTypeInvoiceCancelled    = "InvoiceCancelled"
	EventTypeInvoiceDatesChanged = "InvoiceDatesChanged"
)

const aggregateTypeInvoice = "Invoice"

// InvoicePdfRequestedEvent asks the render pipeline to produce a PDF for the
// document content identified by ForContentHash.
type InvoicePdfRequestedEvent struct {
	shared.BaseDomainEvent
	InvoiceID      uuid.UUID `json:"invoiceId"`
	ForContentHash string    `json:"forContentHash"`
}

// NewInvoicePdfRequestedEvent creates a PDF render request event
func NewInvoicePdfRequestedEvent(tenantID, invoiceID uuid.UUID, contentHash string) *InvoicePdfRequestedEvent {
	return &InvoicePdfRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePdfRequested, aggregateTypeInvoice, invoiceID, tenantID),
		InvoiceID:       invoiceID,
		ForContentHash:  contentHash,
	}
}

// InvoiceSendEvent triggers the email delivery side effect for a submission
type InvoiceSendEvent struct {
	shared.BaseDomainEvent
	InvoiceID      uuid.UUID `json:"invoiceId"`
	SubmissionID   uuid.UUID `json:"submissionId"`
	ForContentHash string    `json:"forContentHash"`
}

// NewInvoiceSendEvent creates a send event for an email submission
func NewInvoiceSendEvent(tenantID, invoiceID, submissionID uuid.UUID, contentHash string) *InvoiceSendEvent {
	return &InvoiceSendEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceSend, aggregateTypeInvoice, invoiceID, tenantID),
		InvoiceID:       invoiceID,
		SubmissionID:    submissionID,
		ForContentHash:  contentHash,
	}
}

// InvoiceSendLaterEvent is the payload stored on a deferred job; when the job
// becomes due the scheduler re-drives it through the bus and the handler
// performs the actual send on behalf of UserName.
type InvoiceSendLaterEvent struct {
	shared.BaseDomainEvent
	InvoiceID    uuid.UUID `json:"invoiceId"`
	SubmissionID uuid.UUID `json:"submissionId"`
	UserName     string    `json:"userName"`
}

// NewInvoiceSendLaterEvent creates the deferred send payload
func NewInvoiceSendLaterEvent(tenantID, invoiceID, submissionID uuid.UUID, userName string) *InvoiceSendLaterEvent {
	return &InvoiceSendLaterEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceSendLater, aggregateTypeInvoice, invoiceID, tenantID),
		InvoiceID:       invoiceID,
		SubmissionID:    submissionID,
		UserName:        userName,
	}
}

// InvoiceScheduledEvent announces that a deferred send job was registered
type InvoiceScheduledEvent struct {
	shared.BaseDomainEvent
	InvoiceID          uuid.UUID `json:"invoiceId"`
	ScheduledSendJobID uuid.UUID `json:"scheduledSendJobId"`
}

// NewInvoiceScheduledEvent creates a scheduled-send announcement event
func NewInvoiceScheduledEvent(tenantID, invoiceID, jobID uuid.UUID) *InvoiceScheduledEvent {
	return &InvoiceScheduledEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeInvoiceScheduled, aggregateTypeInvoice, invoiceID, tenantID),
		InvoiceID:          invoiceID,
		ScheduledSendJobID: jobID,
	}
}

// InvoicePublishedEvent fires on the first transition from draft to sent.
// Downstream handlers use it to create the linked expenses of the items.
type InvoicePublishedEvent struct {
	shared.BaseDomainEvent
	InvoiceID  uuid.UUID    `json:"invoiceId"`
	Kind       DocumentKind `json:"kind"`
	Number     string       `json:"number"`
	TotalCents int64        `json:"totalCents"`
}

// NewInvoicePublishedEvent creates the first-send event
func NewInvoicePublishedEvent(tenantID, invoiceID uuid.UUID, kind DocumentKind, number string, totalCents int64) *InvoicePublishedEvent {
	return &InvoicePublishedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePublished, aggregateTypeInvoice, invoiceID, tenantID),
		InvoiceID:       invoiceID,
		Kind:            kind,
		Number:          number,
		TotalCents:      totalCents,
	}
}

// InvoicePaymentEvent fires for every recorded payment
type InvoicePaymentEvent struct {
	shared.BaseDomainEvent
	InvoiceID  uuid.UUID `json:"invoiceId"`
	CentsPaid  int64     `json:"centsPaid"`
	PaidVia    string    `json:"paidVia"`
	PaidAt     time.Time `json:"paidAt"`
	TotalCents int64     `json:"totalCents"`
}

// NewInvoicePaymentEvent creates a payment event
func NewInvoicePaymentEvent(tenantID, invoiceID uuid.UUID, centsPaid int64, paidVia string, paidAt time.Time, totalCents int64) *InvoicePaymentEvent {
	return &InvoicePaymentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePayment, aggregateTypeInvoice, invoiceID, tenantID),
		InvoiceID:       invoiceID,
		CentsPaid:       centsPaid,
		PaidVia:         paidVia,
		PaidAt:          paidAt,
		TotalCents:      totalCents,
	}
}

// InvoicePaidEvent fires once when accumulated payments reach the total
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID `json:"invoiceId"`
	PaidCents int64     `json:"paidCents"`
}

// NewInvoicePaidEvent creates a fully-paid event
func NewInvoicePaidEvent(tenantID, invoiceID uuid.UUID, paidCents int64) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaid, aggregateTypeInvoice, invoiceID, tenantID),
		InvoiceID:       invoiceID,
		PaidCents:       paidCents,
	}
}

// InvoiceCancelledEvent fires when a sent invoice is cancelled. Offers do not
// emit it; cancelling an offer has no downstream side effects.
type InvoiceCancelledEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID `json:"invoiceId"`
	Number    string    `json:"number"`
}

// NewInvoiceCancelledEvent creates a cancellation event
func NewInvoiceCancelledEvent(tenantID, invoiceID uuid.UUID, number string) *InvoiceCancelledEvent {
	return &InvoiceCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCancelled, aggregateTypeInvoice, invoiceID, tenantID),
		InvoiceID:       invoiceID,
		Number:          number,
	}
}

// InvoiceDatesChangedEvent fires when the dates of an already sent document
// change, so derived artifacts can be refreshed. It carries the totals as they
// stood at the change so consumers need not reload the aggregate.
type InvoiceDatesChangedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID  `json:"invoiceId"`
	InvoicedAt    *time.Time `json:"invoicedAt,omitempty"`
	OfferedAt     *time.Time `json:"offeredAt,omitempty"`
	DueAt         *time.Time `json:"dueAt,omitempty"`
	TotalCents    int64      `json:"totalCents"`
	TotalTaxCents int64      `json:"totalTaxCents"`
}

// NewInvoiceDatesChangedEvent creates a dates-changed event
func NewInvoiceDatesChangedEvent(tenantID, invoiceID uuid.UUID, invoicedAt, offeredAt, dueAt *time.Time, totalCents, totalTaxCents int64) *InvoiceDatesChangedEvent {
	return &InvoiceDatesChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceDatesChanged, aggregateTypeInvoice, invoiceID, tenantID),
		InvoiceID:       invoiceID,
		InvoicedAt:      invoicedAt,
		OfferedAt:       offeredAt,
		DueAt:           dueAt,
		TotalCents:      totalCents,
		TotalTaxCents:   totalTaxCents,
	}
}
