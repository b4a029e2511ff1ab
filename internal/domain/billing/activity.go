package billing

import (
	"time"

	"github.com/google/uuid"
)

// ActivityType identifies an entry in the invoice activity log.
// The set is closed: every consumer (display text, icon selection) switches
// exhaustively over these values.
type ActivityType string

const (
	ActivityTypeCreated ActivityType = "CREATED"

	ActivityTypeSentInvoiceEmail  ActivityType = "SENT_INVOICE_EMAIL"
	ActivityTypeSentInvoiceLetter ActivityType = "SENT_INVOICE_LETTER"
	ActivityTypeSentInvoiceManual ActivityType = "SENT_INVOICE_MANUAL"
	ActivityTypeSentOfferEmail    ActivityType = "SENT_OFFER_EMAIL"
	ActivityTypeSentOfferLetter   ActivityType = "SENT_OFFER_LETTER"
	ActivityTypeSentOfferManual   ActivityType = "SENT_OFFER_MANUAL"

	ActivityTypeEmailDelivered ActivityType = "EMAIL_DELIVERED"
	ActivityTypeEmailBounced   ActivityType = "EMAIL_BOUNCED"
	ActivityTypeEmailOpened    ActivityType = "EMAIL_OPENED"

	ActivityTypeCancelledInvoice ActivityType = "CANCELLED_INVOICE"
	ActivityTypeCancelledOffer   ActivityType = "CANCELLED_OFFER"
	ActivityTypeArchived         ActivityType = "ARCHIVED"

	ActivityTypePayment ActivityType = "PAYMENT"
	ActivityTypePaid    ActivityType = "PAID"

	ActivityTypeNote       ActivityType = "NOTE"
	ActivityTypeAttachment ActivityType = "ATTACHMENT"

	ActivityTypeScheduledSend          ActivityType = "SCHEDULED_SEND"
	ActivityTypeCancelledScheduledSend ActivityType = "CANCELLED_SCHEDULED_SEND"

	ActivityTypeImported           ActivityType = "IMPORTED"
	ActivityTypeUpdated            ActivityType = "UPDATED"
	ActivityTypeConvertedToInvoice ActivityType = "CONVERTED_TO_INVOICE"
)

// IsValid checks if the type is a known ActivityType
func (t ActivityType) IsValid() bool {
	switch t {
	case ActivityTypeCreated,
		ActivityTypeSentInvoiceEmail, ActivityTypeSentInvoiceLetter, ActivityTypeSentInvoiceManual,
		ActivityTypeSentOfferEmail, ActivityTypeSentOfferLetter, ActivityTypeSentOfferManual,
		ActivityTypeEmailDelivered, ActivityTypeEmailBounced, ActivityTypeEmailOpened,
		ActivityTypeCancelledInvoice, ActivityTypeCancelledOffer, ActivityTypeArchived,
		ActivityTypePayment, ActivityTypePaid,
		ActivityTypeNote, ActivityTypeAttachment,
		ActivityTypeScheduledSend, ActivityTypeCancelledScheduledSend,
		ActivityTypeImported, ActivityTypeUpdated, ActivityTypeConvertedToInvoice:
		return true
	}
	return false
}

// String returns the string representation of ActivityType
func (t ActivityType) String() string {
	return string(t)
}

// DisplayText returns a human-readable description for the activity type
func (t ActivityType) DisplayText() string {
	switch t {
	case ActivityTypeCreated:
		return "Document created"
	case ActivityTypeSentInvoiceEmail:
		return "Invoice sent by email"
	case ActivityTypeSentInvoiceLetter:
		return "Invoice sent by letter"
	case ActivityTypeSentInvoiceManual:
		return "Invoice marked as sent"
	case ActivityTypeSentOfferEmail:
		return "Offer sent by email"
	case ActivityTypeSentOfferLetter:
		return "Offer sent by letter"
	case ActivityTypeSentOfferManual:
		return "Offer marked as sent"
	case ActivityTypeEmailDelivered:
		return "Email delivered"
	case ActivityTypeEmailBounced:
		return "Email bounced"
	case ActivityTypeEmailOpened:
		return "Email opened"
	case ActivityTypeCancelledInvoice:
		return "Invoice cancelled"
	case ActivityTypeCancelledOffer:
		return "Offer cancelled"
	case ActivityTypeArchived:
		return "Document archived"
	case ActivityTypePayment:
		return "Payment received"
	case ActivityTypePaid:
		return "Paid in full"
	case ActivityTypeNote:
		return "Note added"
	case ActivityTypeAttachment:
		return "Attachment added"
	case ActivityTypeScheduledSend:
		return "Send scheduled"
	case ActivityTypeCancelledScheduledSend:
		return "Scheduled send cancelled"
	case ActivityTypeImported:
		return "Document imported"
	case ActivityTypeUpdated:
		return "Document updated"
	case ActivityTypeConvertedToInvoice:
		return "Offer converted to invoice"
	default:
		return string(t)
	}
}

// Activity is one entry of the append-only invoice activity log.
//
// Entries are immutable once written, with two narrow exceptions handled by
// the aggregate: toggling AttachToEmail on an attachment entry and flipping a
// scheduled-send entry to cancelled-scheduled-send when its job is removed.
type Activity struct {
	ID            uuid.UUID    `json:"id"`
	ActivityAt    time.Time    `json:"activity_at"`
	Type          ActivityType `json:"type"`
	User          string       `json:"user,omitempty"`
	Notes         string       `json:"notes,omitempty"`
	AttachmentID  *uuid.UUID   `json:"attachment_id,omitempty"`
	AttachToEmail bool         `json:"attach_to_email,omitempty"`
	// JobRef correlates a scheduled-send entry to its deferred job id
	JobRef *uuid.UUID `json:"job_ref,omitempty"`
}

// NewActivity creates a new activity entry stamped with the current time
func NewActivity(activityType ActivityType, user string) Activity {
	return Activity{
		ID:         uuid.New(),
		ActivityAt: time.Now(),
		Type:       activityType,
		User:       user,
	}
}

// WithNotes returns a copy of the activity carrying the given note text
func (a Activity) WithNotes(notes string) Activity {
	a.Notes = notes
	return a
}

// SentActivityType maps a document kind and submission channel to the
// matching sent activity type.
func SentActivityType(kind DocumentKind, channel SubmissionType) ActivityType {
	if kind == DocumentKindOffer {
		switch channel {
		case SubmissionTypeEmail:
			return ActivityTypeSentOfferEmail
		case SubmissionTypeLetter:
			return ActivityTypeSentOfferLetter
		default:
			return ActivityTypeSentOfferManual
		}
	}
	switch channel {
	case SubmissionTypeEmail:
		return ActivityTypeSentInvoiceEmail
	case SubmissionTypeLetter:
		return ActivityTypeSentInvoiceLetter
	default:
		return ActivityTypeSentInvoiceManual
	}
}
