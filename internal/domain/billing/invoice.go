package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
	"github.com/kellertobias/servobill-sub000/internal/domain/shared/valueobject"
)

// DocumentKind distinguishes invoices from offers. Both share the same
// aggregate; the kind decides numbering, default dates and cancellation
// side effects.
type DocumentKind string

const (
	DocumentKindInvoice DocumentKind = "INVOICE"
	DocumentKindOffer   DocumentKind = "OFFER"
)

// IsValid checks if the document kind is valid
func (k DocumentKind) IsValid() bool {
	return k == DocumentKindInvoice || k == DocumentKindOffer
}

// InvoiceStatus represents the lifecycle state of a document
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "DRAFT"
	InvoiceStatusSent          InvoiceStatus = "SENT"
	InvoiceStatusCancelled     InvoiceStatus = "CANCELLED"
	InvoiceStatusPaidPartially InvoiceStatus = "PAID_PARTIALLY"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
)

// IsValid checks if the status is valid
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusCancelled,
		InvoiceStatusPaidPartially, InvoiceStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s InvoiceStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if transitioning to the target status is allowed
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	transitions := map[InvoiceStatus][]InvoiceStatus{
		InvoiceStatusDraft:         {InvoiceStatusSent},
		InvoiceStatusSent:          {InvoiceStatusPaid, InvoiceStatusPaidPartially, InvoiceStatusCancelled},
		InvoiceStatusPaidPartially: {InvoiceStatusPaid, InvoiceStatusPaidPartially},
		InvoiceStatusPaid:          {},
		InvoiceStatusCancelled:     {},
	}
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// CustomerSnapshot is the denormalized customer data frozen onto a document.
// Later edits to the customer record never change documents already written.
type CustomerSnapshot struct {
	CustomerID  uuid.UUID `json:"customer_id"`
	Name        string    `json:"name"`
	ContactName string    `json:"contact_name,omitempty"`
	Email       string    `json:"email,omitempty"`
	Street      string    `json:"street,omitempty"`
	ZIP         string    `json:"zip,omitempty"`
	City        string    `json:"city,omitempty"`
	CountryCode string    `json:"country_code,omitempty"`
	VatID       string    `json:"vat_id,omitempty"`
}

// PdfInfo records the render state of the document's PDF. ForContentHash
// ties the artifact (or pending request) to the exact content it was
// rendered from; a stale hash means the PDF must be re-requested.
type PdfInfo struct {
	RequestedAt    *time.Time `json:"requested_at,omitempty"`
	GeneratedAt    *time.Time `json:"generated_at,omitempty"`
	ForContentHash string     `json:"for_content_hash"`
	Bucket         string     `json:"bucket,omitempty"`
	Region         string     `json:"region,omitempty"`
	Key            string     `json:"key,omitempty"`
}

// DocumentLinks holds weak references between an offer and the invoice it
// was converted into. Dangling links are tolerated on read.
type DocumentLinks struct {
	OfferID   *uuid.UUID `json:"offer_id,omitempty"`
	InvoiceID *uuid.UUID `json:"invoice_id,omitempty"`
}

// PaymentInput describes a payment to record against a sent invoice
type PaymentInput struct {
	CentsPaid int64
	Via       string
	PaidAt    time.Time
}

// Invoice is the aggregate root for both invoices and offers.
//
// Drafts are freely editable; once sent, content is frozen except for dates,
// payments, activities and submissions. All mutations that matter to the
// rendered document recompute ContentHash so the PDF pipeline can detect
// stale artifacts.
type Invoice struct {
	shared.TenantAggregateRoot
	Kind          DocumentKind     `gorm:"not null;index"`
	Status        InvoiceStatus    `gorm:"not null;index;default:'DRAFT'"`
	InvoiceNumber string           `gorm:"index"`
	OfferNumber   string           `gorm:"index"`
	Customer      CustomerSnapshot `gorm:"serializer:json"`
	Items         []InvoiceItem    `gorm:"serializer:json"`
	TotalCents    int64            `gorm:"not null;default:0"`
	TotalTaxCents int64            `gorm:"not null;default:0"`
	Subject       string
	FooterText    string
	OfferedAt     *time.Time
	InvoicedAt    *time.Time
	DueAt         *time.Time
	PaidCents     int64      `gorm:"not null;default:0"`
	PaidAt        *time.Time
	PaidVia       string
	Activity      []Activity     `gorm:"serializer:json"`
	Submissions   []Submission   `gorm:"serializer:json"`
	ContentHash   string         `gorm:"index"`
	PDF           *PdfInfo       `gorm:"serializer:json"`
	Links         *DocumentLinks `gorm:"serializer:json"`
	// ProcessedEventIDs deduplicates externally delivered events such as
	// email webhook notifications.
	ProcessedEventIDs  []string   `gorm:"serializer:json"`
	ScheduledSendJobID *uuid.UUID `gorm:"type:uuid"`
}

// TableName specifies the database table name
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates a new draft document for the given customer
func NewInvoice(tenantID uuid.UUID, kind DocumentKind, customer CustomerSnapshot, user string) (*Invoice, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_KIND", "Document kind must be INVOICE or OFFER")
	}
	if customer.CustomerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Document requires a customer")
	}

	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Kind:                kind,
		Status:              InvoiceStatusDraft,
		Customer:            customer,
		Items:               make([]InvoiceItem, 0),
	}
	inv.appendActivity(NewActivity(ActivityTypeCreated, user))
	return inv, nil
}

// IsDraft reports whether the document is still editable
func (i *Invoice) IsDraft() bool {
	return i.Status == InvoiceStatusDraft
}

// Number returns the assigned document number for the document's kind
func (i *Invoice) Number() string {
	if i.Kind == DocumentKindOffer {
		return i.OfferNumber
	}
	return i.InvoiceNumber
}

// UpdateItems replaces the line items of a draft and recomputes the totals
// and the content hash. Sent documents reject item changes.
func (i *Invoice) UpdateItems(items []InvoiceItem) error {
	if !i.IsDraft() {
		return shared.NewDomainError("INVOICE_NOT_EDITABLE", "Items can only be changed on a draft")
	}

	var net, tax int64
	for idx := range items {
		if items[idx].ID == uuid.Nil {
			items[idx].ID = uuid.New()
		}
		net += items[idx].NetCents()
		tax += items[idx].TaxCents()
	}

	i.Items = items
	i.TotalTaxCents = tax
	i.TotalCents = net + tax
	i.recomputeContentHash()
	i.Touch()
	return nil
}

// UpdateTexts changes subject and footer and refreshes the content hash.
// Allowed in any status; a text change on a sent document only shows up in
// a regenerated PDF.
func (i *Invoice) UpdateTexts(subject, footer string) {
	i.Subject = subject
	i.FooterText = footer
	i.recomputeContentHash()
	i.Touch()
}

// UpdateCustomer replaces the frozen customer snapshot. Not status-guarded;
// only items and dates carry edit restrictions.
func (i *Invoice) UpdateCustomer(customer CustomerSnapshot) error {
	if customer.CustomerID == uuid.Nil {
		return shared.NewDomainError("INVALID_CUSTOMER", "Document requires a customer")
	}
	i.Customer = customer
	i.recomputeContentHash()
	i.Touch()
	return nil
}

// UpdateDates sets the document dates. Allowed on drafts and on sent
// documents; a change on a sent document emits a dates-changed event so the
// PDF can be refreshed.
func (i *Invoice) UpdateDates(invoicedAt, offeredAt, dueAt *time.Time) error {
	switch i.Status {
	case InvoiceStatusDraft, InvoiceStatusSent:
	default:
		return shared.NewDomainError("INVOICE_NOT_EDITABLE", "Dates can only be changed on a draft or sent document")
	}

	i.InvoicedAt = invoicedAt
	i.OfferedAt = offeredAt
	i.DueAt = dueAt
	i.recomputeContentHash()
	i.Touch()

	if i.Status == InvoiceStatusSent {
		i.AddDomainEvent(NewInvoiceDatesChangedEvent(i.TenantID, i.GetID(), invoicedAt, offeredAt, dueAt, i.TotalCents, i.TotalTaxCents))
	}
	return nil
}

// RequestPdf registers a render request for the current content. Any prior
// PDF state is replaced; the returned hash identifies the content the
// requested artifact must be rendered from.
func (i *Invoice) RequestPdf(now time.Time) (string, error) {
	if i.ContentHash == "" {
		return "", shared.NewDomainError("INVOICE_NO_CONTENT", "Document has no renderable content yet")
	}
	requestedAt := now
	i.PDF = &PdfInfo{
		RequestedAt:    &requestedAt,
		ForContentHash: i.ContentHash,
	}
	i.Touch()
	i.AddDomainEvent(NewInvoicePdfRequestedEvent(i.TenantID, i.GetID(), i.ContentHash))
	return i.ContentHash, nil
}

// UpdatePdf records where the rendered artifact was stored. The request
// timestamp is preserved so latency stays observable.
func (i *Invoice) UpdatePdf(forContentHash, bucket, region, key string, generatedAt time.Time) error {
	if forContentHash == "" {
		return shared.NewDomainError("INVALID_PDF_UPDATE", "PDF update requires the content hash it was rendered for")
	}
	var requestedAt *time.Time
	if i.PDF != nil {
		requestedAt = i.PDF.RequestedAt
	}
	i.PDF = &PdfInfo{
		RequestedAt:    requestedAt,
		GeneratedAt:    &generatedAt,
		ForContentHash: forContentHash,
		Bucket:         bucket,
		Region:         region,
		Key:            key,
	}
	i.Touch()
	return nil
}

// HasCurrentPdf reports whether a generated PDF exists for the current content
func (i *Invoice) HasCurrentPdf() bool {
	return i.PDF != nil && i.PDF.GeneratedAt != nil && i.PDF.ForContentHash == i.ContentHash
}

// AddSubmission records a send. Immediate submissions transition a draft to
// sent (assigning a number and default dates from settings); scheduled
// submissions only register a deferred job and leave the lifecycle untouched.
//
// Every email submission, scheduled executions included, emits a send event;
// the first transition to sent additionally emits a published event.
func (i *Invoice) AddSubmission(ctx context.Context, sub Submission, userName string, getSettings SettingsProvider, scheduledJob *DeferredJob) error {
	switch i.Status {
	case InvoiceStatusDraft, InvoiceStatusSent:
	default:
		return shared.NewDomainError("INVOICE_NOT_SENDABLE", "Document can no longer be sent")
	}

	if sub.IsScheduled {
		if scheduledJob == nil {
			return shared.NewDomainError("INVALID_SCHEDULE", "Scheduled submission requires a job")
		}
		payload, err := json.Marshal(NewInvoiceSendLaterEvent(i.TenantID, i.GetID(), sub.ID, userName))
		if err != nil {
			return err
		}
		scheduledJob.AttachEvent(EventTypeInvoiceSendLater, payload)
		jobID := scheduledJob.GetID()
		i.ScheduledSendJobID = &jobID

		activity := NewActivity(ActivityTypeScheduledSend, userName)
		activity.JobRef = &jobID
		i.appendActivity(activity)

		i.Submissions = append(i.Submissions, sub)
		i.Touch()
		i.AddDomainEvent(NewInvoiceScheduledEvent(i.TenantID, i.GetID(), jobID))
		return nil
	}

	firstSend := i.Status == InvoiceStatusDraft
	if firstSend {
		settings, err := getSettings(ctx)
		if err != nil {
			return err
		}
		if i.Number() == "" {
			number, err := settings.NextNumber(ctx, i.Kind)
			if err != nil {
				return err
			}
			if i.Kind == DocumentKindOffer {
				i.OfferNumber = number
			} else {
				i.InvoiceNumber = number
			}
		}

		now := sub.SubmittedAt
		if i.Kind == DocumentKindOffer {
			if i.OfferedAt == nil {
				i.OfferedAt = &now
			}
			if i.DueAt == nil {
				due := now.AddDate(0, 0, settings.ValidityDays())
				i.DueAt = &due
			}
		} else {
			if i.InvoicedAt == nil {
				i.InvoicedAt = &now
			}
			if i.DueAt == nil {
				due := now.AddDate(0, 0, settings.InvoiceDueDays())
				i.DueAt = &due
			}
		}

		i.Status = InvoiceStatusSent
		i.recomputeContentHash()
		i.AddDomainEvent(NewInvoicePublishedEvent(i.TenantID, i.GetID(), i.Kind, i.Number(), i.TotalCents))
	}

	i.appendActivity(NewActivity(SentActivityType(i.Kind, sub.Type), userName))
	i.Submissions = append(i.Submissions, sub)
	i.Touch()

	if sub.Type == SubmissionTypeEmail {
		if i.ContentHash == "" {
			return shared.NewDomainError("INVOICE_NO_CONTENT", "Cannot send a document without content")
		}
		i.AddDomainEvent(NewInvoiceSendEvent(i.TenantID, i.GetID(), sub.ID, i.ContentHash))
	}
	return nil
}

// CancelScheduledSubmission revokes the pending deferred send. deleteJob
// removes the job record; a failing deletion leaves the aggregate unchanged.
func (i *Invoice) CancelScheduledSubmission(ctx context.Context, deleteJob func(ctx context.Context, jobID uuid.UUID) error) error {
	if i.ScheduledSendJobID == nil {
		return shared.NewDomainError("NO_SCHEDULED_SEND", "Document has no scheduled send")
	}
	if err := deleteJob(ctx, *i.ScheduledSendJobID); err != nil {
		return err
	}

	jobID := *i.ScheduledSendJobID
	for idx := range i.Submissions {
		s := &i.Submissions[idx]
		if s.IsScheduled && !s.IsCancelled && s.ScheduledSendJobID != nil && *s.ScheduledSendJobID == jobID {
			s.IsCancelled = true
		}
	}
	for idx := range i.Activity {
		a := &i.Activity[idx]
		if a.Type == ActivityTypeScheduledSend && a.JobRef != nil && *a.JobRef == jobID {
			a.Type = ActivityTypeCancelledScheduledSend
		}
	}

	i.ScheduledSendJobID = nil
	i.Touch()
	return nil
}

// ClearScheduledSendRef drops the job reference after the deferred send ran.
// The submission and activity entries keep their history.
func (i *Invoice) ClearScheduledSendRef() {
	i.ScheduledSendJobID = nil
	i.Touch()
}

// AddPayment records a payment against a sent document. Payments accumulate;
// once they reach the total the document flips to paid, otherwise to
// partially paid.
func (i *Invoice) AddPayment(input PaymentInput, user string) (*Activity, error) {
	switch i.Status {
	case InvoiceStatusSent, InvoiceStatusPaidPartially:
	default:
		return nil, shared.NewDomainError("INVOICE_NOT_PAYABLE", "Payments can only be recorded on a sent document")
	}
	if input.CentsPaid <= 0 {
		return nil, shared.NewDomainError("INVALID_PAYMENT", "Payment amount must be positive")
	}

	paidAt := input.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	i.PaidCents += input.CentsPaid
	i.PaidAt = &paidAt
	// PaidVia always tracks the latest payment, even when it came in blank.
	i.PaidVia = input.Via

	amount := valueobject.NewMoneyEUR(input.CentsPaid)
	activity := NewActivity(ActivityTypePayment, user).WithNotes("Received " + amount.String())
	i.appendActivity(activity)

	i.AddDomainEvent(NewInvoicePaymentEvent(i.TenantID, i.GetID(), input.CentsPaid, input.Via, paidAt, i.TotalCents))

	if i.PaidCents >= i.TotalCents {
		i.Status = InvoiceStatusPaid
		i.appendActivity(NewActivity(ActivityTypePaid, user))
		i.AddDomainEvent(NewInvoicePaidEvent(i.TenantID, i.GetID(), i.PaidCents))
	} else {
		i.Status = InvoiceStatusPaidPartially
	}

	i.Touch()
	return &activity, nil
}

// UpdateStatus performs an explicit lifecycle transition. Only cancellation
// is allowed this way; the other states are reached through submissions and
// payments.
func (i *Invoice) UpdateStatus(target InvoiceStatus, user string) error {
	if target != InvoiceStatusCancelled {
		return shared.NewDomainError("INVALID_STATUS_CHANGE", "Only cancellation can be requested directly")
	}
	if !i.Status.CanTransitionTo(InvoiceStatusCancelled) {
		return shared.NewDomainError("INVALID_STATUS_CHANGE", "Only a sent document can be cancelled")
	}

	i.Status = InvoiceStatusCancelled
	if i.Kind == DocumentKindOffer {
		i.appendActivity(NewActivity(ActivityTypeCancelledOffer, user))
	} else {
		i.appendActivity(NewActivity(ActivityTypeCancelledInvoice, user))
		i.AddDomainEvent(NewInvoiceCancelledEvent(i.TenantID, i.GetID(), i.InvoiceNumber))
	}
	i.Touch()
	return nil
}

// LinkSourceOffer records the offer a converted invoice originates from.
// Links are weak references; a dangling id is tolerated on read.
func (i *Invoice) LinkSourceOffer(offerID uuid.UUID) {
	if i.Links == nil {
		i.Links = &DocumentLinks{}
	}
	i.Links.OfferID = &offerID
	i.Touch()
}

// MarkConvertedToInvoice links an offer to the invoice created from it and
// records the conversion in the activity log.
func (i *Invoice) MarkConvertedToInvoice(invoiceID uuid.UUID, user string) error {
	if i.Kind != DocumentKindOffer {
		return shared.NewDomainError("NOT_AN_OFFER", "Only offers can be marked as converted")
	}
	if i.Links == nil {
		i.Links = &DocumentLinks{}
	}
	i.Links.InvoiceID = &invoiceID
	i.appendActivity(NewActivity(ActivityTypeConvertedToInvoice, user))
	i.Touch()
	return nil
}

// AddActivity appends a free-form activity entry, in any lifecycle state
func (i *Invoice) AddActivity(activity Activity) {
	i.appendActivity(activity)
	i.Touch()
}

// SetActivityAttachToEmail toggles whether an attachment entry is included in
// outgoing emails. Only attachment entries carry the flag; every other entry
// type is immutable.
func (i *Invoice) SetActivityAttachToEmail(activityID uuid.UUID, attach bool) error {
	for idx := range i.Activity {
		a := &i.Activity[idx]
		if a.ID != activityID {
			continue
		}
		if a.Type != ActivityTypeAttachment {
			return shared.NewDomainError("ACTIVITY_NOT_ATTACHMENT", "Only attachment entries can be attached to emails")
		}
		a.AttachToEmail = attach
		i.Touch()
		return nil
	}
	return shared.NewDomainError("ACTIVITY_NOT_FOUND", "Activity entry not found")
}

// HasProcessedEvent reports whether an external event id was seen before
func (i *Invoice) HasProcessedEvent(eventID string) bool {
	for _, id := range i.ProcessedEventIDs {
		if id == eventID {
			return true
		}
	}
	return false
}

// MarkEventAsProcessed records an external event id for deduplication
func (i *Invoice) MarkEventAsProcessed(eventID string) {
	if i.HasProcessedEvent(eventID) {
		return
	}
	i.ProcessedEventIDs = append(i.ProcessedEventIDs, eventID)
	i.Touch()
}

// CreateAndLinkExpenses creates an expense for every enabled linked-expense
// entry that has none yet and stores the returned id back on the entry. The
// expended amount is the entry price scaled by the item quantity.
func (i *Invoice) CreateAndLinkExpenses(ctx context.Context, createExpense ExpenseFactory) error {
	for itemIdx := range i.Items {
		item := &i.Items[itemIdx]
		for expIdx := range item.LinkedExpenses {
			linked := &item.LinkedExpenses[expIdx]
			if !linked.Enabled || linked.ExpenseID != nil {
				continue
			}
			expended := decimal.NewFromInt(linked.PriceCents).Mul(item.Quantity).Round(0).IntPart()
			expenseID, err := createExpense(ctx, ExpenseDraft{
				Name:          linked.Name,
				ExpendedCents: expended,
				CategoryID:    linked.CategoryID,
				InvoiceID:     i.GetID(),
			})
			if err != nil {
				return err
			}
			id := expenseID
			linked.ExpenseID = &id
		}
	}
	i.Touch()
	return nil
}

func (i *Invoice) appendActivity(activity Activity) {
	i.Activity = append(i.Activity, activity)
}

// contentSnapshot is the canonical renderable view hashed for change detection
type contentSnapshot struct {
	Kind          DocumentKind     `json:"kind"`
	InvoiceNumber string           `json:"invoice_number"`
	OfferNumber   string           `json:"offer_number"`
	Customer      CustomerSnapshot `json:"customer"`
	Items         []itemSnapshot   `json:"items"`
	TotalCents    int64            `json:"total_cents"`
	TotalTaxCents int64            `json:"total_tax_cents"`
	Subject       string           `json:"subject"`
	FooterText    string           `json:"footer_text"`
	OfferedAt     string           `json:"offered_at"`
	InvoicedAt    string           `json:"invoiced_at"`
	DueAt         string           `json:"due_at"`
}

type itemSnapshot struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	Quantity       string `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	TaxPercentage  string `json:"tax_percentage"`
}

func (i *Invoice) recomputeContentHash() {
	snapshot := contentSnapshot{
		Kind:          i.Kind,
		InvoiceNumber: i.InvoiceNumber,
		OfferNumber:   i.OfferNumber,
		Customer:      i.Customer,
		Items:         make([]itemSnapshot, 0, len(i.Items)),
		TotalCents:    i.TotalCents,
		TotalTaxCents: i.TotalTaxCents,
		Subject:       i.Subject,
		FooterText:    i.FooterText,
		OfferedAt:     formatHashTime(i.OfferedAt),
		InvoicedAt:    formatHashTime(i.InvoicedAt),
		DueAt:         formatHashTime(i.DueAt),
	}
	for _, item := range i.Items {
		snapshot.Items = append(snapshot.Items, itemSnapshot{
			Name:           item.Name,
			Description:    item.Description,
			Quantity:       item.Quantity.String(),
			UnitPriceCents: item.UnitPriceCents,
			TaxPercentage:  item.TaxPercentage.String(),
		})
	}

	encoded, err := json.Marshal(snapshot)
	if err != nil {
		// marshal of the snapshot struct cannot fail; keep the old hash if it does
		return
	}
	sum := sha256.Sum256(encoded)
	i.ContentHash = hex.EncodeToString(sum[:])
}

func formatHashTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
