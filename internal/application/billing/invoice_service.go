package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kellertobias/servobill-sub000/internal/domain/billing"
	"github.com/kellertobias/servobill-sub000/internal/domain/partner"
	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
)

const (
	defaultPdfDebounce  = time.Minute
	downloadURLLifetime = 15 * time.Minute
)

// InvoiceService drives the document lifecycle: drafting, submission,
// scheduling, payments, cancellation and the PDF request path.
type InvoiceService struct {
	invoices    billing.InvoiceRepository
	settings    billing.SettingsRepository
	jobs        billing.DeferredJobRepository
	customers   partner.CustomerRepository
	storage     DocumentStorageService
	pdfDebounce time.Duration
	logger      *zap.Logger
}

// NewInvoiceService creates a new InvoiceService. A zero debounce falls back
// to one minute.
func NewInvoiceService(
	invoices billing.InvoiceRepository,
	settings billing.SettingsRepository,
	jobs billing.DeferredJobRepository,
	customers partner.CustomerRepository,
	storage DocumentStorageService,
	pdfDebounce time.Duration,
	logger *zap.Logger,
) *InvoiceService {
	if pdfDebounce <= 0 {
		pdfDebounce = defaultPdfDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		invoices:    invoices,
		settings:    settings,
		jobs:        jobs,
		customers:   customers,
		storage:     storage,
		pdfDebounce: pdfDebounce,
		logger:      logger,
	}
}

// Create creates a new draft document for the given customer
func (s *InvoiceService) Create(ctx context.Context, tenantID uuid.UUID, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	customer, err := s.customers.FindByIDForTenant(ctx, tenantID, req.CustomerID)
	if err != nil {
		return nil, err
	}

	invoice, err := s.invoices.Create(ctx, tenantID, req.Kind, SnapshotCustomer(customer), req.User)
	if err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// GetByID retrieves a document by id
func (s *InvoiceService) GetByID(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoices.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// List retrieves documents with filtering and pagination
func (s *InvoiceService) List(ctx context.Context, tenantID uuid.UUID, filter InvoiceListFilter) ([]InvoiceListResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Kind != "" {
		domainFilter.Filters["kind"] = filter.Kind
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	invoices, err := s.invoices.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.invoices.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToInvoiceListResponses(invoices), total, nil
}

// Update changes the editable content of a document. Omitted fields are left
// untouched; item and date changes are rejected on non-drafts by the
// aggregate, texts and customer stay editable in any status.
func (s *InvoiceService) Update(ctx context.Context, tenantID, invoiceID uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	invoice, err := s.invoices.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	if req.Items != nil {
		items, err := toDomainItems(req.Items)
		if err != nil {
			return nil, err
		}
		if err := invoice.UpdateItems(items); err != nil {
			return nil, err
		}
	}

	if req.Subject != nil || req.FooterText != nil {
		subject := invoice.Subject
		footer := invoice.FooterText
		if req.Subject != nil {
			subject = *req.Subject
		}
		if req.FooterText != nil {
			footer = *req.FooterText
		}
		invoice.UpdateTexts(subject, footer)
	}

	if req.CustomerID != nil && *req.CustomerID != invoice.Customer.CustomerID {
		customer, err := s.customers.FindByIDForTenant(ctx, tenantID, *req.CustomerID)
		if err != nil {
			return nil, err
		}
		if err := invoice.UpdateCustomer(SnapshotCustomer(customer)); err != nil {
			return nil, err
		}
	}

	if req.InvoicedAt != nil || req.OfferedAt != nil || req.DueAt != nil {
		invoicedAt := invoice.InvoicedAt
		offeredAt := invoice.OfferedAt
		dueAt := invoice.DueAt
		if req.InvoicedAt != nil {
			invoicedAt = req.InvoicedAt
		}
		if req.OfferedAt != nil {
			offeredAt = req.OfferedAt
		}
		if req.DueAt != nil {
			dueAt = req.DueAt
		}
		if err := invoice.UpdateDates(invoicedAt, offeredAt, dueAt); err != nil {
			return nil, err
		}
	}

	if err := s.invoices.Save(ctx, invoice); err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// Delete removes a draft document
func (s *InvoiceService) Delete(ctx context.Context, tenantID, invoiceID uuid.UUID) error {
	return s.invoices.Delete(ctx, tenantID, invoiceID)
}

// Submit sends a document now, or schedules the send when SendAt lies in the
// future. The immediate path transitions a draft to sent and assigns the
// document number through the settings sequence.
func (s *InvoiceService) Submit(ctx context.Context, tenantID, invoiceID uuid.UUID, req SubmitInvoiceRequest) (*InvoiceResponse, error) {
	if !req.Type.IsValid() {
		return nil, shared.NewDomainError("INVALID_SUBMISSION_TYPE", "Submission type must be MANUAL, EMAIL or LETTER")
	}

	invoice, err := s.invoices.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if req.SendAt != nil && req.SendAt.After(now) {
		if req.Type != billing.SubmissionTypeEmail {
			return nil, shared.NewDomainError("INVALID_SCHEDULE", "Only email submissions can be scheduled")
		}

		job := billing.NewDeferredJob(tenantID, *req.SendAt)
		sub := billing.NewScheduledSubmission(req.Type, now, job.GetID())
		if err := invoice.AddSubmission(ctx, sub, req.User, s.settingsProvider(tenantID), job); err != nil {
			return nil, err
		}
		if err := s.jobs.Create(ctx, job); err != nil {
			return nil, err
		}
		if err := s.invoices.Save(ctx, invoice); err != nil {
			// the orphaned job is harmless: executing it reloads the
			// aggregate, and deleting it is idempotent
			return nil, err
		}

		s.logger.Info("scheduled document send",
			zap.String("invoice_id", invoiceID.String()),
			zap.Time("send_at", *req.SendAt))
		response := ToInvoiceResponse(invoice)
		return &response, nil
	}

	sub := billing.NewSubmission(req.Type, now)
	if err := invoice.AddSubmission(ctx, sub, req.User, s.settingsProvider(tenantID), nil); err != nil {
		return nil, err
	}
	if err := s.invoices.Save(ctx, invoice); err != nil {
		return nil, err
	}

	s.logger.Info("document submitted",
		zap.String("invoice_id", invoiceID.String()),
		zap.String("number", invoice.Number()),
		zap.String("type", req.Type.String()))
	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// CancelSchedule revokes a pending scheduled send
func (s *InvoiceService) CancelSchedule(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoices.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := invoice.CancelScheduledSubmission(ctx, s.jobs.Delete); err != nil {
		return nil, err
	}
	if err := s.invoices.Save(ctx, invoice); err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// AddPayment records a payment against a sent invoice
func (s *InvoiceService) AddPayment(ctx context.Context, tenantID, invoiceID uuid.UUID, req PaymentRequest) (*InvoiceResponse, error) {
	invoice, err := s.invoices.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	input := billing.PaymentInput{CentsPaid: req.CentsPaid, Via: req.Via}
	if req.PaidAt != nil {
		input.PaidAt = *req.PaidAt
	}
	if _, err := invoice.AddPayment(input, req.User); err != nil {
		return nil, err
	}
	if err := s.invoices.Save(ctx, invoice); err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// Cancel cancels a sent document
func (s *InvoiceService) Cancel(ctx context.Context, tenantID, invoiceID uuid.UUID, user string) (*InvoiceResponse, error) {
	invoice, err := s.invoices.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := invoice.UpdateStatus(billing.InvoiceStatusCancelled, user); err != nil {
		return nil, err
	}
	if err := s.invoices.Save(ctx, invoice); err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// AddNote appends a note to the activity log
func (s *InvoiceService) AddNote(ctx context.Context, tenantID, invoiceID uuid.UUID, note, user string) (*InvoiceResponse, error) {
	if note == "" {
		return nil, shared.NewDomainError("INVALID_NOTE", "Note cannot be empty")
	}

	invoice, err := s.invoices.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	invoice.AddActivity(billing.NewActivity(billing.ActivityTypeNote, user).WithNotes(note))
	if err := s.invoices.Save(ctx, invoice); err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// SetAttachmentEmailFlag marks an attachment entry for inclusion in outgoing
// emails, or clears the mark again.
func (s *InvoiceService) SetAttachmentEmailFlag(ctx context.Context, tenantID, invoiceID, activityID uuid.UUID, attach bool) (*InvoiceResponse, error) {
	invoice, err := s.invoices.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := invoice.SetActivityAttachToEmail(activityID, attach); err != nil {
		return nil, err
	}
	if err := s.invoices.Save(ctx, invoice); err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// RequestPdf asks the render pipeline for a fresh PDF. The request is
// debounced: a PDF current for the content hash, or a pending request younger
// than the debounce window, short-circuits without emitting anything.
func (s *InvoiceService) RequestPdf(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoices.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	if invoice.HasCurrentPdf() {
		response := ToInvoiceResponse(invoice)
		return &response, nil
	}
	if pdf := invoice.PDF; pdf != nil &&
		pdf.GeneratedAt == nil &&
		pdf.ForContentHash == invoice.ContentHash &&
		pdf.RequestedAt != nil &&
		time.Since(*pdf.RequestedAt) < s.pdfDebounce {
		response := ToInvoiceResponse(invoice)
		return &response, nil
	}

	if _, err := invoice.RequestPdf(time.Now()); err != nil {
		return nil, err
	}
	if err := s.invoices.Save(ctx, invoice); err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// GetDownloadURL returns a presigned link for the current PDF
func (s *InvoiceService) GetDownloadURL(ctx context.Context, tenantID, invoiceID uuid.UUID) (*DownloadURLResponse, error) {
	invoice, err := s.invoices.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if !invoice.HasCurrentPdf() {
		return nil, shared.NewDomainError("PDF_NOT_AVAILABLE", "No PDF has been generated for the current content")
	}

	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, invoice.PDF.Key, downloadURLLifetime)
	if err != nil {
		return nil, err
	}
	return &DownloadURLResponse{URL: url, ExpiresAt: expiresAt}, nil
}

// ConvertOfferToInvoice creates a draft invoice from a sent offer and links
// the two documents with weak back references.
func (s *InvoiceService) ConvertOfferToInvoice(ctx context.Context, tenantID, offerID uuid.UUID, user string) (*InvoiceResponse, error) {
	offer, err := s.invoices.FindByIDForTenant(ctx, tenantID, offerID)
	if err != nil {
		return nil, err
	}
	if offer.Kind != billing.DocumentKindOffer {
		return nil, shared.NewDomainError("NOT_AN_OFFER", "Only offers can be converted to invoices")
	}

	invoice, err := s.invoices.Create(ctx, tenantID, billing.DocumentKindInvoice, offer.Customer, user)
	if err != nil {
		return nil, err
	}

	items := make([]billing.InvoiceItem, len(offer.Items))
	copy(items, offer.Items)
	for idx := range items {
		items[idx].ID = uuid.New()
	}
	if err := invoice.UpdateItems(items); err != nil {
		return nil, err
	}
	invoice.UpdateTexts(offer.Subject, offer.FooterText)
	invoice.LinkSourceOffer(offerID)
	if err := s.invoices.Save(ctx, invoice); err != nil {
		return nil, err
	}

	if err := offer.MarkConvertedToInvoice(invoice.GetID(), user); err != nil {
		return nil, err
	}
	if err := s.invoices.Save(ctx, offer); err != nil {
		// the invoice exists but the back link on the offer is missing;
		// links are weak references, readers tolerate that
		s.logger.Warn("failed to back-link converted offer",
			zap.String("offer_id", offerID.String()),
			zap.String("invoice_id", invoice.GetID().String()),
			zap.Error(err))
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// ExecuteScheduledSend performs a deferred send when its job comes due. A
// document whose schedule was cancelled in the meantime no longer carries the
// job reference and the call becomes a no-op, which makes job redelivery safe.
func (s *InvoiceService) ExecuteScheduledSend(ctx context.Context, tenantID, invoiceID uuid.UUID, user string) error {
	invoice, err := s.invoices.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return err
	}
	if invoice.ScheduledSendJobID == nil {
		s.logger.Info("scheduled send no longer pending, skipping",
			zap.String("invoice_id", invoiceID.String()))
		return nil
	}
	jobID := *invoice.ScheduledSendJobID

	sub := billing.NewSubmission(billing.SubmissionTypeEmail, time.Now())
	if err := invoice.AddSubmission(ctx, sub, user, s.settingsProvider(tenantID), nil); err != nil {
		return err
	}
	invoice.ClearScheduledSendRef()
	if err := s.invoices.Save(ctx, invoice); err != nil {
		return err
	}

	// the scheduler also deletes executed jobs; doing it here as well keeps
	// the table clean when the event arrived through another path
	if err := s.jobs.Delete(ctx, jobID); err != nil {
		s.logger.Warn("failed to delete executed send job",
			zap.String("job_id", jobID.String()),
			zap.Error(err))
	}
	return nil
}

// RecordEmailDelivery processes an inbound email delivery notification.
// Redeliveries of the same external event id are no-ops.
func (s *InvoiceService) RecordEmailDelivery(ctx context.Context, tenantID, invoiceID uuid.UUID, externalEventID string, activityType billing.ActivityType) error {
	switch activityType {
	case billing.ActivityTypeEmailDelivered, billing.ActivityTypeEmailBounced, billing.ActivityTypeEmailOpened:
	default:
		return shared.NewDomainError("INVALID_DELIVERY_STATE", "Unknown email delivery state")
	}
	if externalEventID == "" {
		return shared.NewDomainError("INVALID_DELIVERY_EVENT", "Delivery notification requires an event id")
	}

	invoice, err := s.invoices.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return err
	}
	if invoice.HasProcessedEvent(externalEventID) {
		return nil
	}

	invoice.MarkEventAsProcessed(externalEventID)
	invoice.AddActivity(billing.NewActivity(activityType, ""))
	return s.invoices.Save(ctx, invoice)
}

// settingsProvider adapts the settings repository to the narrow accessor the
// aggregate consumes during a first send.
func (s *InvoiceService) settingsProvider(tenantID uuid.UUID) billing.SettingsProvider {
	return func(ctx context.Context) (billing.SettingsAccessor, error) {
		settings, err := s.settings.FindForTenant(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		return &settingsAccessor{repo: s.settings, tenantID: tenantID, settings: settings}, nil
	}
}

type settingsAccessor struct {
	repo     billing.SettingsRepository
	tenantID uuid.UUID
	settings *billing.BillingSettings
}

// NextNumber goes through the repository so the sequence advances under the
// storage-level row lock rather than on this loaded copy.
func (a *settingsAccessor) NextNumber(ctx context.Context, kind billing.DocumentKind) (string, error) {
	return a.repo.NextNumber(ctx, a.tenantID, kind)
}

func (a *settingsAccessor) InvoiceDueDays() int {
	return a.settings.DefaultInvoiceDueDays
}

func (a *settingsAccessor) ValidityDays() int {
	return a.settings.OfferValidityDays
}

// SnapshotCustomer freezes a customer record onto a document
func SnapshotCustomer(customer *partner.Customer) billing.CustomerSnapshot {
	return billing.CustomerSnapshot{
		CustomerID:  customer.GetID(),
		Name:        customer.Name,
		ContactName: customer.DisplayContact(),
		Email:       customer.Email,
		Street:      customer.Street,
		ZIP:         customer.ZIP,
		City:        customer.City,
		CountryCode: customer.CountryCode,
		VatID:       customer.VatID,
	}
}

func toDomainItems(inputs []InvoiceItemInput) ([]billing.InvoiceItem, error) {
	items := make([]billing.InvoiceItem, 0, len(inputs))
	for _, in := range inputs {
		item, err := billing.NewInvoiceItem(in.Name, in.Quantity, in.UnitPriceCents, in.TaxPercentage)
		if err != nil {
			return nil, err
		}
		if in.ID != nil {
			item.ID = *in.ID
		}
		item.Description = in.Description
		item.ProductID = in.ProductID
		for _, exp := range in.LinkedExpenses {
			item.LinkedExpenses = append(item.LinkedExpenses, billing.LinkedExpense{
				Name:       exp.Name,
				PriceCents: exp.PriceCents,
				CategoryID: exp.CategoryID,
				Enabled:    exp.Enabled,
			})
		}
		items = append(items, *item)
	}
	return items, nil
}
