package billing

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kellertobias/servobill-sub000/internal/domain/billing"
	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
)

// InvoiceSendHandler consumes send events for email submissions, renders the
// current PDF and delivers it to the document's customer.
type InvoiceSendHandler struct {
	invoices billing.InvoiceRepository
	pdf      *PdfService
	sender   EmailSender
	logger   *zap.Logger
}

// NewInvoiceSendHandler creates a new handler for email send events
func NewInvoiceSendHandler(
	invoices billing.InvoiceRepository,
	pdf *PdfService,
	sender EmailSender,
	logger *zap.Logger,
) *InvoiceSendHandler {
	return &InvoiceSendHandler{invoices: invoices, pdf: pdf, sender: sender, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *InvoiceSendHandler) EventTypes() []string {
	return []string{billing.EventTypeInvoiceSend}
}

// Handle emails the document to its customer with the PDF attached. The PDF
// is rendered fresh so the attachment always matches the sent content.
func (h *InvoiceSendHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	send, ok := event.(*billing.InvoiceSendEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			billing.EventTypeInvoiceSend, event.EventType())
	}

	invoice, err := h.invoices.FindByIDForTenant(ctx, send.TenantID(), send.InvoiceID)
	if err != nil {
		return fmt.Errorf("failed to load invoice for sending: %w", err)
	}

	if invoice.Customer.Email == "" {
		// nothing to retry here, the submission stays recorded either way
		h.logger.Warn("document customer has no email address, skipping delivery",
			zap.String("invoice_id", send.InvoiceID.String()),
			zap.String("number", invoice.Number()))
		return nil
	}

	data, err := h.pdf.RenderAndStore(ctx, invoice)
	if err != nil {
		return err
	}
	if err := h.invoices.Save(ctx, invoice); err != nil {
		return err
	}

	kindLabel := "Invoice"
	if invoice.Kind == billing.DocumentKindOffer {
		kindLabel = "Offer"
	}
	subject := fmt.Sprintf("%s %s", kindLabel, invoice.Number())
	if invoice.Subject != "" {
		subject = fmt.Sprintf("%s %s: %s", kindLabel, invoice.Number(), invoice.Subject)
	}

	msg := EmailMessage{
		To:             invoice.Customer.Email,
		Subject:        subject,
		Body:           fmt.Sprintf("Dear %s,\n\nplease find %s %s attached.\n", invoice.Customer.Name, kindLabel, invoice.Number()),
		AttachmentName: fmt.Sprintf("%s.pdf", invoice.Number()),
		Attachment:     data,
	}
	if err := h.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to deliver document email: %w", err)
	}

	h.logger.Info("document emailed",
		zap.String("invoice_id", send.InvoiceID.String()),
		zap.String("number", invoice.Number()),
		zap.String("to", invoice.Customer.Email))
	return nil
}

var _ shared.EventHandler = (*InvoiceSendHandler)(nil)
