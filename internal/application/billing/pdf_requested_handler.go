package billing

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kellertobias/servobill-sub000/internal/domain/billing"
	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
)

// PdfRequestedHandler consumes render-request events and produces the PDF
// artifact. Events are delivered at least once; a document that already has a
// PDF for its current content is skipped.
type PdfRequestedHandler struct {
	invoices billing.InvoiceRepository
	pdf      *PdfService
	logger   *zap.Logger
}

// NewPdfRequestedHandler creates a new handler for PDF render requests
func NewPdfRequestedHandler(
	invoices billing.InvoiceRepository,
	pdf *PdfService,
	logger *zap.Logger,
) *PdfRequestedHandler {
	return &PdfRequestedHandler{invoices: invoices, pdf: pdf, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *PdfRequestedHandler) EventTypes() []string {
	return []string{billing.EventTypeInvoicePdfRequested}
}

// Handle renders and stores the PDF for the requested document
func (h *PdfRequestedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	requested, ok := event.(*billing.InvoicePdfRequestedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			billing.EventTypeInvoicePdfRequested, event.EventType())
	}

	invoice, err := h.invoices.FindByIDForTenant(ctx, requested.TenantID(), requested.InvoiceID)
	if err != nil {
		return fmt.Errorf("failed to load invoice for pdf render: %w", err)
	}

	if invoice.HasCurrentPdf() {
		h.logger.Debug("pdf already current, skipping render",
			zap.String("invoice_id", requested.InvoiceID.String()))
		return nil
	}
	if invoice.ContentHash != requested.ForContentHash {
		// content moved on since the request; the render uses the current
		// content and records the current hash
		h.logger.Info("content changed since pdf request, rendering current content",
			zap.String("invoice_id", requested.InvoiceID.String()))
	}

	if _, err := h.pdf.RenderAndStore(ctx, invoice); err != nil {
		return err
	}
	return h.invoices.Save(ctx, invoice)
}

var _ shared.EventHandler = (*PdfRequestedHandler)(nil)
