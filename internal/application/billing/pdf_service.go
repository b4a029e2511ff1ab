package billing

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kellertobias/servobill-sub000/internal/domain/billing"
)

// PdfService renders a document to PDF and stores the artifact. It is shared
// by the render-request handler and the email send path.
type PdfService struct {
	documents DocumentRenderer
	renderer  PdfRenderer
	storage   DocumentStorageService
	logger    *zap.Logger
}

// NewPdfService creates a new PdfService
func NewPdfService(
	documents DocumentRenderer,
	renderer PdfRenderer,
	storage DocumentStorageService,
	logger *zap.Logger,
) *PdfService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PdfService{
		documents: documents,
		renderer:  renderer,
		storage:   storage,
		logger:    logger,
	}
}

// RenderAndStore renders the invoice's current content, uploads the PDF and
// records the artifact location on the aggregate. The caller persists the
// aggregate afterwards. The rendered bytes are returned for reuse, e.g. as an
// email attachment.
func (s *PdfService) RenderAndStore(ctx context.Context, invoice *billing.Invoice) ([]byte, error) {
	html, err := s.documents.RenderDocument(invoice)
	if err != nil {
		return nil, fmt.Errorf("failed to render document html: %w", err)
	}

	start := time.Now()
	data, err := s.renderer.Render(ctx, html)
	if err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}

	key := InvoicePdfKey(invoice.TenantID, invoice.GetID())
	if err := s.storage.Upload(ctx, key, data, "application/pdf"); err != nil {
		return nil, fmt.Errorf("failed to upload pdf: %w", err)
	}

	if err := invoice.UpdatePdf(invoice.ContentHash, s.storage.GetBucket(), s.storage.GetRegion(), key, time.Now()); err != nil {
		return nil, err
	}

	s.logger.Info("pdf rendered and stored",
		zap.String("invoice_id", invoice.GetID().String()),
		zap.String("key", key),
		zap.Int("size_bytes", len(data)),
		zap.Duration("render_duration", time.Since(start)))
	return data, nil
}
