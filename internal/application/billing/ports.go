package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kellertobias/servobill-sub000/internal/domain/billing"
)

// DocumentStorageService abstracts the object store that holds rendered
// invoice and offer PDFs. Implemented by infrastructure/storage.
type DocumentStorageService interface {
	// Upload stores data under the given key, overwriting any existing object
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error

	// GenerateDownloadURL returns a presigned URL for fetching an object
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject removes an object; deleting a missing object is not an error
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists reports whether an object is present
	ObjectExists(ctx context.Context, storageKey string) (bool, error)

	// GetBucket returns the configured bucket name
	GetBucket() string

	// GetRegion returns the configured bucket region
	GetRegion() string
}

// PdfRenderer renders an HTML document into PDF bytes.
type PdfRenderer interface {
	Render(ctx context.Context, html string) ([]byte, error)
}

// DocumentRenderer produces the printable HTML for a document.
// Implemented by infrastructure/pdf's template engine.
type DocumentRenderer interface {
	RenderDocument(inv *billing.Invoice) (string, error)
}

// EmailMessage is an outbound email with an optional attachment.
type EmailMessage struct {
	To             string
	Subject        string
	Body           string
	AttachmentName string
	Attachment     []byte
}

// EmailSender delivers outbound email. Implemented by infrastructure/email.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// InvoicePdfKey returns the storage key for an invoice's rendered PDF.
// Keys are namespaced by tenant so per-tenant cleanup stays a prefix delete.
func InvoicePdfKey(tenantID, invoiceID uuid.UUID) string {
	return fmt.Sprintf("tenants/%s/invoices/%s.pdf", tenantID, invoiceID)
}
