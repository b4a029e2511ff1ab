package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
)

// InvoiceRepository is the persistence contract for the invoice aggregate.
//
// Save must commit the aggregate state (with an optimistic version check)
// and then flush the aggregate's buffered events via PurgeEvents into the
// transactional outbox, in that order. Loading never restores the in-memory
// event buffer, which is why delivery is at-least-once across reloads.
type InvoiceRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Invoice, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	// Create builds a new draft document, persists it and returns it
	Create(ctx context.Context, tenantID uuid.UUID, kind DocumentKind, customer CustomerSnapshot, user string) (*Invoice, error)
	Save(ctx context.Context, invoice *Invoice) error
	// Delete removes a document; only drafts may be deleted
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// SettingsRepository persists the per-tenant billing settings
type SettingsRepository interface {
	FindForTenant(ctx context.Context, tenantID uuid.UUID) (*BillingSettings, error)
	Save(ctx context.Context, settings *BillingSettings) error
	// NextNumber advances the numbering sequence for the given kind under a
	// row lock, so concurrent callers observe strictly sequential numbers.
	NextNumber(ctx context.Context, tenantID uuid.UUID, kind DocumentKind) (string, error)
}

// DeferredJobRepository stores deferred send jobs for the external scheduler
type DeferredJobRepository interface {
	Create(ctx context.Context, job *DeferredJob) error
	FindByID(ctx context.Context, id uuid.UUID) (*DeferredJob, error)
	FindDue(ctx context.Context, before time.Time, limit int) ([]*DeferredJob, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ExpenseDraft carries the fields the expense factory needs to create an
// expense from an enabled linked-expense entry.
type ExpenseDraft struct {
	Name          string
	ExpendedCents int64
	CategoryID    *uuid.UUID
	InvoiceID     uuid.UUID
}

// ExpenseFactory creates an expense and returns its id; invoked by
// Invoice.CreateAndLinkExpenses for each enabled, not-yet-linked entry.
type ExpenseFactory func(ctx context.Context, draft ExpenseDraft) (uuid.UUID, error)
