package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kellertobias/servobill-sub000/internal/domain/billing"
	"github.com/kellertobias/servobill-sub000/internal/domain/finance"
	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
)

// InvoicePublishedHandler consumes first-send events and creates the expenses
// the document's items declared as linked. Entries that already carry an
// expense id are skipped by the aggregate, so redelivery is safe.
type InvoicePublishedHandler struct {
	invoices billing.InvoiceRepository
	expenses finance.ExpenseRepository
	logger   *zap.Logger
}

// NewInvoicePublishedHandler creates a new handler for first-send events
func NewInvoicePublishedHandler(
	invoices billing.InvoiceRepository,
	expenses finance.ExpenseRepository,
	logger *zap.Logger,
) *InvoicePublishedHandler {
	return &InvoicePublishedHandler{invoices: invoices, expenses: expenses, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *InvoicePublishedHandler) EventTypes() []string {
	return []string{billing.EventTypeInvoicePublished}
}

// Handle creates and back-links the enabled linked expenses of the document
func (h *InvoicePublishedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	published, ok := event.(*billing.InvoicePublishedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			billing.EventTypeInvoicePublished, event.EventType())
	}

	invoice, err := h.invoices.FindByIDForTenant(ctx, published.TenantID(), published.InvoiceID)
	if err != nil {
		return fmt.Errorf("failed to load invoice for expense linking: %w", err)
	}

	created := 0
	factory := func(ctx context.Context, draft billing.ExpenseDraft) (uuid.UUID, error) {
		expense, err := finance.NewExpense(published.TenantID(), draft.Name, draft.ExpendedCents, time.Now())
		if err != nil {
			return uuid.Nil, err
		}
		expense.SetCategory(draft.CategoryID)
		expense.LinkToInvoice(draft.InvoiceID)
		if err := h.expenses.Save(ctx, expense); err != nil {
			return uuid.Nil, err
		}
		created++
		return expense.GetID(), nil
	}

	if err := invoice.CreateAndLinkExpenses(ctx, factory); err != nil {
		return err
	}
	if created == 0 {
		return nil
	}
	if err := h.invoices.Save(ctx, invoice); err != nil {
		return err
	}

	h.logger.Info("linked expenses created",
		zap.String("invoice_id", published.InvoiceID.String()),
		zap.String("number", published.Number),
		zap.Int("count", created))
	return nil
}

var _ shared.EventHandler = (*InvoicePublishedHandler)(nil)
