package billing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kellertobias/servobill-sub000/internal/domain/billing"
	"github.com/kellertobias/servobill-sub000/internal/domain/finance"
	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
)

type fakeExpenseRepo struct {
	mu       sync.Mutex
	expenses map[uuid.UUID]*finance.Expense
}

func newFakeExpenseRepo() *fakeExpenseRepo {
	return &fakeExpenseRepo{expenses: make(map[uuid.UUID]*finance.Expense)}
}

func (r *fakeExpenseRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*finance.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.expenses[id]
	if !ok || e.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return e, nil
}

func (r *fakeExpenseRepo) FindAllForTenant(context.Context, uuid.UUID, shared.Filter) ([]finance.Expense, error) {
	return nil, nil
}

func (r *fakeExpenseRepo) CountForTenant(context.Context, uuid.UUID, shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.expenses)), nil
}

func (r *fakeExpenseRepo) Save(_ context.Context, expense *finance.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expenses[expense.GetID()] = expense
	return nil
}

func (r *fakeExpenseRepo) Delete(context.Context, uuid.UUID, uuid.UUID) error { return nil }

// fakeIdempotencyStore is an always-available in-memory store; failing reports
// errors from MarkProcessed instead.
type fakeIdempotencyStore struct {
	mu      sync.Mutex
	seen    map[string]bool
	failing bool
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{seen: make(map[string]bool)}
}

func (s *fakeIdempotencyStore) MarkProcessed(_ context.Context, eventID string, _ time.Duration) (bool, error) {
	if s.failing {
		return false, errors.New("store unavailable")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[eventID] {
		return false, nil
	}
	s.seen[eventID] = true
	return true, nil
}

func (s *fakeIdempotencyStore) IsProcessed(_ context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[eventID], nil
}

func (s *fakeIdempotencyStore) Close() error { return nil }

func publishedInvoice(t *testing.T, f *serviceFixture) (*billing.Invoice, *billing.InvoicePublishedEvent) {
	t.Helper()
	draft := f.createDraft(t, billing.DocumentKindInvoice)

	inv, err := f.invoices.FindByIDForTenant(context.Background(), f.tenantID, draft.ID)
	require.NoError(t, err)

	item, err := billing.NewInvoiceItem("Hosting", decimal.NewFromInt(1), 30000, decimal.NewFromInt(19))
	require.NoError(t, err)
	item.LinkedExpenses = []billing.LinkedExpense{
		{Name: "Server rent", PriceCents: 12000, Enabled: true},
		{Name: "Disabled entry", PriceCents: 999, Enabled: false},
	}
	require.NoError(t, inv.UpdateItems([]billing.InvoiceItem{*item}))
	require.NoError(t, f.invoices.Save(context.Background(), inv))

	_, err = f.service.Submit(context.Background(), f.tenantID, draft.ID, SubmitInvoiceRequest{
		Type: billing.SubmissionTypeManual,
		User: "jane",
	})
	require.NoError(t, err)

	inv, err = f.invoices.FindByIDForTenant(context.Background(), f.tenantID, draft.ID)
	require.NoError(t, err)
	return inv, billing.NewInvoicePublishedEvent(f.tenantID, inv.GetID(), inv.Kind, inv.Number(), inv.TotalCents)
}

func TestInvoicePublishedHandlerCreatesLinkedExpenses(t *testing.T) {
	f := newServiceFixture(t)
	inv, event := publishedInvoice(t, f)

	expenses := newFakeExpenseRepo()
	handler := NewInvoicePublishedHandler(f.invoices, expenses, zap.NewNop())

	assert.Equal(t, []string{billing.EventTypeInvoicePublished}, handler.EventTypes())
	require.NoError(t, handler.Handle(context.Background(), event))

	count, _ := expenses.CountForTenant(context.Background(), f.tenantID, shared.Filter{})
	assert.Equal(t, int64(1), count, "only enabled entries become expenses")

	reloaded, err := f.invoices.FindByIDForTenant(context.Background(), f.tenantID, inv.GetID())
	require.NoError(t, err)
	linked := reloaded.Items[0].LinkedExpenses[0]
	require.NotNil(t, linked.ExpenseID)

	expense, err := expenses.FindByIDForTenant(context.Background(), f.tenantID, *linked.ExpenseID)
	require.NoError(t, err)
	assert.Equal(t, "Server rent", expense.Name)
	assert.Equal(t, int64(12000), expense.ExpendedCents)
	require.NotNil(t, expense.InvoiceID)
	assert.Equal(t, inv.GetID(), *expense.InvoiceID)
}

func TestInvoicePublishedHandlerRedeliveryCreatesNothing(t *testing.T) {
	f := newServiceFixture(t)
	_, event := publishedInvoice(t, f)

	expenses := newFakeExpenseRepo()
	handler := NewInvoicePublishedHandler(f.invoices, expenses, zap.NewNop())

	require.NoError(t, handler.Handle(context.Background(), event))
	require.NoError(t, handler.Handle(context.Background(), event))

	count, _ := expenses.CountForTenant(context.Background(), f.tenantID, shared.Filter{})
	assert.Equal(t, int64(1), count, "already linked entries are skipped on redelivery")
}

func TestInvoicePublishedHandlerRejectsForeignEvent(t *testing.T) {
	f := newServiceFixture(t)
	handler := NewInvoicePublishedHandler(f.invoices, newFakeExpenseRepo(), zap.NewNop())

	err := handler.Handle(context.Background(), billing.NewInvoicePaidEvent(f.tenantID, uuid.New(), 100))
	assert.Error(t, err)
}

func TestEmailWebhookServiceDedupesViaStore(t *testing.T) {
	f := newServiceFixture(t)
	draft := f.createDraft(t, billing.DocumentKindInvoice)
	_, err := f.service.Submit(context.Background(), f.tenantID, draft.ID, SubmitInvoiceRequest{
		Type: billing.SubmissionTypeEmail,
		User: "jane",
	})
	require.NoError(t, err)

	store := newFakeIdempotencyStore()
	webhooks := NewEmailWebhookService(f.service, store, zap.NewNop())

	notification := DeliveryNotification{EventID: "msg-1", InvoiceID: draft.ID, State: "delivered"}
	require.NoError(t, webhooks.Process(context.Background(), f.tenantID, notification))
	require.NoError(t, webhooks.Process(context.Background(), f.tenantID, notification))

	resp, err := f.service.GetByID(context.Background(), f.tenantID, draft.ID)
	require.NoError(t, err)
	delivered := 0
	for _, a := range resp.Activity {
		if a.Type == string(billing.ActivityTypeEmailDelivered) {
			delivered++
		}
	}
	assert.Equal(t, 1, delivered)
}

func TestEmailWebhookServiceSurvivesStoreOutage(t *testing.T) {
	f := newServiceFixture(t)
	draft := f.createDraft(t, billing.DocumentKindInvoice)
	_, err := f.service.Submit(context.Background(), f.tenantID, draft.ID, SubmitInvoiceRequest{
		Type: billing.SubmissionTypeEmail,
		User: "jane",
	})
	require.NoError(t, err)

	store := newFakeIdempotencyStore()
	store.failing = true
	webhooks := NewEmailWebhookService(f.service, store, zap.NewNop())

	// the store is down; the aggregate's processed-event set still dedupes
	notification := DeliveryNotification{EventID: "msg-2", InvoiceID: draft.ID, State: "bounced"}
	require.NoError(t, webhooks.Process(context.Background(), f.tenantID, notification))
	require.NoError(t, webhooks.Process(context.Background(), f.tenantID, notification))

	resp, err := f.service.GetByID(context.Background(), f.tenantID, draft.ID)
	require.NoError(t, err)
	bounced := 0
	for _, a := range resp.Activity {
		if a.Type == string(billing.ActivityTypeEmailBounced) {
			bounced++
		}
	}
	assert.Equal(t, 1, bounced)
}

func TestEmailWebhookServiceRejectsUnknownState(t *testing.T) {
	f := newServiceFixture(t)
	webhooks := NewEmailWebhookService(f.service, newFakeIdempotencyStore(), zap.NewNop())

	err := webhooks.Process(context.Background(), f.tenantID, DeliveryNotification{
		EventID: "msg-3", InvoiceID: uuid.New(), State: "vanished",
	})
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_DELIVERY_STATE", domainErr.Code)
}
