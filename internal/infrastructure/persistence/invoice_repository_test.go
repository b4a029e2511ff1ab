package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kellertobias/servobill-sub000/internal/domain/billing"
	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
)

type fixedSettings struct {
	counter int
}

func (s *fixedSettings) NextNumber(_ context.Context, kind billing.DocumentKind) (string, error) {
	s.counter++
	if kind == billing.DocumentKindOffer {
		return fmt.Sprintf("OFF-%03d", s.counter), nil
	}
	return fmt.Sprintf("INV-%03d", s.counter), nil
}

func (s *fixedSettings) InvoiceDueDays() int { return 14 }
func (s *fixedSettings) ValidityDays() int   { return 30 }

func fixedSettingsProvider() billing.SettingsProvider {
	settings := &fixedSettings{}
	return func(context.Context) (billing.SettingsAccessor, error) {
		return settings, nil
	}
}

func testCustomerSnapshot() billing.CustomerSnapshot {
	return billing.CustomerSnapshot{
		CustomerID: uuid.New(),
		Name:       "ACME GmbH",
		Email:      "billing@acme.test",
		City:       "Berlin",
	}
}

func testItems() []billing.InvoiceItem {
	return []billing.InvoiceItem{
		{
			Name:           "Consulting",
			Quantity:       decimal.NewFromInt(2),
			UnitPriceCents: 50000,
			TaxPercentage:  decimal.NewFromInt(19),
		},
	}
}

func TestInvoiceRepositoryCreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRepository(db, newTestOutboxSaver(t))
	ctx := context.Background()
	tenantID := uuid.New()

	invoice, err := repo.Create(ctx, tenantID, billing.DocumentKindInvoice, testCustomerSnapshot(), "jane")
	require.NoError(t, err)
	require.NotNil(t, invoice)

	loaded, err := repo.FindByIDForTenant(ctx, tenantID, invoice.GetID())
	require.NoError(t, err)
	assert.Equal(t, billing.InvoiceStatusDraft, loaded.Status)
	assert.Equal(t, "ACME GmbH", loaded.Customer.Name)
	require.Len(t, loaded.Activity, 1, "creation activity survives the JSON round trip")
	assert.Equal(t, billing.ActivityTypeCreated, loaded.Activity[0].Type)
}

func TestInvoiceRepositoryTenantIsolation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRepository(db, newTestOutboxSaver(t))
	ctx := context.Background()

	invoice, err := repo.Create(ctx, uuid.New(), billing.DocumentKindInvoice, testCustomerSnapshot(), "jane")
	require.NoError(t, err)

	_, err = repo.FindByIDForTenant(ctx, uuid.New(), invoice.GetID())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestInvoiceRepositorySaveFlushesEventsToOutbox(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRepository(db, newTestOutboxSaver(t))
	ctx := context.Background()
	tenantID := uuid.New()

	invoice, err := repo.Create(ctx, tenantID, billing.DocumentKindInvoice, testCustomerSnapshot(), "jane")
	require.NoError(t, err)
	require.NoError(t, invoice.UpdateItems(testItems()))
	require.NoError(t, repo.Save(ctx, invoice))

	require.NoError(t, invoice.AddSubmission(ctx,
		billing.NewSubmission(billing.SubmissionTypeEmail, time.Now()),
		"jane", fixedSettingsProvider(), nil))
	require.NoError(t, repo.Save(ctx, invoice))

	types := outboxEventTypes(t, db)
	assert.Contains(t, types, billing.EventTypeInvoicePublished)
	assert.Contains(t, types, billing.EventTypeInvoiceSend)

	loaded, err := repo.FindByIDForTenant(ctx, tenantID, invoice.GetID())
	require.NoError(t, err)
	assert.Equal(t, billing.InvoiceStatusSent, loaded.Status)
	assert.Equal(t, "INV-001", loaded.InvoiceNumber)
	assert.Empty(t, loaded.GetDomainEvents(), "loading never restores the event buffer")
}

func TestInvoiceRepositorySaveDetectsConcurrentModification(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRepository(db, newTestOutboxSaver(t))
	ctx := context.Background()
	tenantID := uuid.New()

	invoice, err := repo.Create(ctx, tenantID, billing.DocumentKindInvoice, testCustomerSnapshot(), "jane")
	require.NoError(t, err)

	first, err := repo.FindByIDForTenant(ctx, tenantID, invoice.GetID())
	require.NoError(t, err)
	second, err := repo.FindByIDForTenant(ctx, tenantID, invoice.GetID())
	require.NoError(t, err)

	first.UpdateTexts("first writer", "")
	require.NoError(t, repo.Save(ctx, first))

	second.UpdateTexts("second writer", "")
	err = repo.Save(ctx, second)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
}

func TestInvoiceRepositoryDeleteDraftOnly(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRepository(db, newTestOutboxSaver(t))
	ctx := context.Background()
	tenantID := uuid.New()

	draft, err := repo.Create(ctx, tenantID, billing.DocumentKindInvoice, testCustomerSnapshot(), "jane")
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, tenantID, draft.GetID()))

	sent, err := repo.Create(ctx, tenantID, billing.DocumentKindInvoice, testCustomerSnapshot(), "jane")
	require.NoError(t, err)
	require.NoError(t, sent.UpdateItems(testItems()))
	require.NoError(t, sent.AddSubmission(ctx,
		billing.NewSubmission(billing.SubmissionTypeManual, time.Now()),
		"jane", fixedSettingsProvider(), nil))
	require.NoError(t, repo.Save(ctx, sent))

	err = repo.Delete(ctx, tenantID, sent.GetID())
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVOICE_NOT_DELETABLE", domainErr.Code)
}

func TestInvoiceRepositoryFilterByStatusAndKind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRepository(db, newTestOutboxSaver(t))
	ctx := context.Background()
	tenantID := uuid.New()

	_, err := repo.Create(ctx, tenantID, billing.DocumentKindInvoice, testCustomerSnapshot(), "jane")
	require.NoError(t, err)
	_, err = repo.Create(ctx, tenantID, billing.DocumentKindOffer, testCustomerSnapshot(), "jane")
	require.NoError(t, err)

	offers, err := repo.FindAllForTenant(ctx, tenantID, shared.Filter{
		Filters: map[string]interface{}{"kind": billing.DocumentKindOffer},
	})
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, billing.DocumentKindOffer, offers[0].Kind)

	count, err := repo.CountForTenant(ctx, tenantID, shared.Filter{
		Filters: map[string]interface{}{"status": billing.InvoiceStatusDraft},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
