package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kellertobias/servobill-sub000/internal/domain/partner"
	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
)

func TestCustomerRepositorySaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCustomerRepository(db, newTestOutboxSaver(t))
	ctx := context.Background()
	tenantID := uuid.New()

	customer, err := partner.NewCustomer(tenantID, "ACME GmbH")
	require.NoError(t, err)
	require.NoError(t, customer.SetContact("Jane Doe", "jane@acme.test", true))
	require.NoError(t, repo.Save(ctx, customer))

	loaded, err := repo.FindByIDForTenant(ctx, tenantID, customer.GetID())
	require.NoError(t, err)
	assert.Equal(t, "ACME GmbH", loaded.Name)
	assert.Equal(t, "jane@acme.test", loaded.Email)

	assert.Contains(t, outboxEventTypes(t, db), "customer.created",
		"saving must flush buffered events into the outbox")
}

func TestCustomerRepositoryTenantIsolation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCustomerRepository(db, newTestOutboxSaver(t))
	ctx := context.Background()

	customer, err := partner.NewCustomer(uuid.New(), "ACME GmbH")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, customer))

	_, err = repo.FindByIDForTenant(ctx, uuid.New(), customer.GetID())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCustomerRepositorySearch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCustomerRepository(db, newTestOutboxSaver(t))
	ctx := context.Background()
	tenantID := uuid.New()

	for _, name := range []string{"ACME GmbH", "Globex Corp", "Acme Labs"} {
		customer, err := partner.NewCustomer(tenantID, name)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, customer))
	}

	found, err := repo.FindAllForTenant(ctx, tenantID, shared.Filter{Search: "acme"})
	require.NoError(t, err)
	assert.Len(t, found, 2, "search is case insensitive")

	count, err := repo.CountForTenant(ctx, tenantID, shared.Filter{Search: "acme"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestCustomerRepositoryPagination(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCustomerRepository(db, newTestOutboxSaver(t))
	ctx := context.Background()
	tenantID := uuid.New()

	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		customer, err := partner.NewCustomer(tenantID, name)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, customer))
	}

	page, err := repo.FindAllForTenant(ctx, tenantID, shared.Filter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestCustomerRepositoryDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCustomerRepository(db, newTestOutboxSaver(t))
	ctx := context.Background()
	tenantID := uuid.New()

	customer, err := partner.NewCustomer(tenantID, "ACME GmbH")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, customer))

	require.NoError(t, repo.Delete(ctx, tenantID, customer.GetID()))
	assert.ErrorIs(t, repo.Delete(ctx, tenantID, customer.GetID()), shared.ErrNotFound)
}
