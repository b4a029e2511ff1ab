package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	tenantID := uuid.New()

	product, err := NewProduct(tenantID, "Consulting hour", 12500, decimal.NewFromInt(19))
	require.NoError(t, err)

	assert.Equal(t, "Consulting hour", product.Name)
	assert.Equal(t, int64(12500), product.UnitPriceCents)
	require.Len(t, product.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeProductCreated, product.GetDomainEvents()[0].EventType())

	_, err = NewProduct(tenantID, "", 100, decimal.Zero)
	assert.Error(t, err)

	_, err = NewProduct(tenantID, "Bad tax", 100, decimal.NewFromInt(-1))
	assert.Error(t, err)
}

func TestProductUpdate(t *testing.T) {
	product, err := NewProduct(uuid.New(), "Consulting hour", 12500, decimal.NewFromInt(19))
	require.NoError(t, err)
	product.ClearDomainEvents()

	require.NoError(t, product.Update("Consulting day", "Services", "Full day on site", "", "day", 95000, decimal.NewFromInt(19)))
	assert.Equal(t, "Consulting day", product.Name)
	assert.Equal(t, "Services", product.Category)
	assert.Equal(t, int64(95000), product.UnitPriceCents)
	require.Len(t, product.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeProductUpdated, product.GetDomainEvents()[0].EventType())

	assert.Error(t, product.Update("", "", "", "", "", 0, decimal.Zero))
}
