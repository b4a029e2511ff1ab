package partner

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomer(t *testing.T) {
	tenantID := uuid.New()

	customer, err := NewCustomer(tenantID, "ACME GmbH")
	require.NoError(t, err)

	assert.Equal(t, "ACME GmbH", customer.Name)
	assert.Equal(t, tenantID, customer.TenantID)
	require.Len(t, customer.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeCustomerCreated, customer.GetDomainEvents()[0].EventType())

	_, err = NewCustomer(tenantID, "")
	assert.Error(t, err)
}

func TestCustomerUpdate(t *testing.T) {
	customer, err := NewCustomer(uuid.New(), "ACME GmbH")
	require.NoError(t, err)
	customer.ClearDomainEvents()

	require.NoError(t, customer.Update("ACME AG", "C-0042"))
	assert.Equal(t, "ACME AG", customer.Name)
	assert.Equal(t, "C-0042", customer.CustomerNumber)
	require.Len(t, customer.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeCustomerUpdated, customer.GetDomainEvents()[0].EventType())

	assert.Error(t, customer.Update("", ""))
}

func TestCustomerSetContact(t *testing.T) {
	customer, err := NewCustomer(uuid.New(), "ACME GmbH")
	require.NoError(t, err)

	require.NoError(t, customer.SetContact("Jane Doe", "jane@acme.example", true))
	assert.Equal(t, "Jane Doe", customer.DisplayContact())

	require.NoError(t, customer.SetContact("Jane Doe", "jane@acme.example", false))
	assert.Empty(t, customer.DisplayContact(), "hidden contact must not render")

	assert.Error(t, customer.SetContact("Jane Doe", "not-an-email", true))
}

func TestCustomerSetAddress(t *testing.T) {
	customer, err := NewCustomer(uuid.New(), "ACME GmbH")
	require.NoError(t, err)

	require.NoError(t, customer.SetAddress("Hauptstr. 1", "10115", "Berlin", "", "de"))
	assert.Equal(t, "DE", customer.CountryCode)

	assert.Error(t, customer.SetAddress("Hauptstr. 1", "10115", "Berlin", "", "DEU"))
}

func TestCustomerAddressLines(t *testing.T) {
	customer, err := NewCustomer(uuid.New(), "ACME GmbH")
	require.NoError(t, err)
	require.NoError(t, customer.SetContact("Jane Doe", "", true))
	require.NoError(t, customer.SetAddress("Hauptstr. 1", "10115", "Berlin", "", "DE"))

	assert.Equal(t, []string{"ACME GmbH", "Jane Doe", "Hauptstr. 1", "10115 Berlin", "DE"}, customer.AddressLines())
}
