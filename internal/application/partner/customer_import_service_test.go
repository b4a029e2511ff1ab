package partner

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kellertobias/servobill-sub000/internal/domain/partner"
	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
	csvimport "github.com/kellertobias/servobill-sub000/internal/infrastructure/import"
)

type fakeCustomerRepo struct {
	saved []*partner.Customer
}

func (r *fakeCustomerRepo) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	for _, c := range r.saved {
		if c.GetID() == id && c.TenantID == tenantID {
			return c, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeCustomerRepo) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]partner.Customer, error) {
	var result []partner.Customer
	for _, c := range r.saved {
		if c.TenantID == tenantID {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (r *fakeCustomerRepo) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	customers, _ := r.FindAllForTenant(ctx, tenantID, filter)
	return int64(len(customers)), nil
}

func (r *fakeCustomerRepo) Save(ctx context.Context, customer *partner.Customer) error {
	r.saved = append(r.saved, customer)
	return nil
}

func (r *fakeCustomerRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return nil
}

func newImportFixture(t *testing.T) (*CustomerImportService, *fakeCustomerRepo, uuid.UUID) {
	t.Helper()
	repo := &fakeCustomerRepo{}
	store := csvimport.NewInMemorySessionStore(time.Minute)
	t.Cleanup(store.Stop)
	return NewCustomerImportService(repo, store, zap.NewNop()), repo, uuid.New()
}

func TestCustomerImportCreatesCustomers(t *testing.T) {
	service, repo, tenantID := newImportFixture(t)

	csv := "name,customer_number,email,city,country_code\n" +
		"ACME GmbH,C-100,mail@acme.test,Berlin,DE\n" +
		"Globex,C-101,,Hamburg,DE\n"

	summary, err := service.Import(context.Background(), tenantID, "customers.csv", []byte(csv))
	require.NoError(t, err)

	assert.Equal(t, csvimport.StateCompleted, summary.State)
	assert.Equal(t, 2, summary.TotalRows)
	assert.Equal(t, 2, summary.Imported)
	require.Len(t, repo.saved, 2)

	first := repo.saved[0]
	assert.Equal(t, tenantID, first.TenantID)
	assert.Equal(t, "ACME GmbH", first.Name)
	assert.Equal(t, "C-100", first.CustomerNumber)
	assert.Equal(t, "mail@acme.test", first.Email)
	assert.Equal(t, "Berlin", first.City)
	assert.Equal(t, "DE", first.CountryCode)
}

func TestCustomerImportRejectsInvalidFile(t *testing.T) {
	service, repo, tenantID := newImportFixture(t)

	// second row has no name and a malformed email
	csv := "name,email\n" +
		"ACME GmbH,mail@acme.test\n" +
		",not-an-email\n"

	summary, err := service.Import(context.Background(), tenantID, "customers.csv", []byte(csv))
	require.NoError(t, err)

	assert.Equal(t, csvimport.StateFailed, summary.State)
	assert.Equal(t, 0, summary.Imported)
	assert.Equal(t, 1, summary.ErrorRows)
	assert.NotEmpty(t, summary.Errors)
	assert.Empty(t, repo.saved, "an invalid file must import nothing")
}

func TestCustomerImportRejectsDuplicateNumbersInFile(t *testing.T) {
	service, repo, tenantID := newImportFixture(t)

	csv := "name,customer_number\n" +
		"ACME GmbH,C-100\n" +
		"Globex,C-100\n"

	summary, err := service.Import(context.Background(), tenantID, "customers.csv", []byte(csv))
	require.NoError(t, err)

	assert.Equal(t, csvimport.StateFailed, summary.State)
	assert.Empty(t, repo.saved)
}

func TestCustomerImportSessionLookup(t *testing.T) {
	service, _, tenantID := newImportFixture(t)

	csv := "name\nACME GmbH\n"
	summary, err := service.Import(context.Background(), tenantID, "customers.csv", []byte(csv))
	require.NoError(t, err)

	session, err := service.GetSession(context.Background(), tenantID, summary.SessionID)
	require.NoError(t, err)
	assert.Equal(t, csvimport.StateCompleted, session.State)

	_, err = service.GetSession(context.Background(), uuid.New(), summary.SessionID)
	require.Error(t, err, "sessions are tenant scoped")
}
