package partner

import (
	"context"

	"github.com/google/uuid"

	"github.com/kellertobias/servobill-sub000/internal/domain/partner"
	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
)

// CustomerService handles customer-related business operations
type CustomerService struct {
	customers partner.CustomerRepository
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customers partner.CustomerRepository) *CustomerService {
	return &CustomerService{customers: customers}
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCustomerRequest) (*CustomerResponse, error) {
	customer, err := partner.NewCustomer(tenantID, req.Name)
	if err != nil {
		return nil, err
	}

	if req.CustomerNumber != "" {
		if err := customer.Update(req.Name, req.CustomerNumber); err != nil {
			return nil, err
		}
	}
	if err := customer.SetContact(req.ContactName, req.Email, req.ShowContact); err != nil {
		return nil, err
	}
	if err := customer.SetAddress(req.Street, req.ZIP, req.City, req.State, req.CountryCode); err != nil {
		return nil, err
	}
	if err := customer.SetVatID(req.VatID); err != nil {
		return nil, err
	}
	if req.Notes != "" {
		customer.SetNotes(req.Notes)
	}

	if err := s.customers.Save(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByID retrieves a customer by id
func (s *CustomerService) GetByID(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customers.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// List retrieves customers with filtering and pagination
func (s *CustomerService) List(ctx context.Context, tenantID uuid.UUID, filter CustomerListFilter) ([]CustomerResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
	}

	customers, err := s.customers.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.customers.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToCustomerResponses(customers), total, nil
}

// Update updates a customer. Edits never touch documents that already froze a
// snapshot of this customer.
func (s *CustomerService) Update(ctx context.Context, tenantID, customerID uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.customers.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil || req.CustomerNumber != nil {
		name := customer.Name
		number := customer.CustomerNumber
		if req.Name != nil {
			name = *req.Name
		}
		if req.CustomerNumber != nil {
			number = *req.CustomerNumber
		}
		if err := customer.Update(name, number); err != nil {
			return nil, err
		}
	}

	if req.ContactName != nil || req.Email != nil || req.ShowContact != nil {
		contactName := customer.ContactName
		email := customer.Email
		showContact := customer.ShowContact
		if req.ContactName != nil {
			contactName = *req.ContactName
		}
		if req.Email != nil {
			email = *req.Email
		}
		if req.ShowContact != nil {
			showContact = *req.ShowContact
		}
		if err := customer.SetContact(contactName, email, showContact); err != nil {
			return nil, err
		}
	}

	if req.Street != nil || req.ZIP != nil || req.City != nil || req.State != nil || req.CountryCode != nil {
		street := customer.Street
		zip := customer.ZIP
		city := customer.City
		state := customer.State
		country := customer.CountryCode
		if req.Street != nil {
			street = *req.Street
		}
		if req.ZIP != nil {
			zip = *req.ZIP
		}
		if req.City != nil {
			city = *req.City
		}
		if req.State != nil {
			state = *req.State
		}
		if req.CountryCode != nil {
			country = *req.CountryCode
		}
		if err := customer.SetAddress(street, zip, city, state, country); err != nil {
			return nil, err
		}
	}

	if req.VatID != nil {
		if err := customer.SetVatID(*req.VatID); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		customer.SetNotes(*req.Notes)
	}

	if err := s.customers.Save(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// Delete deletes a customer
func (s *CustomerService) Delete(ctx context.Context, tenantID, customerID uuid.UUID) error {
	return s.customers.Delete(ctx, tenantID, customerID)
}
