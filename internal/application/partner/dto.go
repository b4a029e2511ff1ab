package partner

import (
	"time"

	"github.com/google/uuid"

	"github.com/kellertobias/servobill-sub000/internal/domain/partner"
)

// CreateCustomerRequest creates a new customer
type CreateCustomerRequest struct {
	Name           string `json:"name" binding:"required"`
	CustomerNumber string `json:"customer_number"`
	ContactName    string `json:"contact_name"`
	ShowContact    bool   `json:"show_contact"`
	Email          string `json:"email"`
	Street         string `json:"street"`
	ZIP            string `json:"zip"`
	City           string `json:"city"`
	State          string `json:"state"`
	CountryCode    string `json:"country_code"`
	VatID          string `json:"vat_id"`
	Notes          string `json:"notes"`
}

// UpdateCustomerRequest updates a customer; nil fields are left untouched
type UpdateCustomerRequest struct {
	Name           *string `json:"name"`
	CustomerNumber *string `json:"customer_number"`
	ContactName    *string `json:"contact_name"`
	ShowContact    *bool   `json:"show_contact"`
	Email          *string `json:"email"`
	Street         *string `json:"street"`
	ZIP            *string `json:"zip"`
	City           *string `json:"city"`
	State          *string `json:"state"`
	CountryCode    *string `json:"country_code"`
	VatID          *string `json:"vat_id"`
	Notes          *string `json:"notes"`
}

// CustomerListFilter narrows and pages the customer list
type CustomerListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir"`
}

// CustomerResponse is the customer view
type CustomerResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	CustomerNumber string    `json:"customer_number,omitempty"`
	ContactName    string    `json:"contact_name,omitempty"`
	ShowContact    bool      `json:"show_contact"`
	Email          string    `json:"email,omitempty"`
	Street         string    `json:"street,omitempty"`
	ZIP            string    `json:"zip,omitempty"`
	City           string    `json:"city,omitempty"`
	State          string    `json:"state,omitempty"`
	CountryCode    string    `json:"country_code,omitempty"`
	VatID          string    `json:"vat_id,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ToCustomerResponse converts a domain customer to its view
func ToCustomerResponse(customer *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:             customer.GetID(),
		Name:           customer.Name,
		CustomerNumber: customer.CustomerNumber,
		ContactName:    customer.ContactName,
		ShowContact:    customer.ShowContact,
		Email:          customer.Email,
		Street:         customer.Street,
		ZIP:            customer.ZIP,
		City:           customer.City,
		State:          customer.State,
		CountryCode:    customer.CountryCode,
		VatID:          customer.VatID,
		Notes:          customer.Notes,
		CreatedAt:      customer.CreatedAt,
		UpdatedAt:      customer.UpdatedAt,
	}
}

// ToCustomerResponses converts a list of domain customers
func ToCustomerResponses(customers []partner.Customer) []CustomerResponse {
	out := make([]CustomerResponse, 0, len(customers))
	for idx := range customers {
		out = append(out, ToCustomerResponse(&customers[idx]))
	}
	return out
}
