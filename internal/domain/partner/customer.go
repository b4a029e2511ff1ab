package partner

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
)

// Customer represents a billing customer. Documents freeze a snapshot of
// these fields at creation time, so edits here never rewrite documents that
// were already issued.
type Customer struct {
	shared.TenantAggregateRoot
	CustomerNumber string `gorm:"type:varchar(50);index"`
	Name           string `gorm:"type:varchar(200);not null"`
	ContactName    string `gorm:"type:varchar(100)"`
	// ShowContact controls whether the contact person appears on documents
	ShowContact bool   `gorm:"not null;default:false"`
	Email       string `gorm:"type:varchar(200);index"`
	Street      string `gorm:"type:varchar(200)"`
	ZIP         string `gorm:"type:varchar(20)"`
	City        string `gorm:"type:varchar(100)"`
	CountryCode string `gorm:"type:varchar(2)"`
	State       string `gorm:"type:varchar(100)"`
	VatID       string `gorm:"type:varchar(50)"`
	Notes       string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new customer with the required fields
func NewCustomer(tenantID uuid.UUID, name string) (*Customer, error) {
	if err := validateCustomerName(name); err != nil {
		return nil, err
	}

	customer := &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
	}

	customer.AddDomainEvent(NewCustomerCreatedEvent(customer))

	return customer, nil
}

// Update updates the customer's name and customer number
func (c *Customer) Update(name, customerNumber string) error {
	if err := validateCustomerName(name); err != nil {
		return err
	}
	if len(customerNumber) > 50 {
		return shared.NewDomainError("INVALID_CUSTOMER_NUMBER", "Customer number cannot exceed 50 characters")
	}

	c.Name = name
	c.CustomerNumber = customerNumber
	c.Touch()

	c.AddDomainEvent(NewCustomerUpdatedEvent(c))

	return nil
}

// SetContact sets the contact person and email
func (c *Customer) SetContact(contactName, email string, showContact bool) error {
	if contactName != "" && len(contactName) > 100 {
		return shared.NewDomainError("INVALID_CONTACT_NAME", "Contact name cannot exceed 100 characters")
	}
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
	}

	c.ContactName = contactName
	c.Email = email
	c.ShowContact = showContact
	c.Touch()

	return nil
}

// SetAddress sets the customer's postal address
func (c *Customer) SetAddress(street, zip, city, state, countryCode string) error {
	if street != "" && len(street) > 200 {
		return shared.NewDomainError("INVALID_STREET", "Street cannot exceed 200 characters")
	}
	if zip != "" && len(zip) > 20 {
		return shared.NewDomainError("INVALID_ZIP", "ZIP cannot exceed 20 characters")
	}
	if city != "" && len(city) > 100 {
		return shared.NewDomainError("INVALID_CITY", "City cannot exceed 100 characters")
	}
	if countryCode != "" && !validCountryCode(countryCode) {
		return shared.NewDomainError("INVALID_COUNTRY_CODE", "Country code must be a two-letter ISO code")
	}

	c.Street = street
	c.ZIP = zip
	c.City = city
	c.State = state
	c.CountryCode = strings.ToUpper(countryCode)
	c.Touch()

	return nil
}

// SetVatID sets the VAT identification number
func (c *Customer) SetVatID(vatID string) error {
	if vatID != "" && len(vatID) > 50 {
		return shared.NewDomainError("INVALID_VAT_ID", "VAT ID cannot exceed 50 characters")
	}

	c.VatID = vatID
	c.Touch()

	return nil
}

// SetNotes sets the free-form notes
func (c *Customer) SetNotes(notes string) {
	c.Notes = notes
	c.Touch()
}

// DisplayContact returns the contact line as it appears on documents
func (c *Customer) DisplayContact() string {
	if c.ShowContact && c.ContactName != "" {
		return c.ContactName
	}
	return ""
}

// AddressLines returns the address block for document rendering
func (c *Customer) AddressLines() []string {
	lines := []string{c.Name}
	if contact := c.DisplayContact(); contact != "" {
		lines = append(lines, contact)
	}
	if c.Street != "" {
		lines = append(lines, c.Street)
	}
	cityLine := strings.TrimSpace(c.ZIP + " " + c.City)
	if cityLine != "" {
		lines = append(lines, cityLine)
	}
	if c.CountryCode != "" {
		lines = append(lines, c.CountryCode)
	}
	return lines
}

func validateCustomerName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 200 characters")
	}
	return nil
}

func validCountryCode(code string) bool {
	if len(code) != 2 {
		return false
	}
	for _, r := range strings.ToUpper(code) {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func validateEmail(email string) error {
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}
