package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
)

// Product is a reusable line-item template. Picking a product pre-fills an
// invoice item; the item keeps its own copy afterwards, so price changes here
// never touch existing documents.
type Product struct {
	shared.TenantAggregateRoot
	Name           string          `gorm:"type:varchar(200);not null"`
	Category       string          `gorm:"type:varchar(100);index"`
	Description    string          `gorm:"type:text"`
	Notes          string          `gorm:"type:text"`
	Unit           string          `gorm:"type:varchar(50)"`
	UnitPriceCents int64           `gorm:"not null;default:0"`
	TaxPercentage  decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(tenantID uuid.UUID, name string, unitPriceCents int64, taxPercentage decimal.Decimal) (*Product, error) {
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if taxPercentage.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TAX", "Tax percentage cannot be negative")
	}

	product := &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		UnitPriceCents:      unitPriceCents,
		TaxPercentage:       taxPercentage,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update replaces the product's editable fields
func (p *Product) Update(name, category, description, notes, unit string, unitPriceCents int64, taxPercentage decimal.Decimal) error {
	if err := validateProductName(name); err != nil {
		return err
	}
	if taxPercentage.IsNegative() {
		return shared.NewDomainError("INVALID_TAX", "Tax percentage cannot be negative")
	}

	p.Name = name
	p.Category = category
	p.Description = description
	p.Notes = notes
	p.Unit = unit
	p.UnitPriceCents = unitPriceCents
	p.TaxPercentage = taxPercentage
	p.Touch()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
