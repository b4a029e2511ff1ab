package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
)

// LinkedExpense describes an expense that should be created and back-linked
// once the owning invoice is sent. Entries with Enabled false are ignored;
// entries that already carry an ExpenseID are never created twice.
type LinkedExpense struct {
	Name       string     `json:"name"`
	PriceCents int64      `json:"price_cents"`
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	Enabled    bool       `json:"enabled"`
	ExpenseID  *uuid.UUID `json:"expense_id,omitempty"`
}

// InvoiceItem is a line item of an invoice or offer
type InvoiceItem struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPriceCents int64           `json:"unit_price_cents"`
	TaxPercentage  decimal.Decimal `json:"tax_percentage"`
	ProductID      *uuid.UUID      `json:"product_id,omitempty"`
	LinkedExpenses []LinkedExpense `json:"linked_expenses,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// NewInvoiceItem creates a new line item
func NewInvoiceItem(name string, quantity decimal.Decimal, unitPriceCents int64, taxPercentage decimal.Decimal) (*InvoiceItem, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_ITEM_NAME", "Item name cannot be empty")
	}
	if quantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	if taxPercentage.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TAX", "Tax percentage cannot be negative")
	}

	now := time.Now()
	return &InvoiceItem{
		ID:             uuid.New(),
		Name:           name,
		Quantity:       quantity,
		UnitPriceCents: unitPriceCents,
		TaxPercentage:  taxPercentage,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// NetCents returns quantity x unit price, rounded half up to cents
func (i *InvoiceItem) NetCents() int64 {
	return i.Quantity.Mul(decimal.NewFromInt(i.UnitPriceCents)).Round(0).IntPart()
}

// TaxCents returns the tax amount for this item, rounded half up to cents
func (i *InvoiceItem) TaxCents() int64 {
	return i.Quantity.
		Mul(decimal.NewFromInt(i.UnitPriceCents)).
		Mul(i.TaxPercentage).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}
