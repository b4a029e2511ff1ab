package finance

import (
	"time"

	"github.com/google/uuid"

	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
)

// Expense records money spent. Expenses are either entered manually or
// created automatically when an invoice with linked-expense items is sent;
// the latter carry the id of the invoice they originate from.
type Expense struct {
	shared.TenantAggregateRoot
	Name          string     `gorm:"type:varchar(200);not null"`
	Description   string     `gorm:"type:text"`
	Notes         string     `gorm:"type:text"`
	ExpendedAt    time.Time  `gorm:"not null;index"`
	ExpendedCents int64      `gorm:"not null;default:0"`
	TaxCents      int64      `gorm:"not null;default:0"`
	CategoryID    *uuid.UUID `gorm:"type:uuid;index"`
	// InvoiceID links expenses that were auto-created from an invoice item
	InvoiceID *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (Expense) TableName() string {
	return "expenses"
}

// NewExpense creates a new expense
func NewExpense(tenantID uuid.UUID, name string, expendedCents int64, expendedAt time.Time) (*Expense, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Expense name cannot be empty")
	}
	if expendedCents < 0 {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Expended amount cannot be negative")
	}
	if expendedAt.IsZero() {
		expendedAt = time.Now()
	}

	expense := &Expense{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		ExpendedAt:          expendedAt,
		ExpendedCents:       expendedCents,
	}

	expense.AddDomainEvent(NewExpenseCreatedEvent(expense))

	return expense, nil
}

// SetCategory assigns the expense to a category
func (e *Expense) SetCategory(categoryID *uuid.UUID) {
	e.CategoryID = categoryID
	e.Touch()
}

// LinkToInvoice marks this expense as originating from an invoice
func (e *Expense) LinkToInvoice(invoiceID uuid.UUID) {
	e.InvoiceID = &invoiceID
	e.Touch()
}

// Update replaces the expense's editable fields
func (e *Expense) Update(name, description, notes string, expendedCents, taxCents int64, expendedAt time.Time, categoryID *uuid.UUID) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Expense name cannot be empty")
	}
	if expendedCents < 0 || taxCents < 0 {
		return shared.NewDomainError("INVALID_AMOUNT", "Amounts cannot be negative")
	}

	e.Name = name
	e.Description = description
	e.Notes = notes
	e.ExpendedCents = expendedCents
	e.TaxCents = taxCents
	if !expendedAt.IsZero() {
		e.ExpendedAt = expendedAt
	}
	e.CategoryID = categoryID
	e.Touch()

	e.AddDomainEvent(NewExpenseUpdatedEvent(e))

	return nil
}

// IsFromInvoice reports whether the expense was created from an invoice
func (e *Expense) IsFromInvoice() bool {
	return e.InvoiceID != nil
}
