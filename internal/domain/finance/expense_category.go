package finance

import (
	"github.com/google/uuid"

	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
)

// ExpenseCategory groups expenses for reporting. Categories referenced by a
// linked-expense entry may be deleted; the dangling reference is tolerated.
type ExpenseCategory struct {
	shared.TenantAggregateRoot
	Name        string `gorm:"type:varchar(100);not null"`
	Color       string `gorm:"type:varchar(20)"`
	Description string `gorm:"type:text"`
	IsDefault   bool   `gorm:"not null;default:false"`
	SortOrder   int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ExpenseCategory) TableName() string {
	return "expense_categories"
}

// NewExpenseCategory creates a new category
func NewExpenseCategory(tenantID uuid.UUID, name string) (*ExpenseCategory, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}

	return &ExpenseCategory{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
	}, nil
}

// Update replaces the category's editable fields
func (c *ExpenseCategory) Update(name, color, description string, isDefault bool, sortOrder int) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}

	c.Name = name
	c.Color = color
	c.Description = description
	c.IsDefault = isDefault
	c.SortOrder = sortOrder
	c.Touch()

	return nil
}
