package finance

import (
	"context"

	"github.com/google/uuid"

	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
)

// ExpenseRepository defines the persistence contract for expenses
type ExpenseRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Expense, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Expense, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, expense *Expense) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// ExpenseCategoryRepository defines the persistence contract for categories
type ExpenseCategoryRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ExpenseCategory, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]ExpenseCategory, error)
	Save(ctx context.Context, category *ExpenseCategory) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
