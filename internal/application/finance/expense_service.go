package finance

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kellertobias/servobill-sub000/internal/domain/finance"
	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
)

// ExpenseService handles expense-related business operations. Expenses
// auto-created from sent invoices flow through the invoice-published handler
// instead; this service covers the manual entry path.
type ExpenseService struct {
	expenses   finance.ExpenseRepository
	categories finance.ExpenseCategoryRepository
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(expenses finance.ExpenseRepository, categories finance.ExpenseCategoryRepository) *ExpenseService {
	return &ExpenseService{expenses: expenses, categories: categories}
}

// Create creates a new manually entered expense
func (s *ExpenseService) Create(ctx context.Context, tenantID uuid.UUID, req CreateExpenseRequest) (*ExpenseResponse, error) {
	if req.CategoryID != nil {
		if _, err := s.categories.FindByIDForTenant(ctx, tenantID, *req.CategoryID); err != nil {
			return nil, shared.NewDomainError("INVALID_CATEGORY", "Expense category not found")
		}
	}

	expendedAt := time.Now()
	if req.ExpendedAt != nil {
		expendedAt = *req.ExpendedAt
	}
	expense, err := finance.NewExpense(tenantID, req.Name, req.ExpendedCents, expendedAt)
	if err != nil {
		return nil, err
	}
	if req.Description != "" || req.Notes != "" || req.TaxCents != 0 || req.CategoryID != nil {
		if err := expense.Update(req.Name, req.Description, req.Notes, req.ExpendedCents, req.TaxCents, expendedAt, req.CategoryID); err != nil {
			return nil, err
		}
	}

	if err := s.expenses.Save(ctx, expense); err != nil {
		return nil, err
	}

	response := ToExpenseResponse(expense)
	return &response, nil
}

// GetByID retrieves an expense by id
func (s *ExpenseService) GetByID(ctx context.Context, tenantID, expenseID uuid.UUID) (*ExpenseResponse, error) {
	expense, err := s.expenses.FindByIDForTenant(ctx, tenantID, expenseID)
	if err != nil {
		return nil, err
	}

	response := ToExpenseResponse(expense)
	return &response, nil
}

// List retrieves expenses with filtering and pagination
func (s *ExpenseService) List(ctx context.Context, tenantID uuid.UUID, filter ExpenseListFilter) ([]ExpenseResponse, int64, error) {
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
		Filters:  make(map[string]interface{}),
	}
	if filter.CategoryID != nil {
		domainFilter.Filters["category_id"] = *filter.CategoryID
	}
	if filter.InvoiceID != nil {
		domainFilter.Filters["invoice_id"] = *filter.InvoiceID
	}
	if filter.ExpendedAfter != nil {
		domainFilter.Filters["expended_after"] = *filter.ExpendedAfter
	}
	if filter.ExpendedBefore != nil {
		domainFilter.Filters["expended_before"] = *filter.ExpendedBefore
	}

	expenses, err := s.expenses.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.expenses.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToExpenseResponses(expenses), total, nil
}

// Update updates an expense
func (s *ExpenseService) Update(ctx context.Context, tenantID, expenseID uuid.UUID, req UpdateExpenseRequest) (*ExpenseResponse, error) {
	expense, err := s.expenses.FindByIDForTenant(ctx, tenantID, expenseID)
	if err != nil {
		return nil, err
	}

	name := expense.Name
	description := expense.Description
	notes := expense.Notes
	expendedCents := expense.ExpendedCents
	taxCents := expense.TaxCents
	expendedAt := expense.ExpendedAt
	categoryID := expense.CategoryID

	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		description = *req.Description
	}
	if req.Notes != nil {
		notes = *req.Notes
	}
	if req.ExpendedCents != nil {
		expendedCents = *req.ExpendedCents
	}
	if req.TaxCents != nil {
		taxCents = *req.TaxCents
	}
	if req.ExpendedAt != nil {
		expendedAt = *req.ExpendedAt
	}
	if req.CategoryID != nil {
		if _, err := s.categories.FindByIDForTenant(ctx, tenantID, *req.CategoryID); err != nil {
			return nil, shared.NewDomainError("INVALID_CATEGORY", "Expense category not found")
		}
		categoryID = req.CategoryID
	}

	if err := expense.Update(name, description, notes, expendedCents, taxCents, expendedAt, categoryID); err != nil {
		return nil, err
	}
	if err := s.expenses.Save(ctx, expense); err != nil {
		return nil, err
	}

	response := ToExpenseResponse(expense)
	return &response, nil
}

// Delete deletes an expense
func (s *ExpenseService) Delete(ctx context.Context, tenantID, expenseID uuid.UUID) error {
	return s.expenses.Delete(ctx, tenantID, expenseID)
}

// ListCategories returns all categories of the tenant
func (s *ExpenseService) ListCategories(ctx context.Context, tenantID uuid.UUID) ([]CategoryResponse, error) {
	categories, err := s.categories.FindAllForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return ToCategoryResponses(categories), nil
}

// CreateCategory creates a new expense category
func (s *ExpenseService) CreateCategory(ctx context.Context, tenantID uuid.UUID, req CategoryRequest) (*CategoryResponse, error) {
	category, err := finance.NewExpenseCategory(tenantID, req.Name)
	if err != nil {
		return nil, err
	}
	if err := category.Update(req.Name, req.Color, req.Description, req.IsDefault, req.SortOrder); err != nil {
		return nil, err
	}

	if err := s.categories.Save(ctx, category); err != nil {
		return nil, err
	}

	response := ToCategoryResponse(category)
	return &response, nil
}

// UpdateCategory updates an expense category
func (s *ExpenseService) UpdateCategory(ctx context.Context, tenantID, categoryID uuid.UUID, req CategoryRequest) (*CategoryResponse, error) {
	category, err := s.categories.FindByIDForTenant(ctx, tenantID, categoryID)
	if err != nil {
		return nil, err
	}

	if err := category.Update(req.Name, req.Color, req.Description, req.IsDefault, req.SortOrder); err != nil {
		return nil, err
	}
	if err := s.categories.Save(ctx, category); err != nil {
		return nil, err
	}

	response := ToCategoryResponse(category)
	return &response, nil
}

// DeleteCategory deletes a category. Expenses keep their dangling category id;
// readers tolerate it.
func (s *ExpenseService) DeleteCategory(ctx context.Context, tenantID, categoryID uuid.UUID) error {
	return s.categories.Delete(ctx, tenantID, categoryID)
}
