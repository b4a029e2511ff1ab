package finance

import (
	"time"

	"github.com/google/uuid"

	"github.com/kellertobias/servobill-sub000/internal/domain/finance"
)

// CreateExpenseRequest creates a new manually entered expense
type CreateExpenseRequest struct {
	Name          string     `json:"name" binding:"required"`
	Description   string     `json:"description"`
	Notes         string     `json:"notes"`
	ExpendedCents int64      `json:"expended_cents"`
	TaxCents      int64      `json:"tax_cents"`
	ExpendedAt    *time.Time `json:"expended_at"`
	CategoryID    *uuid.UUID `json:"category_id"`
}

// UpdateExpenseRequest updates an expense; nil fields are left untouched
type UpdateExpenseRequest struct {
	Name          *string    `json:"name"`
	Description   *string    `json:"description"`
	Notes         *string    `json:"notes"`
	ExpendedCents *int64     `json:"expended_cents"`
	TaxCents      *int64     `json:"tax_cents"`
	ExpendedAt    *time.Time `json:"expended_at"`
	CategoryID    *uuid.UUID `json:"category_id"`
}

// ExpenseListFilter narrows and pages the expense list
type ExpenseListFilter struct {
	Search         string     `form:"search"`
	CategoryID     *uuid.UUID `form:"category_id"`
	InvoiceID      *uuid.UUID `form:"invoice_id"`
	ExpendedAfter  *time.Time `form:"expended_after"`
	ExpendedBefore *time.Time `form:"expended_before"`
	Page           int        `form:"page"`
	PageSize       int        `form:"page_size"`
	OrderBy        string     `form:"order_by"`
	OrderDir       string     `form:"order_dir"`
}

// ExpenseResponse is the expense view
type ExpenseResponse struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	ExpendedAt    time.Time  `json:"expended_at"`
	ExpendedCents int64      `json:"expended_cents"`
	TaxCents      int64      `json:"tax_cents"`
	CategoryID    *uuid.UUID `json:"category_id,omitempty"`
	InvoiceID     *uuid.UUID `json:"invoice_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// CategoryRequest creates or updates an expense category
type CategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Color       string `json:"color"`
	Description string `json:"description"`
	IsDefault   bool   `json:"is_default"`
	SortOrder   int    `json:"sort_order"`
}

// CategoryResponse is the category view
type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Color       string    `json:"color,omitempty"`
	Description string    `json:"description,omitempty"`
	IsDefault   bool      `json:"is_default"`
	SortOrder   int       `json:"sort_order"`
}

// ToExpenseResponse converts a domain expense to its view
func ToExpenseResponse(expense *finance.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:            expense.GetID(),
		Name:          expense.Name,
		Description:   expense.Description,
		Notes:         expense.Notes,
		ExpendedAt:    expense.ExpendedAt,
		ExpendedCents: expense.ExpendedCents,
		TaxCents:      expense.TaxCents,
		CategoryID:    expense.CategoryID,
		InvoiceID:     expense.InvoiceID,
		CreatedAt:     expense.CreatedAt,
		UpdatedAt:     expense.UpdatedAt,
	}
}

// ToExpenseResponses converts a list of domain expenses
func ToExpenseResponses(expenses []finance.Expense) []ExpenseResponse {
	out := make([]ExpenseResponse, 0, len(expenses))
	for idx := range expenses {
		out = append(out, ToExpenseResponse(&expenses[idx]))
	}
	return out
}

// ToCategoryResponse converts a domain category to its view
func ToCategoryResponse(category *finance.ExpenseCategory) CategoryResponse {
	return CategoryResponse{
		ID:          category.GetID(),
		Name:        category.Name,
		Color:       category.Color,
		Description: category.Description,
		IsDefault:   category.IsDefault,
		SortOrder:   category.SortOrder,
	}
}

// ToCategoryResponses converts a list of domain categories
func ToCategoryResponses(categories []finance.ExpenseCategory) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for idx := range categories {
		out = append(out, ToCategoryResponse(&categories[idx]))
	}
	return out
}
