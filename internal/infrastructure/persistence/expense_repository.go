package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kellertobias/servobill-sub000/internal/domain/finance"
	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
)

// GormExpenseRepository implements ExpenseRepository using GORM
type GormExpenseRepository struct {
	db     *gorm.DB
	events shared.OutboxEventSaver
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB, events shared.OutboxEventSaver) *GormExpenseRepository {
	return &GormExpenseRepository{db: db, events: events}
}

// FindByIDForTenant finds an expense by ID within a tenant
func (r *GormExpenseRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Expense, error) {
	var expense finance.Expense
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &expense, nil
}

// FindAllForTenant finds all expenses for a tenant
func (r *GormExpenseRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]finance.Expense, error) {
	var expenses []finance.Expense
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&finance.Expense{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

// CountForTenant counts expenses for a tenant
func (r *GormExpenseRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyConditions(
		r.db.WithContext(ctx).Model(&finance.Expense{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an expense and flushes its events into the outbox
func (r *GormExpenseRepository) Save(ctx context.Context, expense *finance.Expense) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(expense).Error; err != nil {
			return err
		}
		return expense.PurgeEvents(ctx, func(ctx context.Context, event shared.DomainEvent) error {
			return r.events.SaveEvents(ctx, tx, event)
		})
	})
}

// Delete deletes an expense within a tenant
func (r *GormExpenseRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&finance.Expense{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormExpenseRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyConditions(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("expended_at DESC")
	}

	return query
}

func (r *GormExpenseRepository) applyConditions(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ?", searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "category_id":
			query = query.Where("category_id = ?", value)
		case "invoice_id":
			query = query.Where("invoice_id = ?", value)
		case "expended_after":
			query = query.Where("expended_at >= ?", value)
		case "expended_before":
			query = query.Where("expended_at < ?", value)
		}
	}

	return query
}

var _ finance.ExpenseRepository = (*GormExpenseRepository)(nil)

// GormExpenseCategoryRepository implements ExpenseCategoryRepository using GORM
type GormExpenseCategoryRepository struct {
	db *gorm.DB
}

// NewGormExpenseCategoryRepository creates a new GormExpenseCategoryRepository
func NewGormExpenseCategoryRepository(db *gorm.DB) *GormExpenseCategoryRepository {
	return &GormExpenseCategoryRepository{db: db}
}

// FindByIDForTenant finds a category by ID within a tenant
func (r *GormExpenseCategoryRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.ExpenseCategory, error) {
	var category finance.ExpenseCategory
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// FindAllForTenant finds all categories for a tenant
func (r *GormExpenseCategoryRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]finance.ExpenseCategory, error) {
	var categories []finance.ExpenseCategory
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("sort_order ASC, name ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// Save creates or updates a category
func (r *GormExpenseCategoryRepository) Save(ctx context.Context, category *finance.ExpenseCategory) error {
	return r.db.WithContext(ctx).Save(category).Error
}

// Delete deletes a category within a tenant
func (r *GormExpenseCategoryRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&finance.ExpenseCategory{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ finance.ExpenseCategoryRepository = (*GormExpenseCategoryRepository)(nil)
