package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kellertobias/servobill-sub000/internal/domain/billing"
	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
)

// GormInvoiceRepository implements InvoiceRepository using GORM.
//
// Save commits the aggregate with an optimistic version check and then flushes
// the buffered domain events into the transactional outbox, all inside one
// transaction. The background outbox processor owns delivery from there.
type GormInvoiceRepository struct {
	db     *gorm.DB
	events shared.OutboxEventSaver
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB, events shared.OutboxEventSaver) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db, events: events}
}

// FindByIDForTenant finds a document by ID within a tenant
func (r *GormInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Invoice, error) {
	var invoice billing.Invoice
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindAllForTenant finds all documents for a tenant matching the filter
func (r *GormInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]billing.Invoice, error) {
	var invoices []billing.Invoice
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&billing.Invoice{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// CountForTenant counts documents for a tenant matching the filter
func (r *GormInvoiceRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&billing.Invoice{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create builds a new draft document, persists it and returns it
func (r *GormInvoiceRepository) Create(ctx context.Context, tenantID uuid.UUID, kind billing.DocumentKind, customer billing.CustomerSnapshot, user string) (*billing.Invoice, error) {
	invoice, err := billing.NewInvoice(tenantID, kind, customer, user)
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(invoice).Error; err != nil {
			return err
		}
		return invoice.PurgeEvents(ctx, func(ctx context.Context, event shared.DomainEvent) error {
			return r.events.SaveEvents(ctx, tx, event)
		})
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// Save commits the aggregate and flushes its events into the outbox
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		currentVersion := invoice.Version
		invoice.IncrementVersion()

		result := tx.Model(invoice).
			Select("*").
			Omit("created_at").
			Where("version = ?", currentVersion).
			Updates(invoice)
		if result.Error != nil {
			invoice.Version = currentVersion
			return result.Error
		}
		if result.RowsAffected == 0 {
			invoice.Version = currentVersion
			return shared.ErrConcurrencyConflict
		}

		return invoice.PurgeEvents(ctx, func(ctx context.Context, event shared.DomainEvent) error {
			return r.events.SaveEvents(ctx, tx, event)
		})
	})
}

// Delete removes a document; only drafts may be deleted
func (r *GormInvoiceRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	invoice, err := r.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if !invoice.IsDraft() {
		return shared.NewDomainError("INVOICE_NOT_DELETABLE", "Only drafts can be deleted")
	}

	result := r.db.WithContext(ctx).
		Delete(&billing.Invoice{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

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
		query = query.Order("created_at DESC")
	}

	return query
}

func (r *GormInvoiceRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(invoice_number) LIKE ? OR LOWER(offer_number) LIKE ? OR LOWER(subject) LIKE ?",
			searchPattern, searchPattern, searchPattern,
		)
	}

	for key, value := range filter.Filters {
		switch key {
		case "kind":
			query = query.Where("kind = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		}
	}

	return query
}

var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
