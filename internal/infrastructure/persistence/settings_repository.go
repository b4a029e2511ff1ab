package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kellertobias/servobill-sub000/internal/domain/billing"
	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
)

// GormSettingsRepository implements SettingsRepository using GORM
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a new GormSettingsRepository
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// FindForTenant loads the billing settings of a tenant
func (r *GormSettingsRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID) (*billing.BillingSettings, error) {
	var settings billing.BillingSettings
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&settings).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotConfigured
		}
		return nil, err
	}
	return &settings, nil
}

// Save creates or updates the billing settings
func (r *GormSettingsRepository) Save(ctx context.Context, settings *billing.BillingSettings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}

// NextNumber advances the numbering sequence for the given kind under a row
// lock. Holding the lock until commit serializes concurrent first-sends, so
// two documents can never be issued the same number.
func (r *GormSettingsRepository) NextNumber(ctx context.Context, tenantID uuid.UUID, kind billing.DocumentKind) (string, error) {
	var number string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx
		// SQLite serializes writers on its own and rejects FOR UPDATE
		if tx.Dialector.Name() == "postgres" {
			query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var settings billing.BillingSettings
		if err := query.Where("tenant_id = ?", tenantID).First(&settings).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotConfigured
			}
			return err
		}

		next, err := settings.NextNumber(kind, time.Now())
		if err != nil {
			return err
		}
		number = next

		return tx.Save(&settings).Error
	})
	if err != nil {
		return "", err
	}
	return number, nil
}

var _ billing.SettingsRepository = (*GormSettingsRepository)(nil)
