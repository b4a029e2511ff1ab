package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kellertobias/servobill-sub000/internal/domain/billing"
	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
)

// GormDeferredJobRepository implements DeferredJobRepository using GORM
type GormDeferredJobRepository struct {
	db *gorm.DB
}

// NewGormDeferredJobRepository creates a new GormDeferredJobRepository
func NewGormDeferredJobRepository(db *gorm.DB) *GormDeferredJobRepository {
	return &GormDeferredJobRepository{db: db}
}

// Create persists a new deferred job
func (r *GormDeferredJobRepository) Create(ctx context.Context, job *billing.DeferredJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// FindByID finds a deferred job by its ID
func (r *GormDeferredJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.DeferredJob, error) {
	var job billing.DeferredJob
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// FindDue returns jobs whose run-after time has passed, oldest first
func (r *GormDeferredJobRepository) FindDue(ctx context.Context, before time.Time, limit int) ([]*billing.DeferredJob, error) {
	var jobs []*billing.DeferredJob
	err := r.db.WithContext(ctx).
		Where("run_after <= ?", before.Unix()).
		Order("run_after ASC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}

// Delete removes a deferred job. Deleting an already removed job is not an
// error so cancel and execute can race safely.
func (r *GormDeferredJobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&billing.DeferredJob{}, "id = ?", id).Error
}

var _ billing.DeferredJobRepository = (*GormDeferredJobRepository)(nil)
