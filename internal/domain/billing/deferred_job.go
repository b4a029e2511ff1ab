package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
)

// DeferredJob describes an action to run at a future time. The invoice
// aggregate only creates and cancels these descriptors; an external scheduler
// executes them by re-driving the attached event payload through the bus.
type DeferredJob struct {
	shared.BaseEntity
	TenantID     uuid.UUID `gorm:"type:uuid;not null;index"`
	RunAfter     int64     `gorm:"not null;index"` // epoch seconds
	EventType    string    `gorm:"not null"`
	EventPayload []byte    `gorm:"type:jsonb"`
}

// NewDeferredJob creates a job that becomes due at runAfter
func NewDeferredJob(tenantID uuid.UUID, runAfter time.Time) *DeferredJob {
	return &DeferredJob{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		RunAfter:   runAfter.Unix(),
	}
}

// AttachEvent stores the event the scheduler should fire when the job is due
func (j *DeferredJob) AttachEvent(eventType string, payload []byte) {
	j.EventType = eventType
	j.EventPayload = payload
	j.Touch()
}

// IsDue returns true once the job's run-after time has passed
func (j *DeferredJob) IsDue(now time.Time) bool {
	return now.Unix() >= j.RunAfter
}
