package billing

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kellertobias/servobill-sub000/internal/domain/billing"
	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
)

// EmailWebhookService processes inbound delivery notifications from the email
// provider. Deduplication is two-layered: the idempotency store filters fast
// redeliveries, and the aggregate's processed-event set catches everything
// that outlives the store TTL.
type EmailWebhookService struct {
	invoices *InvoiceService
	store    shared.IdempotencyStore
	config   shared.IdempotencyConfig
	logger   *zap.Logger
}

// NewEmailWebhookService creates a new EmailWebhookService
func NewEmailWebhookService(invoices *InvoiceService, store shared.IdempotencyStore, logger *zap.Logger) *EmailWebhookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailWebhookService{
		invoices: invoices,
		store:    store,
		config:   shared.DefaultIdempotencyConfig(),
		logger:   logger,
	}
}

// DeliveryNotification is one inbound webhook event
type DeliveryNotification struct {
	EventID   string    `json:"event_id" binding:"required"`
	InvoiceID uuid.UUID `json:"invoice_id" binding:"required"`
	State     string    `json:"state" binding:"required"`
}

// Process records the delivery state on the document's activity log
func (s *EmailWebhookService) Process(ctx context.Context, tenantID uuid.UUID, notification DeliveryNotification) error {
	activityType, err := deliveryActivityType(notification.State)
	if err != nil {
		return err
	}

	isNew, err := s.store.MarkProcessed(ctx, notification.EventID, s.config.TTL)
	if err != nil {
		// fall through to the aggregate-level dedup
		s.logger.Warn("idempotency store unavailable for webhook dedup",
			zap.String("event_id", notification.EventID),
			zap.Error(err))
	} else if !isNew {
		s.logger.Debug("duplicate delivery notification, skipping",
			zap.String("event_id", notification.EventID))
		return nil
	}

	return s.invoices.RecordEmailDelivery(ctx, tenantID, notification.InvoiceID, notification.EventID, activityType)
}

func deliveryActivityType(state string) (billing.ActivityType, error) {
	switch state {
	case "delivered":
		return billing.ActivityTypeEmailDelivered, nil
	case "bounced":
		return billing.ActivityTypeEmailBounced, nil
	case "opened":
		return billing.ActivityTypeEmailOpened, nil
	default:
		return "", shared.NewDomainError("INVALID_DELIVERY_STATE", "Delivery state must be delivered, bounced or opened")
	}
}
