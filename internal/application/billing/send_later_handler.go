package billing

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kellertobias/servobill-sub000/internal/domain/billing"
	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
)

// SendLaterHandler executes deferred sends when the scheduler re-drives the
// stored job payload through the bus.
type SendLaterHandler struct {
	service *InvoiceService
	logger  *zap.Logger
}

// NewSendLaterHandler creates a new handler for deferred send events
func NewSendLaterHandler(service *InvoiceService, logger *zap.Logger) *SendLaterHandler {
	return &SendLaterHandler{service: service, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *SendLaterHandler) EventTypes() []string {
	return []string{billing.EventTypeInvoiceSendLater}
}

// Handle performs the deferred send on behalf of the scheduling user
func (h *SendLaterHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	later, ok := event.(*billing.InvoiceSendLaterEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			billing.EventTypeInvoiceSendLater, event.EventType())
	}

	h.logger.Info("executing deferred send",
		zap.String("invoice_id", later.InvoiceID.String()),
		zap.String("user", later.UserName))
	return h.service.ExecuteScheduledSend(ctx, later.TenantID(), later.InvoiceID, later.UserName)
}

var _ shared.EventHandler = (*SendLaterHandler)(nil)
