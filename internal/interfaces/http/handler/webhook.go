package handler

import (
	"github.com/gin-gonic/gin"

	billingapp "github.com/kellertobias/servobill-sub000/internal/application/billing"
)

// WebhookHandler receives delivery notifications from the email provider
type WebhookHandler struct {
	BaseHandler
	webhookService *billingapp.EmailWebhookService
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(webhookService *billingapp.EmailWebhookService) *WebhookHandler {
	return &WebhookHandler{webhookService: webhookService}
}

// RegisterRoutes mounts the webhook routes
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/email", h.EmailDelivery)
}

// EmailDelivery records a delivered, bounced or opened notification on the
// matching document. Redeliveries of the same provider event are absorbed.
func (h *WebhookHandler) EmailDelivery(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var notification billingapp.DeliveryNotification
	if err := c.ShouldBindJSON(&notification); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.webhookService.Process(c.Request.Context(), tenantID, notification); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
