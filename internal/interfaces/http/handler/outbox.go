package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	eventapp "github.com/kellertobias/servobill-sub000/internal/application/event"
)

// OutboxHandler exposes the outbox admin API: delivery stats, dead-letter
// inspection and manual retries.
type OutboxHandler struct {
	BaseHandler
	outboxService *eventapp.OutboxService
}

// NewOutboxHandler creates a new OutboxHandler
func NewOutboxHandler(outboxService *eventapp.OutboxService) *OutboxHandler {
	return &OutboxHandler{outboxService: outboxService}
}

// RegisterRoutes mounts the outbox admin routes
func (h *OutboxHandler) RegisterRoutes(rg *gin.RouterGroup) {
	outbox := rg.Group("/outbox")
	{
		outbox.GET("/stats", h.Stats)
		outbox.GET("/dead-letters", h.ListDeadLetters)
		outbox.GET("/dead-letters/:id", h.Get)
		outbox.POST("/dead-letters/:id/retry", h.Retry)
		outbox.POST("/dead-letters/retry-all", h.RetryAll)
	}
}

// Stats returns entry counts per delivery status
func (h *OutboxHandler) Stats(c *gin.Context) {
	stats, err := h.outboxService.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// ListDeadLetters returns a page of dead-letter entries
func (h *OutboxHandler) ListDeadLetters(c *gin.Context) {
	var query eventapp.DeadLetterQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.outboxService.ListDeadLetters(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Entries, page.Total, page.Page, page.PageSize)
}

// Get returns a single outbox entry
func (h *OutboxHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	entry, err := h.outboxService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// Retry resets a dead entry so the processor picks it up again
func (h *OutboxHandler) Retry(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	entry, err := h.outboxService.Retry(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// RetryAll resets every dead entry
func (h *OutboxHandler) RetryAll(c *gin.Context) {
	count, err := h.outboxService.RetryAll(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"retried": count})
}
