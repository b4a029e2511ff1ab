package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	partnerapp "github.com/kellertobias/servobill-sub000/internal/application/partner"
)

// CustomerImportHandler handles bulk customer import from CSV uploads
type CustomerImportHandler struct {
	BaseHandler
	importService *partnerapp.CustomerImportService
}

// NewCustomerImportHandler creates a new CustomerImportHandler
func NewCustomerImportHandler(importService *partnerapp.CustomerImportService) *CustomerImportHandler {
	return &CustomerImportHandler{importService: importService}
}

// RegisterRoutes mounts the customer import routes
func (h *CustomerImportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	imports := rg.Group("/customer-imports")
	{
		imports.POST("", h.Import)
		imports.GET("/:id", h.GetSession)
	}
}

// Import accepts a CSV upload and imports its customers. The file must be
// sent as the multipart form field "file".
func (h *CustomerImportHandler) Import(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Missing file upload")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Unreadable file upload")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.BadRequest(c, "Unreadable file upload")
		return
	}

	summary, err := h.importService.Import(c.Request.Context(), tenantID, fileHeader.Filename, data)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if summary.ErrorRows > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "data": summary})
		return
	}
	h.Created(c, summary)
}

// GetSession returns a stored import session for status polling
func (h *CustomerImportHandler) GetSession(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID format")
		return
	}

	session, err := h.importService.GetSession(c.Request.Context(), tenantID, sessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, session)
}
