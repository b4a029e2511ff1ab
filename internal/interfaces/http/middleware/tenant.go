package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kellertobias/servobill-sub000/internal/interfaces/http/dto"
)

// Tenant context keys and headers
const (
	TenantIDKey     = "tenant_id"
	TenantHeaderKey = "X-Tenant-ID"
)

// TenantConfig holds configuration for the tenant middleware
type TenantConfig struct {
	// SkipPaths don't require tenant context (health checks, webhooks with
	// their own tenant resolution)
	SkipPaths []string
	// DefaultTenantID is used when no header is sent; meant for single-tenant
	// and development setups, leave nil to require the header
	DefaultTenantID *uuid.UUID
}

// DefaultTenantConfig requires the X-Tenant-ID header on every API route
func DefaultTenantConfig() TenantConfig {
	return TenantConfig{
		SkipPaths: []string{"/health", "/ready"},
	}
}

// Tenant resolves the tenant from the X-Tenant-ID header and stores it in the
// request context. Requests without a resolvable tenant are rejected.
func Tenant(cfg TenantConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip || strings.HasPrefix(path, skip+"/") {
				c.Next()
				return
			}
		}

		header := c.GetHeader(TenantHeaderKey)
		if header == "" {
			if cfg.DefaultTenantID != nil {
				c.Set(TenantIDKey, *cfg.DefaultTenantID)
				c.Next()
				return
			}
			abortUnauthorized(c, "Tenant identification required")
			return
		}

		tenantID, err := uuid.Parse(header)
		if err != nil {
			abortUnauthorized(c, "Invalid tenant ID format")
			return
		}

		c.Set(TenantIDKey, tenantID)
		c.Next()
	}
}

// GetTenantID retrieves the tenant id resolved by the Tenant middleware
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(TenantIDKey)
	if !exists {
		return uuid.Nil, false
	}
	tenantID, ok := v.(uuid.UUID)
	return tenantID, ok
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID("UNAUTHORIZED", message, GetRequestID(c)))
}
