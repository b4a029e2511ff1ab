package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kellertobias/servobill-sub000/internal/domain/catalog"
)

// CreateProductRequest creates a new product
type CreateProductRequest struct {
	Name           string          `json:"name" binding:"required"`
	Category       string          `json:"category"`
	Description    string          `json:"description"`
	Notes          string          `json:"notes"`
	Unit           string          `json:"unit"`
	UnitPriceCents int64           `json:"unit_price_cents"`
	TaxPercentage  decimal.Decimal `json:"tax_percentage"`
}

// UpdateProductRequest updates a product; nil fields are left untouched
type UpdateProductRequest struct {
	Name           *string          `json:"name"`
	Category       *string          `json:"category"`
	Description    *string          `json:"description"`
	Notes          *string          `json:"notes"`
	Unit           *string          `json:"unit"`
	UnitPriceCents *int64           `json:"unit_price_cents"`
	TaxPercentage  *decimal.Decimal `json:"tax_percentage"`
}

// ProductListFilter narrows and pages the product list
type ProductListFilter struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir"`
}

// ProductResponse is the product view
type ProductResponse struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Category       string          `json:"category,omitempty"`
	Description    string          `json:"description,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	Unit           string          `json:"unit,omitempty"`
	UnitPriceCents int64           `json:"unit_price_cents"`
	TaxPercentage  decimal.Decimal `json:"tax_percentage"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ToProductResponse converts a domain product to its view
func ToProductResponse(product *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:             product.GetID(),
		Name:           product.Name,
		Category:       product.Category,
		Description:    product.Description,
		Notes:          product.Notes,
		Unit:           product.Unit,
		UnitPriceCents: product.UnitPriceCents,
		TaxPercentage:  product.TaxPercentage,
		CreatedAt:      product.CreatedAt,
		UpdatedAt:      product.UpdatedAt,
	}
}

// ToProductResponses converts a list of domain products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for idx := range products {
		out = append(out, ToProductResponse(&products[idx]))
	}
	return out
}
