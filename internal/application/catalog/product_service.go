package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/kellertobias/servobill-sub000/internal/domain/catalog"
	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
)

// ProductService handles product-related business operations
type ProductService struct {
	products catalog.ProductRepository
}

// NewProductService creates a new ProductService
func NewProductService(products catalog.ProductRepository) *ProductService {
	return &ProductService{products: products}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, tenantID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(tenantID, req.Name, req.UnitPriceCents, req.TaxPercentage)
	if err != nil {
		return nil, err
	}

	if req.Category != "" || req.Description != "" || req.Notes != "" || req.Unit != "" {
		if err := product.Update(req.Name, req.Category, req.Description, req.Notes, req.Unit, req.UnitPriceCents, req.TaxPercentage); err != nil {
			return nil, err
		}
	}

	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by id
func (s *ProductService) GetByID(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.products.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves products with filtering and pagination
func (s *ProductService) List(ctx context.Context, tenantID uuid.UUID, filter ProductListFilter) ([]ProductResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Category != "" {
		domainFilter.Filters["category"] = filter.Category
	}

	products, err := s.products.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.products.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToProductResponses(products), total, nil
}

// Update updates a product. Invoice items keep their own copy of the product
// fields, so this never changes existing documents.
func (s *ProductService) Update(ctx context.Context, tenantID, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.products.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	name := product.Name
	category := product.Category
	description := product.Description
	notes := product.Notes
	unit := product.Unit
	unitPriceCents := product.UnitPriceCents
	taxPercentage := product.TaxPercentage

	if req.Name != nil {
		name = *req.Name
	}
	if req.Category != nil {
		category = *req.Category
	}
	if req.Description != nil {
		description = *req.Description
	}
	if req.Notes != nil {
		notes = *req.Notes
	}
	if req.Unit != nil {
		unit = *req.Unit
	}
	if req.UnitPriceCents != nil {
		unitPriceCents = *req.UnitPriceCents
	}
	if req.TaxPercentage != nil {
		taxPercentage = *req.TaxPercentage
	}

	if err := product.Update(name, category, description, notes, unit, unitPriceCents, taxPercentage); err != nil {
		return nil, err
	}
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// Delete deletes a product
func (s *ProductService) Delete(ctx context.Context, tenantID, productID uuid.UUID) error {
	return s.products.Delete(ctx, tenantID, productID)
}
