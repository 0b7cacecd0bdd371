package catalog

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/salesdesk/backend/internal/domain/catalog"
	"github.com/salesdesk/backend/internal/domain/identity"
	"github.com/salesdesk/backend/internal/domain/shared"
	"github.com/salesdesk/backend/internal/infrastructure/logger"
)

// DefaultPageSize caps listing pages when the request does not say
const DefaultPageSize = 20

// ProductService handles product master operations
type ProductService struct {
	products   catalog.ProductRepository
	categories catalog.CategoryRepository
}

// NewProductService creates a new ProductService
func NewProductService(products catalog.ProductRepository, categories catalog.CategoryRepository) *ProductService {
	return &ProductService{products: products, categories: categories}
}

// Create creates a new product with its validity window
func (s *ProductService) Create(ctx context.Context, caller identity.Caller, req CreateProductRequest) (*ProductResponse, error) {
	if !caller.Privilege.AtLeast(identity.PrivilegeEditor) {
		return nil, shared.ErrForbidden
	}

	p, err := catalog.NewProduct(caller.TenantID, caller.UserID, req.ProductCode, req.ProductName, req.StartDate, req.EndDate, req.UnitPrice)
	if err != nil {
		return nil, err
	}
	p.Unit = req.Unit
	p.Description = req.Description

	if req.ProductCategoryID != nil {
		if _, err := s.categories.FindByID(ctx, caller.TenantID, *req.ProductCategoryID); err != nil {
			return nil, shared.NewValidationError("product_category_id", "unknown category")
		}
		p.ProductCategoryID = req.ProductCategoryID
	}

	if err := s.products.Save(ctx, p); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("product created",
		zap.String("product_code", p.ProductCode))
	return ToProductResponse(p), nil
}

// Get retrieves one product
func (s *ProductService) Get(ctx context.Context, caller identity.Caller, id uuid.UUID) (*ProductResponse, error) {
	p, err := s.products.FindByID(ctx, caller.TenantID, id)
	if err != nil {
		return nil, err
	}
	return ToProductResponse(p), nil
}

// List returns a page of products matching the filter
func (s *ProductService) List(ctx context.Context, caller identity.Caller, f ListFilter) (*ListResponse, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 || f.PageSize > 100 {
		f.PageSize = DefaultPageSize
	}

	products, total, err := s.products.FindAll(ctx, caller.TenantID, catalog.Filter{
		Keyword:    f.Keyword,
		CategoryID: f.CategoryID,
		Page:       f.Page,
		PageSize:   f.PageSize,
	})
	if err != nil {
		return nil, err
	}

	items := make([]ProductResponse, len(products))
	for i := range products {
		items[i] = *ToProductResponse(&products[i])
	}
	return &ListResponse{
		Items:    items,
		Total:    total,
		Page:     f.Page,
		PageSize: f.PageSize,
	}, nil
}

// Update applies a partial edit to a product. The product code is
// immutable; a new code means a new product.
func (s *ProductService) Update(ctx context.Context, caller identity.Caller, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	if !caller.Privilege.AtLeast(identity.PrivilegeEditor) {
		return nil, shared.ErrForbidden
	}

	p, err := s.products.FindByID(ctx, caller.TenantID, id)
	if err != nil {
		return nil, err
	}

	if req.ProductName != nil {
		p.ProductName = *req.ProductName
	}
	if req.StartDate != nil || req.EndDate != nil {
		start, end := p.StartDate, p.EndDate
		if req.StartDate != nil {
			start = *req.StartDate
		}
		if req.EndDate != nil {
			end = *req.EndDate
		}
		if err := p.SetValidity(start, end); err != nil {
			return nil, err
		}
	}
	if req.ProductCategoryID != nil {
		if _, err := s.categories.FindByID(ctx, caller.TenantID, *req.ProductCategoryID); err != nil {
			return nil, shared.NewValidationError("product_category_id", "unknown category")
		}
		p.ProductCategoryID = req.ProductCategoryID
	}
	if req.UnitPrice != nil {
		if err := p.SetUnitPrice(*req.UnitPrice); err != nil {
			return nil, err
		}
	}
	if req.Unit != nil {
		p.Unit = *req.Unit
	}
	if req.Description != nil {
		p.Description = *req.Description
	}

	p.UpdateUserID = &caller.UserID
	if err := s.products.Save(ctx, p); err != nil {
		return nil, err
	}
	return ToProductResponse(p), nil
}

// Delete soft-deletes a product. Blocked while the product is
// referenced by any non-cancelled order.
func (s *ProductService) Delete(ctx context.Context, caller identity.Caller, id uuid.UUID) error {
	if !caller.Privilege.AtLeast(identity.PrivilegeEditor) {
		return shared.ErrForbidden
	}
	if err := s.products.Delete(ctx, caller.TenantID, id, caller.UserID); err != nil {
		return err
	}
	logger.L(ctx).Info("product deleted", zap.String("product_id", id.String()))
	return nil
}
