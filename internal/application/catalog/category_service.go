package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/salesdesk/backend/internal/domain/catalog"
	"github.com/salesdesk/backend/internal/domain/identity"
	"github.com/salesdesk/backend/internal/domain/shared"
)

// CategoryService handles product category operations
type CategoryService struct {
	categories catalog.CategoryRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categories catalog.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

// Create creates a new category. Names are unique within the tenant.
func (s *CategoryService) Create(ctx context.Context, caller identity.Caller, req CategoryRequest) (*CategoryResponse, error) {
	if !caller.Privilege.AtLeast(identity.PrivilegeEditor) {
		return nil, shared.ErrForbidden
	}

	if _, err := s.categories.FindByName(ctx, caller.TenantID, req.ProductCategoryName); err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A category with this name already exists")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	c, err := catalog.NewProductCategory(caller.TenantID, caller.UserID, req.ProductCategoryName)
	if err != nil {
		return nil, err
	}
	if err := s.categories.Save(ctx, c); err != nil {
		return nil, err
	}
	return ToCategoryResponse(c), nil
}

// List returns all categories in the tenant
func (s *CategoryService) List(ctx context.Context, caller identity.Caller) ([]CategoryResponse, error) {
	categories, err := s.categories.FindAll(ctx, caller.TenantID)
	if err != nil {
		return nil, err
	}
	items := make([]CategoryResponse, len(categories))
	for i := range categories {
		items[i] = *ToCategoryResponse(&categories[i])
	}
	return items, nil
}

// Update renames a category
func (s *CategoryService) Update(ctx context.Context, caller identity.Caller, id uuid.UUID, req CategoryRequest) (*CategoryResponse, error) {
	if !caller.Privilege.AtLeast(identity.PrivilegeEditor) {
		return nil, shared.ErrForbidden
	}

	c, err := s.categories.FindByID(ctx, caller.TenantID, id)
	if err != nil {
		return nil, err
	}
	if existing, err := s.categories.FindByName(ctx, caller.TenantID, req.ProductCategoryName); err == nil && existing.ID != id {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A category with this name already exists")
	}

	c.ProductCategoryName = req.ProductCategoryName
	c.UpdateUserID = &caller.UserID
	if err := s.categories.Save(ctx, c); err != nil {
		return nil, err
	}
	return ToCategoryResponse(c), nil
}

// Delete soft-deletes a category. Products keep their category id;
// lookups on a deleted category simply return nothing.
func (s *CategoryService) Delete(ctx context.Context, caller identity.Caller, id uuid.UUID) error {
	if !caller.Privilege.AtLeast(identity.PrivilegeEditor) {
		return shared.ErrForbidden
	}
	return s.categories.Delete(ctx, caller.TenantID, id, caller.UserID)
}
