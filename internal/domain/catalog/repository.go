package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Filter narrows product listings
type Filter struct {
	Keyword    string
	CategoryID *uuid.UUID
	Page       int
	PageSize   int
}

// ProductRepository defines the interface for product persistence.
// All operations are tenant scoped and exclude soft-deleted rows.
type ProductRepository interface {
	// FindByID finds a product by ID within the tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)

	// FindByIDs loads multiple products at once
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Product, error)

	// FindByName finds products matching an exact name
	FindByName(ctx context.Context, tenantID uuid.UUID, name string) ([]Product, error)

	// FindAll lists products matching the filter
	FindAll(ctx context.Context, tenantID uuid.UUID, filter Filter) ([]Product, int64, error)

	// Save creates or updates a product
	Save(ctx context.Context, p *Product) error

	// Delete soft-deletes a product. It fails when the product is
	// still referenced by any non-cancelled sales order.
	Delete(ctx context.Context, tenantID, id uuid.UUID, deletedBy uuid.UUID) error
}

// CategoryRepository defines the interface for product category persistence
type CategoryRepository interface {
	// FindByID finds a category by ID within the tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*ProductCategory, error)

	// FindByName finds a category by its unique name within the tenant
	FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*ProductCategory, error)

	// FindAll lists all categories in the tenant
	FindAll(ctx context.Context, tenantID uuid.UUID) ([]ProductCategory, error)

	// Save creates or updates a category
	Save(ctx context.Context, c *ProductCategory) error

	// Delete soft-deletes a category
	Delete(ctx context.Context, tenantID, id uuid.UUID, deletedBy uuid.UUID) error
}
