package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/salesdesk/backend/internal/domain/catalog"
	"github.com/salesdesk/backend/internal/domain/shared"
	"github.com/salesdesk/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormCategoryRepository implements catalog.CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByID finds a category by ID within the tenant
func (r *GormCategoryRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*catalog.ProductCategory, error) {
	var c catalog.ProductCategory
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID), tenant.NotDeleted).
		First(&c, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindByName finds a category by its unique name within the tenant
func (r *GormCategoryRepository) FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*catalog.ProductCategory, error) {
	var c catalog.ProductCategory
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID), tenant.NotDeleted).
		Where("product_category_name = ?", name).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindAll lists all categories in the tenant
func (r *GormCategoryRepository) FindAll(ctx context.Context, tenantID uuid.UUID) ([]catalog.ProductCategory, error) {
	var categories []catalog.ProductCategory
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID), tenant.NotDeleted).
		Order("product_category_name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// Save creates or updates a category
func (r *GormCategoryRepository) Save(ctx context.Context, c *catalog.ProductCategory) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// Delete soft-deletes a category
func (r *GormCategoryRepository) Delete(ctx context.Context, tenantID, id uuid.UUID, deletedBy uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&catalog.ProductCategory{}).
		Scopes(tenant.Scope(tenantID), tenant.NotDeleted).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_deleted":     true,
			"update_user_id": deletedBy,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormCategoryRepository implements catalog.CategoryRepository
var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
