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

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db     *gorm.DB
	orders *GormSalesOrderRepository
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{
		db:     db,
		orders: NewGormSalesOrderRepository(db),
	}
}

// FindByID finds a product by ID within the tenant
func (r *GormProductRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	var p catalog.Product
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID), tenant.NotDeleted).
		First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByIDs loads multiple products at once
func (r *GormProductRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []catalog.Product
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID), tenant.NotDeleted).
		Where("id IN ?", ids).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// FindByName finds products matching an exact name
func (r *GormProductRepository) FindByName(ctx context.Context, tenantID uuid.UUID, name string) ([]catalog.Product, error) {
	var products []catalog.Product
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID), tenant.NotDeleted).
		Where("product_name = ?", name).
		Order("start_date DESC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// FindAll lists products matching the filter with the total count before paging
func (r *GormProductRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter catalog.Filter) ([]catalog.Product, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Scopes(tenant.Scope(tenantID), tenant.NotDeleted)

	if filter.Keyword != "" {
		pattern := "%" + filter.Keyword + "%"
		query = query.Where("product_code LIKE ? OR product_name LIKE ?", pattern, pattern)
	}
	if filter.CategoryID != nil {
		query = query.Where("product_category_id = ?", *filter.CategoryID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var products []catalog.Product
	if err := query.Order("product_code ASC, start_date DESC").Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// Delete soft-deletes a product. It fails when the product is still
// referenced by any non-cancelled sales order.
func (r *GormProductRepository) Delete(ctx context.Context, tenantID, id uuid.UUID, deletedBy uuid.UUID) error {
	referencing, err := r.orders.CountByProduct(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if referencing > 0 {
		return shared.NewDomainError("INVALID_STATE", "product is referenced by active sales orders")
	}

	result := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
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

// Ensure GormProductRepository implements catalog.ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
