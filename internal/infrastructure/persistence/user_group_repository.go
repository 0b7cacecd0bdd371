package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/salesdesk/backend/internal/domain/identity"
	"github.com/salesdesk/backend/internal/domain/shared"
	"github.com/salesdesk/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormUserGroupRepository implements identity.UserGroupRepository using GORM
type GormUserGroupRepository struct {
	db *gorm.DB
}

// NewGormUserGroupRepository creates a new GormUserGroupRepository
func NewGormUserGroupRepository(db *gorm.DB) *GormUserGroupRepository {
	return &GormUserGroupRepository{db: db}
}

// FindByID finds a group by ID within the tenant
func (r *GormUserGroupRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*identity.UserGroup, error) {
	var g identity.UserGroup
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID), tenant.NotDeleted).
		First(&g, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

// FindByName finds a group by name within the tenant
func (r *GormUserGroupRepository) FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*identity.UserGroup, error) {
	var g identity.UserGroup
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID), tenant.NotDeleted).
		Where("group_name = ?", name).
		First(&g).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

// FindAll lists all groups in the tenant
func (r *GormUserGroupRepository) FindAll(ctx context.Context, tenantID uuid.UUID) ([]identity.UserGroup, error) {
	var groups []identity.UserGroup
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID), tenant.NotDeleted).
		Order("group_name ASC").
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// Save creates or updates a group
func (r *GormUserGroupRepository) Save(ctx context.Context, group *identity.UserGroup) error {
	return r.db.WithContext(ctx).Save(group).Error
}

// Delete soft-deletes a group and removes its memberships
func (r *GormUserGroupRepository) Delete(ctx context.Context, tenantID, id uuid.UUID, deletedBy uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.
			Model(&identity.UserGroup{}).
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

		return tx.Where("group_id = ?", id).
			Delete(&identity.UserGroupMember{}).Error
	})
}

// Ensure GormUserGroupRepository implements identity.UserGroupRepository
var _ identity.UserGroupRepository = (*GormUserGroupRepository)(nil)
