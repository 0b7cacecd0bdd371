package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/salesdesk/backend/internal/domain/identity"
	"github.com/salesdesk/backend/internal/domain/shared"
	"github.com/salesdesk/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by ID within the tenant
func (r *GormUserRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*identity.User, error) {
	var u identity.User
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID), tenant.NotDeleted).
		First(&u, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	if err := r.loadGroups(ctx, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByEmail finds a user by email address. Email is globally unique,
// so no tenant scope applies. Lookup is case-insensitive.
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	var u identity.User
	err := r.db.WithContext(ctx).
		Scopes(tenant.NotDeleted).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	if err := r.loadGroups(ctx, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// FindAll lists users in the tenant matching the filter
func (r *GormUserRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter identity.UserFilter) ([]identity.User, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&identity.User{}).
		Scopes(tenant.Scope(tenantID), tenant.NotDeleted)

	if filter.Keyword != "" {
		pattern := "%" + filter.Keyword + "%"
		query = query.Where(
			"username LIKE ? OR username_kana LIKE ? OR email LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var users []identity.User
	if err := query.Order("username_kana ASC, username ASC").Find(&users).Error; err != nil {
		return nil, 0, err
	}

	for i := range users {
		if err := r.loadGroups(ctx, &users[i]); err != nil {
			return nil, 0, err
		}
	}
	return users, total, nil
}

// Save creates or updates a user together with its group memberships
func (r *GormUserRepository) Save(ctx context.Context, user *identity.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveUser(tx, user)
	})
}

// SaveAll creates users in bulk within a single transaction
func (r *GormUserRepository) SaveAll(ctx context.Context, users []*identity.User) error {
	if len(users) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range users {
			if err := saveUser(tx, u); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete soft-deletes a user
func (r *GormUserRepository) Delete(ctx context.Context, tenantID, id uuid.UUID, deletedBy uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&identity.User{}).
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

func saveUser(tx *gorm.DB, user *identity.User) error {
	if err := tx.Save(user).Error; err != nil {
		return err
	}

	// Replace group memberships wholesale.
	if err := tx.Where("user_id = ?", user.ID).
		Delete(&identity.UserGroupMember{}).Error; err != nil {
		return err
	}
	for _, groupID := range user.GroupIDs {
		row := identity.UserGroupMember{
			UserID:   user.ID,
			GroupID:  groupID,
			TenantID: user.TenantID,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *GormUserRepository) loadGroups(ctx context.Context, u *identity.User) error {
	var rows []identity.UserGroupMember
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", u.ID).
		Find(&rows).Error; err != nil {
		return err
	}
	u.GroupIDs = make([]uuid.UUID, len(rows))
	for i, row := range rows {
		u.GroupIDs[i] = row.GroupID
	}
	return nil
}

// Ensure GormUserRepository implements identity.UserRepository
var _ identity.UserRepository = (*GormUserRepository)(nil)
