package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/salesdesk/backend/internal/domain/partner"
	"github.com/salesdesk/backend/internal/domain/shared"
	"github.com/salesdesk/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormPartnerRepository implements partner.Repository using GORM
type GormPartnerRepository struct {
	db *gorm.DB
}

// NewGormPartnerRepository creates a new GormPartnerRepository
func NewGormPartnerRepository(db *gorm.DB) *GormPartnerRepository {
	return &GormPartnerRepository{db: db}
}

// FindByID finds a partner by ID within the tenant
func (r *GormPartnerRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*partner.Partner, error) {
	var p partner.Partner
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

// FindByNameAndEmail finds a partner by the (name, email) unique key
func (r *GormPartnerRepository) FindByNameAndEmail(ctx context.Context, tenantID uuid.UUID, name, email string) (*partner.Partner, error) {
	var p partner.Partner
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID), tenant.NotDeleted).
		Where("partner_name = ? AND email = ?", name, email).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByName finds a partner by exact name, kana-ordered first match
func (r *GormPartnerRepository) FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*partner.Partner, error) {
	var p partner.Partner
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID), tenant.NotDeleted).
		Where("partner_name = ?", name).
		Order("partner_name_kana ASC, partner_name ASC").
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindAll lists partners matching the filter with the total count before paging
func (r *GormPartnerRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter partner.Filter) ([]partner.Partner, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&partner.Partner{}).
		Scopes(tenant.Scope(tenantID), tenant.NotDeleted)

	if filter.Keyword != "" {
		pattern := "%" + filter.Keyword + "%"
		query = query.Where(
			"partner_name LIKE ? OR partner_name_kana LIKE ? OR email LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if filter.PartnerType != "" {
		query = query.Where("partner_type = ?", filter.PartnerType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var partners []partner.Partner
	if err := query.Order("partner_name_kana ASC, partner_name ASC").Find(&partners).Error; err != nil {
		return nil, 0, err
	}
	return partners, total, nil
}

// Save creates or updates a partner
func (r *GormPartnerRepository) Save(ctx context.Context, p *partner.Partner) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// SaveAll creates partners in bulk within a single transaction
func (r *GormPartnerRepository) SaveAll(ctx context.Context, partners []*partner.Partner) error {
	if len(partners) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range partners {
			if err := tx.Save(p).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete soft-deletes a partner
func (r *GormPartnerRepository) Delete(ctx context.Context, tenantID, id uuid.UUID, deletedBy uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&partner.Partner{}).
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

// Ensure GormPartnerRepository implements partner.Repository
var _ partner.Repository = (*GormPartnerRepository)(nil)
