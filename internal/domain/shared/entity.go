package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is the base interface for all domain entities
type Entity interface {
	GetID() uuid.UUID
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
}

// BaseEntity provides common fields for all entities
type BaseEntity struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

// GetCreatedAt returns the creation timestamp
func (e *BaseEntity) GetCreatedAt() time.Time {
	return e.CreatedAt
}

// GetUpdatedAt returns the last update timestamp
func (e *BaseEntity) GetUpdatedAt() time.Time {
	return e.UpdatedAt
}

// NewBaseEntity creates a new base entity with generated ID
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TenantEntity extends BaseEntity with soft delete and audit user
// columns. Every tenant-owned table embeds it and declares its own
// tenant_id column, so composite unique indexes can put the tenant
// first.
type TenantEntity struct {
	BaseEntity
	IsDeleted    bool       `gorm:"not null;default:false;index"`
	CreateUserID *uuid.UUID `gorm:"type:uuid"`
	UpdateUserID *uuid.UUID `gorm:"type:uuid"`
}

// NewTenantEntity creates an entity recording the creator
func NewTenantEntity(createdBy uuid.UUID) TenantEntity {
	return TenantEntity{
		BaseEntity:   NewBaseEntity(),
		CreateUserID: &createdBy,
		UpdateUserID: &createdBy,
	}
}

// Touch records an update by the given user
func (t *TenantEntity) Touch(userID uuid.UUID) {
	t.UpdateUserID = &userID
	t.UpdatedAt = time.Now()
}

// MarkDeleted soft-deletes the entity
func (t *TenantEntity) MarkDeleted(userID uuid.UUID) {
	t.IsDeleted = true
	t.Touch(userID)
}
