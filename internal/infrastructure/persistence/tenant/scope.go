// Package tenant provides multi-tenant database scoping for GORM.
//
// Every tenant-owned table carries a tenant_id column. Repositories apply
// Scope explicitly so a query can never cross tenant boundaries, and
// NotDeleted to hide soft-deleted rows from regular reads.
package tenant

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/salesdesk/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

// ErrTenantIDRequired is returned when tenant_id is required but not found
var ErrTenantIDRequired = errors.New("tenant_id is required but not found in context")

// ErrInvalidTenantID is returned when tenant_id format is invalid
var ErrInvalidTenantID = errors.New("invalid tenant_id format")

// Scope restricts a query to a single tenant.
func Scope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}

// NotDeleted hides soft-deleted rows.
func NotDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", false)
}

// DB wraps a GORM connection with tenant scoping helpers.
type DB struct {
	db *gorm.DB
}

// NewDB wraps the given GORM connection.
func NewDB(db *gorm.DB) *DB {
	return &DB{db: db}
}

// Unscoped returns the underlying GORM DB without tenant scoping.
// Only system-level operations (login, migrations) should use this.
func (t *DB) Unscoped() *gorm.DB {
	return t.db
}

// WithTenant returns a GORM DB scoped to the given tenant ID.
func (t *DB) WithTenant(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	if tenantID == uuid.Nil {
		db := t.db.WithContext(ctx)
		_ = db.AddError(ErrTenantIDRequired)
		return db
	}
	return t.db.WithContext(ctx).Scopes(Scope(tenantID))
}

// WithContext returns a GORM DB scoped to the tenant carried in the context.
// The tenant ID is placed in the context by the authentication middleware.
// If the context carries no valid tenant ID the returned DB errors on use.
func (t *DB) WithContext(ctx context.Context) *gorm.DB {
	raw := logger.GetTenantID(ctx)
	if raw == "" {
		db := t.db.WithContext(ctx)
		_ = db.AddError(ErrTenantIDRequired)
		return db
	}

	tenantID, err := uuid.Parse(raw)
	if err != nil {
		db := t.db.WithContext(ctx)
		_ = db.AddError(ErrInvalidTenantID)
		return db
	}

	return t.db.WithContext(ctx).Scopes(Scope(tenantID))
}

// Transaction executes fn within a database transaction scoped to the
// context's tenant.
func (t *DB) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	raw := logger.GetTenantID(ctx)
	if raw == "" {
		return ErrTenantIDRequired
	}
	tenantID, err := uuid.Parse(raw)
	if err != nil {
		return ErrInvalidTenantID
	}

	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(tx.Scopes(Scope(tenantID)))
	})
}
