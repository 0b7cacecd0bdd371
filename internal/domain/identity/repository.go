package identity

import (
	"context"

	"github.com/google/uuid"
)

// TenantRepository defines the interface for tenant persistence
type TenantRepository interface {
	// FindByID finds a tenant by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)

	// FindByCode finds a tenant by its unique code
	FindByCode(ctx context.Context, code string) (*Tenant, error)

	// Save creates or updates a tenant
	Save(ctx context.Context, tenant *Tenant) error
}

// UserFilter narrows user listings
type UserFilter struct {
	Keyword  string
	Page     int
	PageSize int
}

// UserRepository defines the interface for user persistence.
// All reads are scoped to the given tenant and exclude soft-deleted rows.
type UserRepository interface {
	// FindByID finds a user by ID within the tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*User, error)

	// FindByEmail finds a user by email address. Email is globally
	// unique, so no tenant scope applies.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindAll lists users in the tenant matching the filter
	FindAll(ctx context.Context, tenantID uuid.UUID, filter UserFilter) ([]User, int64, error)

	// Save creates or updates a user together with its group memberships
	Save(ctx context.Context, user *User) error

	// SaveAll creates users in bulk within a single transaction
	SaveAll(ctx context.Context, users []*User) error

	// Delete soft-deletes a user
	Delete(ctx context.Context, tenantID, id uuid.UUID, deletedBy uuid.UUID) error
}

// UserGroupRepository defines the interface for user group persistence
type UserGroupRepository interface {
	// FindByID finds a group by ID within the tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*UserGroup, error)

	// FindByName finds a group by name within the tenant
	FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*UserGroup, error)

	// FindAll lists all groups in the tenant
	FindAll(ctx context.Context, tenantID uuid.UUID) ([]UserGroup, error)

	// Save creates or updates a group
	Save(ctx context.Context, group *UserGroup) error

	// Delete soft-deletes a group
	Delete(ctx context.Context, tenantID, id uuid.UUID, deletedBy uuid.UUID) error
}
