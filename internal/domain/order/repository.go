package order

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter narrows order listings. Keyword matches the order number or
// the partner name.
type Filter struct {
	Keyword   string
	Status    Status
	PartnerID *uuid.UUID
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int

	// RestrictToUser limits results to orders the user created or
	// references. Set for callers below manager.
	RestrictToUser *uuid.UUID
	UserGroupIDs   []uuid.UUID
}

// Repository defines the interface for sales order persistence.
// All operations are tenant scoped.
type Repository interface {
	// FindByID loads the full aggregate: header, details in line_no
	// order, reference users and groups
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*SalesOrder, error)

	// FindByIDForUpdate loads the aggregate holding a row lock on the
	// header. Must be called inside a transaction.
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*SalesOrder, error)

	// FindByNo finds an order by its order number within the tenant
	FindByNo(ctx context.Context, tenantID uuid.UUID, no string) (*SalesOrder, error)

	// FindAll lists orders matching the filter
	FindAll(ctx context.Context, tenantID uuid.UUID, filter Filter) ([]SalesOrder, int64, error)

	// Save persists the aggregate. A first save assigns the order
	// number; number allocation is serialized per (tenant, year).
	// Details are replaced wholesale.
	Save(ctx context.Context, o *SalesOrder) error

	// SaveAll persists multiple aggregates in one transaction
	SaveAll(ctx context.Context, orders []*SalesOrder) error

	// CountByProduct counts non-cancelled orders referencing a product
	CountByProduct(ctx context.Context, tenantID, productID uuid.UUID) (int64, error)

	// Transaction runs fn inside a database transaction. The
	// repository passed to fn operates on that transaction.
	Transaction(ctx context.Context, fn func(repo Repository) error) error
}

// Workspace bundles the repositories bound to one transaction
type Workspace struct {
	Orders Repository
	Tokens TokenRepository
}

// UnitOfWork runs workflow operations that touch orders and tokens
// atomically
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ws Workspace) error) error
}

// TokenRepository defines the interface for approval token persistence
type TokenRepository interface {
	// Create stores a freshly minted token
	Create(ctx context.Context, token *ApprovalToken) error

	// FindForUpdate loads a token holding a row lock. Must be called
	// inside a transaction.
	FindForUpdate(ctx context.Context, token string) (*ApprovalToken, error)

	// Update persists the used flag
	Update(ctx context.Context, token *ApprovalToken) error
}
