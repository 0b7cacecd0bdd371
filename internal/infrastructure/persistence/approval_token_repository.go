package persistence

import (
	"context"
	"errors"

	"github.com/salesdesk/backend/internal/domain/order"
	"github.com/salesdesk/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormApprovalTokenRepository implements order.TokenRepository using GORM
type GormApprovalTokenRepository struct {
	db *gorm.DB
}

// NewGormApprovalTokenRepository creates a new GormApprovalTokenRepository
func NewGormApprovalTokenRepository(db *gorm.DB) *GormApprovalTokenRepository {
	return &GormApprovalTokenRepository{db: db}
}

// Create stores a freshly minted token
func (r *GormApprovalTokenRepository) Create(ctx context.Context, token *order.ApprovalToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// FindForUpdate loads a token holding a row lock. Must be called inside a
// transaction so the lock covers the redeem check.
func (r *GormApprovalTokenRepository) FindForUpdate(ctx context.Context, token string) (*order.ApprovalToken, error) {
	var t order.ApprovalToken
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&t, "token = ?", token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrInvalidToken
		}
		return nil, err
	}
	return &t, nil
}

// Update persists the used flag
func (r *GormApprovalTokenRepository) Update(ctx context.Context, token *order.ApprovalToken) error {
	return r.db.WithContext(ctx).Save(token).Error
}

// WithTx returns a repository bound to the given transaction
func (r *GormApprovalTokenRepository) WithTx(tx *gorm.DB) *GormApprovalTokenRepository {
	return &GormApprovalTokenRepository{db: tx}
}

// Ensure GormApprovalTokenRepository implements order.TokenRepository
var _ order.TokenRepository = (*GormApprovalTokenRepository)(nil)

// OrderUnitOfWork runs order and token operations in one transaction
type OrderUnitOfWork struct {
	db *gorm.DB
}

// NewOrderUnitOfWork creates a new OrderUnitOfWork
func NewOrderUnitOfWork(db *gorm.DB) *OrderUnitOfWork {
	return &OrderUnitOfWork{db: db}
}

// Execute runs fn with repositories bound to a shared transaction
func (u *OrderUnitOfWork) Execute(ctx context.Context, fn func(ws order.Workspace) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(order.Workspace{
			Orders: &GormSalesOrderRepository{db: tx},
			Tokens: &GormApprovalTokenRepository{db: tx},
		})
	})
}

// Ensure OrderUnitOfWork implements order.UnitOfWork
var _ order.UnitOfWork = (*OrderUnitOfWork)(nil)
