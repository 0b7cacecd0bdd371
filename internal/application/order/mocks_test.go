package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/salesdesk/backend/internal/domain/catalog"
	"github.com/salesdesk/backend/internal/domain/identity"
	"github.com/salesdesk/backend/internal/domain/order"
	"github.com/salesdesk/backend/internal/domain/partner"
)

// MockOrderRepository is a mock implementation of order.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*order.SalesOrder, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.SalesOrder), args.Error(1)
}

func (m *MockOrderRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*order.SalesOrder, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.SalesOrder), args.Error(1)
}

func (m *MockOrderRepository) FindByNo(ctx context.Context, tenantID uuid.UUID, no string) (*order.SalesOrder, error) {
	args := m.Called(ctx, tenantID, no)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.SalesOrder), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter order.Filter) ([]order.SalesOrder, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]order.SalesOrder), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.SalesOrder) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveAll(ctx context.Context, orders []*order.SalesOrder) error {
	args := m.Called(ctx, orders)
	return args.Error(0)
}

func (m *MockOrderRepository) CountByProduct(ctx context.Context, tenantID, productID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, productID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Transaction(ctx context.Context, fn func(repo order.Repository) error) error {
	return fn(m)
}

// MockTokenRepository is a mock implementation of order.TokenRepository
type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) Create(ctx context.Context, token *order.ApprovalToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) FindForUpdate(ctx context.Context, token string) (*order.ApprovalToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.ApprovalToken), args.Error(1)
}

func (m *MockTokenRepository) Update(ctx context.Context, token *order.ApprovalToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// stubUnitOfWork runs the function against the supplied repositories
// without a real transaction
type stubUnitOfWork struct {
	orders order.Repository
	tokens order.TokenRepository
}

func (u *stubUnitOfWork) Execute(ctx context.Context, fn func(ws order.Workspace) error) error {
	return fn(order.Workspace{Orders: u.orders, Tokens: u.tokens})
}

// MockPartnerRepository is a mock implementation of partner.Repository
type MockPartnerRepository struct {
	mock.Mock
}

func (m *MockPartnerRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*partner.Partner, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Partner), args.Error(1)
}

func (m *MockPartnerRepository) FindByNameAndEmail(ctx context.Context, tenantID uuid.UUID, name, email string) (*partner.Partner, error) {
	args := m.Called(ctx, tenantID, name, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Partner), args.Error(1)
}

func (m *MockPartnerRepository) FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*partner.Partner, error) {
	args := m.Called(ctx, tenantID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Partner), args.Error(1)
}

func (m *MockPartnerRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter partner.Filter) ([]partner.Partner, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]partner.Partner), args.Get(1).(int64), args.Error(2)
}

func (m *MockPartnerRepository) Save(ctx context.Context, p *partner.Partner) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPartnerRepository) SaveAll(ctx context.Context, partners []*partner.Partner) error {
	args := m.Called(ctx, partners)
	return args.Error(0)
}

func (m *MockPartnerRepository) Delete(ctx context.Context, tenantID, id uuid.UUID, deletedBy uuid.UUID) error {
	args := m.Called(ctx, tenantID, id, deletedBy)
	return args.Error(0)
}

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByName(ctx context.Context, tenantID uuid.UUID, name string) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter catalog.Filter) ([]catalog.Product, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]catalog.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, tenantID, id uuid.UUID, deletedBy uuid.UUID) error {
	args := m.Called(ctx, tenantID, id, deletedBy)
	return args.Error(0)
}

var (
	testTenantID  = uuid.New()
	testCreatorID = uuid.New()
	testManagerID = uuid.New()
	testOrderDate = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
)

func creatorCaller() order.Caller {
	return order.Caller{
		UserID:    testCreatorID,
		TenantID:  testTenantID,
		Privilege: identity.PrivilegeEditor,
	}
}

func managerCaller() order.Caller {
	return order.Caller{
		UserID:    testManagerID,
		TenantID:  testTenantID,
		Privilege: identity.PrivilegeManager,
	}
}

func newDraftOrder(t interface{ Fatal(args ...interface{}) }) *order.SalesOrder {
	o, err := order.NewDraft(testTenantID, testCreatorID, testOrderDate, order.RoundFloor)
	if err != nil {
		t.Fatal(err)
	}
	return o
}
