package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/salesdesk/backend/internal/domain/identity"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter identity.UserFilter) ([]identity.User, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]identity.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) SaveAll(ctx context.Context, users []*identity.User) error {
	args := m.Called(ctx, users)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, tenantID, id uuid.UUID, deletedBy uuid.UUID) error {
	args := m.Called(ctx, tenantID, id, deletedBy)
	return args.Error(0)
}

// MockUserGroupRepository is a mock implementation of identity.UserGroupRepository
type MockUserGroupRepository struct {
	mock.Mock
}

func (m *MockUserGroupRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*identity.UserGroup, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.UserGroup), args.Error(1)
}

func (m *MockUserGroupRepository) FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*identity.UserGroup, error) {
	args := m.Called(ctx, tenantID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.UserGroup), args.Error(1)
}

func (m *MockUserGroupRepository) FindAll(ctx context.Context, tenantID uuid.UUID) ([]identity.UserGroup, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.UserGroup), args.Error(1)
}

func (m *MockUserGroupRepository) Save(ctx context.Context, group *identity.UserGroup) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockUserGroupRepository) Delete(ctx context.Context, tenantID, id uuid.UUID, deletedBy uuid.UUID) error {
	args := m.Called(ctx, tenantID, id, deletedBy)
	return args.Error(0)
}

// MockTenantRepository is a mock implementation of identity.TenantRepository
type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindByCode(ctx context.Context, code string) (*identity.Tenant, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) Save(ctx context.Context, tenant *identity.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

var (
	testTenantID = uuid.New()
	testUserID   = uuid.New()
)

func managerCaller() identity.Caller {
	return identity.Caller{
		UserID:    testUserID,
		TenantID:  testTenantID,
		Privilege: identity.PrivilegeManager,
	}
}

func systemCaller() identity.Caller {
	c := managerCaller()
	c.Privilege = identity.PrivilegeSystem
	return c
}

func editorCaller() identity.Caller {
	c := managerCaller()
	c.Privilege = identity.PrivilegeEditor
	return c
}

func testUser(t *testing.T) *identity.User {
	t.Helper()
	u, err := identity.NewUser(testTenantID, testUserID, "山田 太郎", "taro@example.com", "s3cret-pass", identity.PrivilegeEditor)
	require.NoError(t, err)
	return u
}

func testGroup(t *testing.T) *identity.UserGroup {
	t.Helper()
	g, err := identity.NewUserGroup(testTenantID, testUserID, "Sales East")
	require.NoError(t, err)
	return g
}
