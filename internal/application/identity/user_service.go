package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/salesdesk/backend/internal/domain/identity"
	"github.com/salesdesk/backend/internal/domain/shared"
	"github.com/salesdesk/backend/internal/infrastructure/logger"
)

// DefaultPageSize caps listing pages when the request does not say
const DefaultPageSize = 20

// UserService handles user master operations. Managing users requires
// manager privilege or above.
type UserService struct {
	users  identity.UserRepository
	groups identity.UserGroupRepository
}

// NewUserService creates a new UserService
func NewUserService(users identity.UserRepository, groups identity.UserGroupRepository) *UserService {
	return &UserService{users: users, groups: groups}
}

// Create creates a new user
func (s *UserService) Create(ctx context.Context, caller identity.Caller, req CreateUserRequest) (*UserResponse, error) {
	if !caller.Privilege.AtLeast(identity.PrivilegeManager) {
		return nil, shared.ErrForbidden
	}

	privilege := identity.Privilege(req.Privilege)
	if !privilege.IsValid() {
		return nil, shared.NewValidationError("privilege", "unknown privilege")
	}
	// only a system account may create another one
	if privilege == identity.PrivilegeSystem && caller.Privilege != identity.PrivilegeSystem {
		return nil, shared.ErrForbidden
	}

	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A user with this email already exists")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	user, err := identity.NewUser(caller.TenantID, caller.UserID, req.Username, req.Email, req.Password, privilege)
	if err != nil {
		return nil, err
	}
	user.UsernameKana = req.UsernameKana
	if err := user.SetGender(identity.Gender(req.Gender)); err != nil {
		return nil, err
	}
	if err := user.SetTelNumber(req.TelNumber); err != nil {
		return nil, err
	}
	if err := s.setGroups(ctx, caller.TenantID, user, req.GroupIDs); err != nil {
		return nil, err
	}

	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("user created", zap.String("email", user.Email))
	return ToUserResponse(user), nil
}

// Get retrieves one user
func (s *UserService) Get(ctx context.Context, caller identity.Caller, id uuid.UUID) (*UserResponse, error) {
	user, err := s.users.FindByID(ctx, caller.TenantID, id)
	if err != nil {
		return nil, err
	}
	return ToUserResponse(user), nil
}

// List returns a page of users matching the filter
func (s *UserService) List(ctx context.Context, caller identity.Caller, f UserListFilter) (*UserListResponse, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 || f.PageSize > 100 {
		f.PageSize = DefaultPageSize
	}

	users, total, err := s.users.FindAll(ctx, caller.TenantID, identity.UserFilter{
		Keyword:  f.Keyword,
		Page:     f.Page,
		PageSize: f.PageSize,
	})
	if err != nil {
		return nil, err
	}

	items := make([]UserResponse, len(users))
	for i := range users {
		items[i] = *ToUserResponse(&users[i])
	}
	return &UserListResponse{
		Items:    items,
		Total:    total,
		Page:     f.Page,
		PageSize: f.PageSize,
	}, nil
}

// Update applies a partial edit to a user
func (s *UserService) Update(ctx context.Context, caller identity.Caller, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	if !caller.Privilege.AtLeast(identity.PrivilegeManager) {
		return nil, shared.ErrForbidden
	}

	user, err := s.users.FindByID(ctx, caller.TenantID, id)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.UsernameKana != nil {
		user.UsernameKana = *req.UsernameKana
	}
	if req.Password != nil {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, err
		}
	}
	if req.Gender != nil {
		if err := user.SetGender(identity.Gender(*req.Gender)); err != nil {
			return nil, err
		}
	}
	if req.TelNumber != nil {
		if err := user.SetTelNumber(*req.TelNumber); err != nil {
			return nil, err
		}
	}
	if req.EmploymentStatus != nil || req.EmploymentEndDate != nil {
		status := user.EmploymentStatus
		endDate := user.EmploymentEndDate
		if req.EmploymentStatus != nil {
			status = identity.EmploymentStatus(*req.EmploymentStatus)
		}
		if req.EmploymentEndDate != nil {
			endDate = req.EmploymentEndDate
		}
		if err := user.SetEmployment(status, endDate); err != nil {
			return nil, err
		}
	}
	if req.Privilege != nil {
		privilege := identity.Privilege(*req.Privilege)
		if !privilege.IsValid() {
			return nil, shared.NewValidationError("privilege", "unknown privilege")
		}
		if privilege == identity.PrivilegeSystem && caller.Privilege != identity.PrivilegeSystem {
			return nil, shared.ErrForbidden
		}
		user.Privilege = privilege
	}
	if req.GroupIDs != nil {
		if err := s.setGroups(ctx, caller.TenantID, user, *req.GroupIDs); err != nil {
			return nil, err
		}
	}

	user.Touch(caller.UserID)
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return ToUserResponse(user), nil
}

// Delete soft-deletes a user. Self-deletion is rejected.
func (s *UserService) Delete(ctx context.Context, caller identity.Caller, id uuid.UUID) error {
	if !caller.Privilege.AtLeast(identity.PrivilegeManager) {
		return shared.ErrForbidden
	}
	if id == caller.UserID {
		return shared.NewDomainError("INVALID_STATE", "Cannot delete the logged-in user")
	}
	if err := s.users.Delete(ctx, caller.TenantID, id, caller.UserID); err != nil {
		return err
	}
	logger.L(ctx).Info("user deleted", zap.String("user_id", id.String()))
	return nil
}

// setGroups validates that every group exists in the tenant before
// replacing the memberships
func (s *UserService) setGroups(ctx context.Context, tenantID uuid.UUID, user *identity.User, groupIDs []uuid.UUID) error {
	for _, gid := range groupIDs {
		if _, err := s.groups.FindByID(ctx, tenantID, gid); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewValidationError("group_ids", "unknown group")
			}
			return err
		}
	}
	user.SetGroups(groupIDs)
	return nil
}
