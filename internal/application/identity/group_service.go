package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/salesdesk/backend/internal/domain/identity"
	"github.com/salesdesk/backend/internal/domain/shared"
)

// GroupService handles user group operations
type GroupService struct {
	groups identity.UserGroupRepository
}

// NewGroupService creates a new GroupService
func NewGroupService(groups identity.UserGroupRepository) *GroupService {
	return &GroupService{groups: groups}
}

// Create creates a new group. Group names are unique within the tenant.
func (s *GroupService) Create(ctx context.Context, caller identity.Caller, req GroupRequest) (*GroupResponse, error) {
	if !caller.Privilege.AtLeast(identity.PrivilegeManager) {
		return nil, shared.ErrForbidden
	}

	if _, err := s.groups.FindByName(ctx, caller.TenantID, req.GroupName); err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A group with this name already exists")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	group, err := identity.NewUserGroup(caller.TenantID, caller.UserID, req.GroupName)
	if err != nil {
		return nil, err
	}
	if err := s.groups.Save(ctx, group); err != nil {
		return nil, err
	}
	return ToGroupResponse(group), nil
}

// List returns all groups in the caller's tenant
func (s *GroupService) List(ctx context.Context, caller identity.Caller) ([]GroupResponse, error) {
	groups, err := s.groups.FindAll(ctx, caller.TenantID)
	if err != nil {
		return nil, err
	}
	items := make([]GroupResponse, len(groups))
	for i := range groups {
		items[i] = *ToGroupResponse(&groups[i])
	}
	return items, nil
}

// Update renames a group
func (s *GroupService) Update(ctx context.Context, caller identity.Caller, id uuid.UUID, req GroupRequest) (*GroupResponse, error) {
	if !caller.Privilege.AtLeast(identity.PrivilegeManager) {
		return nil, shared.ErrForbidden
	}

	group, err := s.groups.FindByID(ctx, caller.TenantID, id)
	if err != nil {
		return nil, err
	}

	if existing, err := s.groups.FindByName(ctx, caller.TenantID, req.GroupName); err == nil {
		if existing.ID != group.ID {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "A group with this name already exists")
		}
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	group.GroupName = req.GroupName
	group.Touch(caller.UserID)
	if err := s.groups.Save(ctx, group); err != nil {
		return nil, err
	}
	return ToGroupResponse(group), nil
}

// Delete soft-deletes a group. Membership rows stay behind but stop
// mattering once the group is gone.
func (s *GroupService) Delete(ctx context.Context, caller identity.Caller, id uuid.UUID) error {
	if !caller.Privilege.AtLeast(identity.PrivilegeManager) {
		return shared.ErrForbidden
	}
	return s.groups.Delete(ctx, caller.TenantID, id, caller.UserID)
}
