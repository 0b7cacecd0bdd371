package identity

import (
	"context"

	"github.com/salesdesk/backend/internal/domain/identity"
	"github.com/salesdesk/backend/internal/domain/shared"
)

// TenantService exposes the caller's own tenant profile.
// The tenant code is assigned at onboarding and never changes.
type TenantService struct {
	tenants identity.TenantRepository
}

// NewTenantService creates a new TenantService
func NewTenantService(tenants identity.TenantRepository) *TenantService {
	return &TenantService{tenants: tenants}
}

// Get returns the caller's tenant profile
func (s *TenantService) Get(ctx context.Context, caller identity.Caller) (*TenantResponse, error) {
	tenant, err := s.tenants.FindByID(ctx, caller.TenantID)
	if err != nil {
		return nil, err
	}
	return ToTenantResponse(tenant), nil
}

// Update edits the tenant profile. Only a system account may do this.
func (s *TenantService) Update(ctx context.Context, caller identity.Caller, req UpdateTenantRequest) (*TenantResponse, error) {
	if !caller.Privilege.AtLeast(identity.PrivilegeSystem) {
		return nil, shared.ErrForbidden
	}

	tenant, err := s.tenants.FindByID(ctx, caller.TenantID)
	if err != nil {
		return nil, err
	}
	if err := tenant.UpdateProfile(req.TenantName, req.RepresentativeName, req.ContactEmail, req.ContactTelNumber); err != nil {
		return nil, err
	}
	tenant.SetAddress(req.PostalCode, req.State, req.City, req.Address, req.Address2)

	if err := s.tenants.Save(ctx, tenant); err != nil {
		return nil, err
	}
	return ToTenantResponse(tenant), nil
}
