package partner

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/salesdesk/backend/internal/domain/identity"
	"github.com/salesdesk/backend/internal/domain/partner"
	"github.com/salesdesk/backend/internal/domain/shared"
	"github.com/salesdesk/backend/internal/infrastructure/logger"
)

// DefaultPageSize caps listing pages when the request does not say
const DefaultPageSize = 20

// Service handles partner master operations
type Service struct {
	partners partner.Repository
}

// NewService creates a new partner Service
func NewService(partners partner.Repository) *Service {
	return &Service{partners: partners}
}

// Create creates a new partner
func (s *Service) Create(ctx context.Context, caller identity.Caller, req CreatePartnerRequest) (*PartnerResponse, error) {
	if !caller.Privilege.AtLeast(identity.PrivilegeEditor) {
		return nil, shared.ErrForbidden
	}

	partnerType, err := partner.ParsePartnerType(req.PartnerType)
	if err != nil {
		return nil, err
	}

	p, err := partner.NewPartner(caller.TenantID, caller.UserID, req.PartnerName, partnerType)
	if err != nil {
		return nil, err
	}
	p.SetKana(req.PartnerNameKana)
	if err := p.SetContact(req.ContactName, req.Email, req.TelNumber); err != nil {
		return nil, err
	}
	if err := p.SetAddress(req.PostalCode, req.State, req.City, req.Address, req.Address2); err != nil {
		return nil, err
	}

	if existing, err := s.partners.FindByNameAndEmail(ctx, caller.TenantID, p.PartnerName, p.Email); err == nil && existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A partner with this name and email already exists")
	}

	if err := s.partners.Save(ctx, p); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("partner created", zap.String("partner_name", p.PartnerName))
	return ToPartnerResponse(p), nil
}

// Get retrieves one partner
func (s *Service) Get(ctx context.Context, caller identity.Caller, id uuid.UUID) (*PartnerResponse, error) {
	p, err := s.partners.FindByID(ctx, caller.TenantID, id)
	if err != nil {
		return nil, err
	}
	return ToPartnerResponse(p), nil
}

// List returns a page of partners matching the filter
func (s *Service) List(ctx context.Context, caller identity.Caller, f ListFilter) (*ListResponse, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 || f.PageSize > 100 {
		f.PageSize = DefaultPageSize
	}

	partners, total, err := s.partners.FindAll(ctx, caller.TenantID, partner.Filter{
		Keyword:     f.Keyword,
		PartnerType: partner.PartnerType(f.PartnerType),
		Page:        f.Page,
		PageSize:    f.PageSize,
	})
	if err != nil {
		return nil, err
	}

	items := make([]PartnerResponse, len(partners))
	for i := range partners {
		items[i] = *ToPartnerResponse(&partners[i])
	}
	return &ListResponse{
		Items:    items,
		Total:    total,
		Page:     f.Page,
		PageSize: f.PageSize,
	}, nil
}

// Update applies a partial edit to a partner
func (s *Service) Update(ctx context.Context, caller identity.Caller, id uuid.UUID, req UpdatePartnerRequest) (*PartnerResponse, error) {
	if !caller.Privilege.AtLeast(identity.PrivilegeEditor) {
		return nil, shared.ErrForbidden
	}

	p, err := s.partners.FindByID(ctx, caller.TenantID, id)
	if err != nil {
		return nil, err
	}

	if req.PartnerName != nil {
		p.PartnerName = *req.PartnerName
	}
	if req.PartnerNameKana != nil {
		p.SetKana(*req.PartnerNameKana)
	}
	if req.PartnerType != nil {
		partnerType, err := partner.ParsePartnerType(*req.PartnerType)
		if err != nil {
			return nil, err
		}
		p.PartnerType = partnerType
	}
	if req.ContactName != nil || req.Email != nil || req.TelNumber != nil {
		contact, email, tel := p.ContactName, p.Email, p.TelNumber
		if req.ContactName != nil {
			contact = *req.ContactName
		}
		if req.Email != nil {
			email = *req.Email
		}
		if req.TelNumber != nil {
			tel = *req.TelNumber
		}
		if err := p.SetContact(contact, email, tel); err != nil {
			return nil, err
		}
	}
	if req.PostalCode != nil || req.State != nil || req.City != nil || req.Address != nil || req.Address2 != nil {
		postal, state, city, addr, addr2 := p.PostalCode, p.State, p.City, p.Address, p.Address2
		if req.PostalCode != nil {
			postal = *req.PostalCode
		}
		if req.State != nil {
			state = *req.State
		}
		if req.City != nil {
			city = *req.City
		}
		if req.Address != nil {
			addr = *req.Address
		}
		if req.Address2 != nil {
			addr2 = *req.Address2
		}
		if err := p.SetAddress(postal, state, city, addr, addr2); err != nil {
			return nil, err
		}
	}

	p.UpdateUserID = &caller.UserID
	if err := s.partners.Save(ctx, p); err != nil {
		return nil, err
	}
	return ToPartnerResponse(p), nil
}

// Delete soft-deletes a partner
func (s *Service) Delete(ctx context.Context, caller identity.Caller, id uuid.UUID) error {
	if !caller.Privilege.AtLeast(identity.PrivilegeEditor) {
		return shared.ErrForbidden
	}
	if err := s.partners.Delete(ctx, caller.TenantID, id, caller.UserID); err != nil {
		return err
	}
	logger.L(ctx).Info("partner deleted", zap.String("partner_id", id.String()))
	return nil
}
