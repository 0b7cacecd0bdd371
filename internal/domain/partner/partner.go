package partner

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/salesdesk/backend/internal/domain/shared"
)

// PartnerType classifies the business relationship
type PartnerType string

const (
	PartnerTypeCustomer PartnerType = "customer"
	PartnerTypeSupplier PartnerType = "supplier"
	PartnerTypeBoth     PartnerType = "both"
)

// Partner represents a customer or supplier organization.
// Unique on (tenant_id, partner_name, email).
type Partner struct {
	shared.TenantEntity
	TenantID        uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_partner_tenant_name_email,priority:1"`
	PartnerName     string      `gorm:"type:varchar(255);not null;uniqueIndex:idx_partner_tenant_name_email,priority:2"`
	PartnerNameKana string      `gorm:"type:varchar(255)"`
	PartnerType     PartnerType `gorm:"type:varchar(10);not null;default:'customer'"`
	ContactName     string      `gorm:"type:varchar(100)"`
	Email           string      `gorm:"type:varchar(254);uniqueIndex:idx_partner_tenant_name_email,priority:3"`
	TelNumber       string      `gorm:"type:varchar(20)"`
	PostalCode      string      `gorm:"type:varchar(8)"`
	State           string      `gorm:"type:varchar(100)"`
	City            string      `gorm:"type:varchar(100)"`
	Address         string      `gorm:"type:varchar(255)"`
	Address2        string      `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (Partner) TableName() string {
	return "partners"
}

var (
	telNumberRegex  = regexp.MustCompile(`^[0-9-]+$`)
	postalCodeRegex = regexp.MustCompile(`^\d{3}-?\d{4}$`)
	emailRegex      = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// NewPartner creates a partner with required fields
func NewPartner(tenantID, createdBy uuid.UUID, name string, partnerType PartnerType) (*Partner, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("partner_name", "cannot be empty")
	}
	if len(name) > 255 {
		return nil, shared.NewValidationError("partner_name", "cannot exceed 255 characters")
	}
	if err := validatePartnerType(partnerType); err != nil {
		return nil, err
	}

	return &Partner{
		TenantEntity: shared.NewTenantEntity(createdBy),
		TenantID:     tenantID,
		PartnerName:  name,
		PartnerType:  partnerType,
	}, nil
}

// SetContact sets the contact person and reachability fields
func (p *Partner) SetContact(contactName, email, tel string) error {
	email = strings.TrimSpace(email)
	if email != "" && !emailRegex.MatchString(email) {
		return shared.NewValidationError("email", "invalid email format")
	}
	tel = strings.TrimSpace(tel)
	if tel != "" && !telNumberRegex.MatchString(tel) {
		return shared.NewValidationError("tel_number", "may only contain digits and hyphens")
	}
	p.ContactName = strings.TrimSpace(contactName)
	p.Email = strings.ToLower(email)
	p.TelNumber = tel
	return nil
}

// SetAddress sets the postal fields. The postal code accepts seven
// digits with an optional hyphen.
func (p *Partner) SetAddress(postalCode, state, city, address, address2 string) error {
	postalCode = strings.TrimSpace(postalCode)
	if postalCode != "" && !postalCodeRegex.MatchString(postalCode) {
		return shared.NewValidationError("postal_code", "must be 7 digits with an optional hyphen")
	}
	p.PostalCode = postalCode
	p.State = strings.TrimSpace(state)
	p.City = strings.TrimSpace(city)
	p.Address = strings.TrimSpace(address)
	p.Address2 = strings.TrimSpace(address2)
	return nil
}

// SetKana sets the phonetic name
func (p *Partner) SetKana(kana string) {
	p.PartnerNameKana = strings.TrimSpace(kana)
}

// IsCustomer reports whether the partner can be billed
func (p *Partner) IsCustomer() bool {
	return p.PartnerType == PartnerTypeCustomer || p.PartnerType == PartnerTypeBoth
}

func validatePartnerType(t PartnerType) error {
	switch t {
	case PartnerTypeCustomer, PartnerTypeSupplier, PartnerTypeBoth:
		return nil
	}
	return shared.NewValidationError("partner_type", "unknown partner type")
}

// ParsePartnerType maps a stored or imported value to a PartnerType
func ParsePartnerType(s string) (PartnerType, error) {
	t := PartnerType(strings.TrimSpace(s))
	if err := validatePartnerType(t); err != nil {
		return "", err
	}
	return t, nil
}

// Filter narrows partner listings
type Filter struct {
	Keyword     string
	PartnerType PartnerType
	Page        int
	PageSize    int
}

// Repository defines the interface for partner persistence.
// All operations are tenant scoped and exclude soft-deleted rows.
type Repository interface {
	// FindByID finds a partner by ID within the tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Partner, error)

	// FindByNameAndEmail finds a partner by the (name, email) unique key
	FindByNameAndEmail(ctx context.Context, tenantID uuid.UUID, name, email string) (*Partner, error)

	// FindByName finds a partner by exact name. With duplicate names
	// under different emails the kana-ordered first match wins.
	FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*Partner, error)

	// FindAll lists partners matching the filter
	FindAll(ctx context.Context, tenantID uuid.UUID, filter Filter) ([]Partner, int64, error)

	// Save creates or updates a partner
	Save(ctx context.Context, p *Partner) error

	// SaveAll creates partners in bulk within a single transaction
	SaveAll(ctx context.Context, partners []*Partner) error

	// Delete soft-deletes a partner
	Delete(ctx context.Context, tenantID, id uuid.UUID, deletedBy uuid.UUID) error
}
