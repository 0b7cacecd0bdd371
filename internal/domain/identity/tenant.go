package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/salesdesk/backend/internal/domain/shared"
)

// Tenant represents an organization using the system. Tenant rows are
// global; everything else hangs off a tenant via TenantEntity.
type Tenant struct {
	shared.BaseEntity
	TenantCode         string `gorm:"size:50;not null;uniqueIndex"`
	TenantName         string `gorm:"size:200;not null"`
	RepresentativeName string `gorm:"size:100"`
	ContactEmail       string `gorm:"size:254"`
	ContactTelNumber   string `gorm:"size:20"`
	PostalCode         string `gorm:"size:8"`
	State              string `gorm:"size:100"`
	City               string `gorm:"size:100"`
	Address            string `gorm:"size:255"`
	Address2           string `gorm:"size:255"`
	IsDeleted          bool   `gorm:"not null;default:false"`
}

var tenantCodeRegex = regexp.MustCompile(`^[0-9A-Za-z_-]+$`)

// NewTenant creates a tenant with the given tenant code.
// The code is immutable once assigned.
func NewTenant(code, name string) (*Tenant, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewValidationError("tenant_code", "cannot be empty")
	}
	if !tenantCodeRegex.MatchString(code) {
		return nil, shared.NewValidationError("tenant_code", "may only contain letters, numbers, underscores and hyphens")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("tenant_name", "cannot be empty")
	}

	return &Tenant{
		BaseEntity: shared.NewBaseEntity(),
		TenantCode: code,
		TenantName: name,
	}, nil
}

// UpdateProfile updates the mutable tenant fields. The tenant code is
// never touched here.
func (t *Tenant) UpdateProfile(name, representative, email, tel string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewValidationError("tenant_name", "cannot be empty")
	}
	t.TenantName = name
	t.RepresentativeName = strings.TrimSpace(representative)
	t.ContactEmail = strings.TrimSpace(email)
	t.ContactTelNumber = strings.TrimSpace(tel)
	t.UpdatedAt = time.Now()
	return nil
}

// SetAddress updates the postal fields
func (t *Tenant) SetAddress(postalCode, state, city, address, address2 string) {
	t.PostalCode = strings.TrimSpace(postalCode)
	t.State = strings.TrimSpace(state)
	t.City = strings.TrimSpace(city)
	t.Address = strings.TrimSpace(address)
	t.Address2 = strings.TrimSpace(address2)
	t.UpdatedAt = time.Now()
}
