package partner

import (
	"time"

	"github.com/google/uuid"

	"github.com/salesdesk/backend/internal/domain/partner"
)

// CreatePartnerRequest represents a request to create a partner
type CreatePartnerRequest struct {
	PartnerName     string `json:"partner_name" binding:"required,min=1,max=255"`
	PartnerNameKana string `json:"partner_name_kana" binding:"max=255"`
	PartnerType     string `json:"partner_type" binding:"required,oneof=customer supplier both"`
	ContactName     string `json:"contact_name" binding:"max=100"`
	Email           string `json:"email" binding:"omitempty,email"`
	TelNumber       string `json:"tel_number" binding:"max=20"`
	PostalCode      string `json:"postal_code" binding:"max=8"`
	State           string `json:"state" binding:"max=100"`
	City            string `json:"city" binding:"max=100"`
	Address         string `json:"address" binding:"max=255"`
	Address2        string `json:"address2" binding:"max=255"`
}

// UpdatePartnerRequest represents a partial update of a partner
type UpdatePartnerRequest struct {
	PartnerName     *string `json:"partner_name" binding:"omitempty,min=1,max=255"`
	PartnerNameKana *string `json:"partner_name_kana" binding:"omitempty,max=255"`
	PartnerType     *string `json:"partner_type" binding:"omitempty,oneof=customer supplier both"`
	ContactName     *string `json:"contact_name" binding:"omitempty,max=100"`
	Email           *string `json:"email" binding:"omitempty,email"`
	TelNumber       *string `json:"tel_number" binding:"omitempty,max=20"`
	PostalCode      *string `json:"postal_code" binding:"omitempty,max=8"`
	State           *string `json:"state" binding:"omitempty,max=100"`
	City            *string `json:"city" binding:"omitempty,max=100"`
	Address         *string `json:"address" binding:"omitempty,max=255"`
	Address2        *string `json:"address2" binding:"omitempty,max=255"`
}

// ListFilter narrows the partner listing
type ListFilter struct {
	Keyword     string `form:"keyword"`
	PartnerType string `form:"partner_type" binding:"omitempty,oneof=customer supplier both"`
	Page        int    `form:"page"`
	PageSize    int    `form:"page_size"`
}

// PartnerResponse represents a partner in API responses
type PartnerResponse struct {
	ID              uuid.UUID `json:"id"`
	PartnerName     string    `json:"partner_name"`
	PartnerNameKana string    `json:"partner_name_kana"`
	PartnerType     string    `json:"partner_type"`
	ContactName     string    `json:"contact_name"`
	Email           string    `json:"email"`
	TelNumber       string    `json:"tel_number"`
	PostalCode      string    `json:"postal_code"`
	State           string    `json:"state"`
	City            string    `json:"city"`
	Address         string    `json:"address"`
	Address2        string    `json:"address2"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ListResponse is a page of the partner listing
type ListResponse struct {
	Items    []PartnerResponse `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// ToPartnerResponse maps a partner to its API representation
func ToPartnerResponse(p *partner.Partner) *PartnerResponse {
	return &PartnerResponse{
		ID:              p.ID,
		PartnerName:     p.PartnerName,
		PartnerNameKana: p.PartnerNameKana,
		PartnerType:     string(p.PartnerType),
		ContactName:     p.ContactName,
		Email:           p.Email,
		TelNumber:       p.TelNumber,
		PostalCode:      p.PostalCode,
		State:           p.State,
		City:            p.City,
		Address:         p.Address,
		Address2:        p.Address2,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
