package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/salesdesk/backend/internal/domain/identity"
)

// LoginRequest represents a login attempt
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued access token and the user behind it
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// CreateUserRequest represents a request to create a user
type CreateUserRequest struct {
	Username     string      `json:"username" binding:"required,min=1,max=100"`
	UsernameKana string      `json:"username_kana" binding:"max=100"`
	Email        string      `json:"email" binding:"required,email"`
	Password     string      `json:"password" binding:"required,min=8"`
	Gender       string      `json:"gender" binding:"omitempty,oneof=male female other"`
	TelNumber    string      `json:"tel_number" binding:"max=20"`
	Privilege    string      `json:"privilege" binding:"required,oneof=system manager editor viewer"`
	GroupIDs     []uuid.UUID `json:"group_ids"`
}

// UpdateUserRequest represents a partial update of a user
type UpdateUserRequest struct {
	Username          *string      `json:"username" binding:"omitempty,min=1,max=100"`
	UsernameKana      *string      `json:"username_kana" binding:"omitempty,max=100"`
	Password          *string      `json:"password" binding:"omitempty,min=8"`
	Gender            *string      `json:"gender" binding:"omitempty,oneof=male female other"`
	TelNumber         *string      `json:"tel_number" binding:"omitempty,max=20"`
	EmploymentStatus  *string      `json:"employment_status" binding:"omitempty,oneof=active on_leave retired"`
	EmploymentEndDate *time.Time   `json:"employment_end_date"`
	Privilege         *string      `json:"privilege" binding:"omitempty,oneof=system manager editor viewer"`
	GroupIDs          *[]uuid.UUID `json:"group_ids"`
}

// UserListFilter narrows the user listing
type UserListFilter struct {
	Keyword  string `form:"keyword"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID                uuid.UUID   `json:"id"`
	Username          string      `json:"username"`
	UsernameKana      string      `json:"username_kana"`
	Email             string      `json:"email"`
	Gender            string      `json:"gender"`
	TelNumber         string      `json:"tel_number"`
	EmploymentStatus  string      `json:"employment_status"`
	EmploymentEndDate *time.Time  `json:"employment_end_date"`
	IsEmployed        bool        `json:"is_employed"`
	Privilege         string      `json:"privilege"`
	LastLoginAt       *time.Time  `json:"last_login_at"`
	GroupIDs          []uuid.UUID `json:"group_ids"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// UserListResponse is a page of the user listing
type UserListResponse struct {
	Items    []UserResponse `json:"items"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// GroupRequest represents a request to create or rename a group
type GroupRequest struct {
	GroupName string `json:"group_name" binding:"required,min=1,max=100"`
}

// GroupResponse represents a group in API responses
type GroupResponse struct {
	ID        uuid.UUID `json:"id"`
	GroupName string    `json:"group_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TenantResponse represents the caller's tenant in API responses
type TenantResponse struct {
	ID                 uuid.UUID `json:"id"`
	TenantCode         string    `json:"tenant_code"`
	TenantName         string    `json:"tenant_name"`
	RepresentativeName string    `json:"representative_name"`
	ContactEmail       string    `json:"contact_email"`
	ContactTelNumber   string    `json:"contact_tel_number"`
	PostalCode         string    `json:"postal_code"`
	State              string    `json:"state"`
	City               string    `json:"city"`
	Address            string    `json:"address"`
	Address2           string    `json:"address2"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// UpdateTenantRequest represents an update of the tenant profile
type UpdateTenantRequest struct {
	TenantName         string `json:"tenant_name" binding:"required,min=1,max=200"`
	RepresentativeName string `json:"representative_name" binding:"max=100"`
	ContactEmail       string `json:"contact_email" binding:"omitempty,email"`
	ContactTelNumber   string `json:"contact_tel_number" binding:"max=20"`
	PostalCode         string `json:"postal_code" binding:"max=8"`
	State              string `json:"state" binding:"max=100"`
	City               string `json:"city" binding:"max=100"`
	Address            string `json:"address" binding:"max=255"`
	Address2           string `json:"address2" binding:"max=255"`
}

// ToUserResponse maps a user to its API representation
func ToUserResponse(u *identity.User) *UserResponse {
	return &UserResponse{
		ID:                u.ID,
		Username:          u.Username,
		UsernameKana:      u.UsernameKana,
		Email:             u.Email,
		Gender:            string(u.Gender),
		TelNumber:         u.TelNumber,
		EmploymentStatus:  string(u.EmploymentStatus),
		EmploymentEndDate: u.EmploymentEndDate,
		IsEmployed:        u.IsEmployed(),
		Privilege:         u.Privilege.String(),
		LastLoginAt:       u.LastLoginAt,
		GroupIDs:          u.GroupIDs,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

// ToGroupResponse maps a group to its API representation
func ToGroupResponse(g *identity.UserGroup) *GroupResponse {
	return &GroupResponse{
		ID:        g.ID,
		GroupName: g.GroupName,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

// ToTenantResponse maps a tenant to its API representation
func ToTenantResponse(t *identity.Tenant) *TenantResponse {
	return &TenantResponse{
		ID:                 t.ID,
		TenantCode:         t.TenantCode,
		TenantName:         t.TenantName,
		RepresentativeName: t.RepresentativeName,
		ContactEmail:       t.ContactEmail,
		ContactTelNumber:   t.ContactTelNumber,
		PostalCode:         t.PostalCode,
		State:              t.State,
		City:               t.City,
		Address:            t.Address,
		Address2:           t.Address2,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}
