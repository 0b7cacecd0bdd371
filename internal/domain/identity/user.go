package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/salesdesk/backend/internal/domain/shared"
)

// Gender represents a user's gender
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// EmploymentStatus represents a user's employment state
type EmploymentStatus string

const (
	EmploymentActive  EmploymentStatus = "active"
	EmploymentOnLeave EmploymentStatus = "on_leave"
	EmploymentRetired EmploymentStatus = "retired"
)

// Password cost for bcrypt
const bcryptCost = 12

// User represents an authenticated person within a tenant
type User struct {
	shared.TenantEntity
	TenantID          uuid.UUID        `gorm:"type:uuid;not null;index"`
	Username          string           `gorm:"size:100;not null"`
	UsernameKana      string           `gorm:"size:100"`
	Email             string           `gorm:"size:254;not null;uniqueIndex"`
	PasswordHash      string           `gorm:"size:100;not null"`
	Gender            Gender           `gorm:"size:10"`
	TelNumber         string           `gorm:"size:20"`
	EmploymentStatus  EmploymentStatus `gorm:"size:10;not null;default:active"`
	EmploymentEndDate *time.Time
	Privilege         Privilege `gorm:"size:10;not null;default:viewer"`
	LastLoginAt       *time.Time
	// Group memberships live in user_group_members, loaded by the repository
	GroupIDs []uuid.UUID `gorm:"-"`
}

// UserGroup is a named set of users within a tenant.
// Unique on (tenant_id, group_name).
type UserGroup struct {
	shared.TenantEntity
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index"`
	GroupName string `gorm:"size:100;not null"`
}

// UserGroupMember is the join row between users and groups
type UserGroupMember struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	GroupID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time
}

var telNumberRegex = regexp.MustCompile(`^[0-9-]+$`)

// NewUser creates a new user with required fields
func NewUser(tenantID, createdBy uuid.UUID, username, email, password string, privilege Privilege) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, shared.NewValidationError("username", "cannot be empty")
	}
	if len(username) > 100 {
		return nil, shared.NewValidationError("username", "cannot exceed 100 characters")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if !privilege.IsValid() {
		return nil, shared.NewValidationError("privilege", "unknown privilege class")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	return &User{
		TenantEntity:     shared.NewTenantEntity(createdBy),
		TenantID:         tenantID,
		Username:         username,
		Email:            strings.ToLower(strings.TrimSpace(email)),
		PasswordHash:     hash,
		EmploymentStatus: EmploymentActive,
		Privilege:        privilege,
		GroupIDs:         make([]uuid.UUID, 0),
	}, nil
}

// SetTelNumber sets the phone number, digits and hyphens only
func (u *User) SetTelNumber(tel string) error {
	tel = strings.TrimSpace(tel)
	if tel != "" && !telNumberRegex.MatchString(tel) {
		return shared.NewValidationError("tel_number", "may only contain digits and hyphens")
	}
	u.TelNumber = tel
	return nil
}

// SetGender sets the gender, empty is allowed
func (u *User) SetGender(g Gender) error {
	switch g {
	case "", GenderMale, GenderFemale, GenderOther:
		u.Gender = g
		return nil
	}
	return shared.NewValidationError("gender", "unknown gender value")
}

// SetEmployment updates the employment status and end date
func (u *User) SetEmployment(status EmploymentStatus, endDate *time.Time) error {
	switch status {
	case EmploymentActive, EmploymentOnLeave, EmploymentRetired:
	default:
		return shared.NewValidationError("employment_status", "unknown employment status")
	}
	u.EmploymentStatus = status
	u.EmploymentEndDate = endDate
	return nil
}

// IsEmployed reports whether the user is currently employed: status is
// active and the end date is unset or in the future.
func (u *User) IsEmployed() bool {
	if u.EmploymentStatus != EmploymentActive {
		return false
	}
	if u.EmploymentEndDate == nil {
		return true
	}
	return u.EmploymentEndDate.After(time.Now())
}

// SetPassword replaces the password hash
func (u *User) SetPassword(password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// RecordLogin records a successful login
func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
}

// SetGroups replaces the group memberships, deduplicated
func (u *User) SetGroups(groupIDs []uuid.UUID) {
	seen := make(map[uuid.UUID]bool, len(groupIDs))
	unique := make([]uuid.UUID, 0, len(groupIDs))
	for _, gid := range groupIDs {
		if gid == uuid.Nil || seen[gid] {
			continue
		}
		seen[gid] = true
		unique = append(unique, gid)
	}
	u.GroupIDs = unique
}

// InGroup reports whether the user belongs to the given group
func (u *User) InGroup(groupID uuid.UUID) bool {
	for _, gid := range u.GroupIDs {
		if gid == groupID {
			return true
		}
	}
	return false
}

// NewUserGroup creates a group within a tenant
func NewUserGroup(tenantID, createdBy uuid.UUID, name string) (*UserGroup, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("group_name", "cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewValidationError("group_name", "cannot exceed 100 characters")
	}
	return &UserGroup{
		TenantEntity: shared.NewTenantEntity(createdBy),
		TenantID:     tenantID,
		GroupName:    name,
	}, nil
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return shared.NewValidationError("email", "cannot be empty")
	}
	if len(email) > 254 {
		return shared.NewValidationError("email", "cannot exceed 254 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewValidationError("email", "invalid email format")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", shared.NewValidationError("password", "must be at least 8 characters")
	}
	if len(password) > 72 {
		return "", shared.NewValidationError("password", "cannot exceed 72 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
