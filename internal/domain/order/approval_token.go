package order

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/google/uuid"

	"github.com/salesdesk/backend/internal/domain/shared"
)

// tokenBytes gives 256 bits of randomness, 43 base64url characters
const tokenBytes = 32

// ApprovalToken is a one-shot credential sent to the partner's email
// that authorizes a single external accept or reject. It is minted in
// the same transaction as the internal approval and burned in the same
// transaction as the customer decision.
type ApprovalToken struct {
	Token        string    `gorm:"type:varchar(64);primaryKey"`
	SalesOrderID uuid.UUID `gorm:"type:uuid;not null;index"`
	TenantID     uuid.UUID `gorm:"type:uuid;not null;index"`
	PartnerEmail string    `gorm:"type:varchar(254);not null"`
	Used         bool      `gorm:"not null;default:false"`
	UsedAt       *time.Time
	CreatedAt    time.Time
}

// TableName returns the table name for GORM
func (ApprovalToken) TableName() string {
	return "approval_tokens"
}

// NewApprovalToken mints a token for the given order
func NewApprovalToken(tenantID, salesOrderID uuid.UUID, partnerEmail string) (*ApprovalToken, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}

	return &ApprovalToken{
		Token:        base64.RawURLEncoding.EncodeToString(buf),
		SalesOrderID: salesOrderID,
		TenantID:     tenantID,
		PartnerEmail: partnerEmail,
		CreatedAt:    time.Now(),
	}, nil
}

// Redeem burns the token. A second redemption fails.
func (t *ApprovalToken) Redeem() error {
	if t.Used {
		return shared.ErrInvalidToken
	}
	now := time.Now()
	t.Used = true
	t.UsedAt = &now
	return nil
}

// Decision is the external party's answer
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// Verb maps the decision onto the workflow verb
func (d Decision) Verb() (Verb, error) {
	switch d {
	case DecisionAccept:
		return VerbAccept, nil
	case DecisionReject:
		return VerbReject, nil
	}
	return "", shared.NewValidationError("decision", "must be accept or reject")
}

// TokenNotifier dispatches a freshly minted token to the partner.
// Real delivery is an external concern; implementations may just log.
type TokenNotifier interface {
	NotifyApprovalRequested(token *ApprovalToken, order *SalesOrder) error
}
