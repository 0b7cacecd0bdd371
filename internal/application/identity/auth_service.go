package identity

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/salesdesk/backend/internal/domain/identity"
	"github.com/salesdesk/backend/internal/domain/shared"
	"github.com/salesdesk/backend/internal/infrastructure/auth"
	"github.com/salesdesk/backend/internal/infrastructure/logger"
)

// ErrInvalidCredentials is returned for a bad email, a bad password or
// a retired account alike, so probing reveals nothing.
var ErrInvalidCredentials = shared.NewDomainError("UNAUTHORIZED", "Invalid email or password")

// AuthService handles login and logout
type AuthService struct {
	users identity.UserRepository
	jwt   *auth.JWTService
}

// NewAuthService creates a new AuthService
func NewAuthService(users identity.UserRepository, jwt *auth.JWTService) *AuthService {
	return &AuthService{users: users, jwt: jwt}
}

// Login verifies the credentials and issues an access token. A
// successful login is recorded on the user row.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.VerifyPassword(req.Password) {
		logger.L(ctx).Warn("login rejected", zap.String("email", req.Email))
		return nil, ErrInvalidCredentials
	}
	if !user.IsEmployed() {
		logger.L(ctx).Warn("login rejected for inactive user", zap.String("email", req.Email))
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.jwt.Generate(user)
	if err != nil {
		return nil, err
	}

	user.RecordLogin()
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("user logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("tenant_id", user.TenantID.String()))

	return &LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      *ToUserResponse(user),
	}, nil
}

// Logout records the logout. Tokens are stateless and simply expire;
// the call exists for the audit trail.
func (s *AuthService) Logout(ctx context.Context, caller identity.Caller) {
	logger.L(ctx).Info("user logged out",
		zap.String("user_id", caller.UserID.String()),
		zap.String("tenant_id", caller.TenantID.String()))
}
