package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/salesdesk/backend/internal/domain/identity"
	"github.com/salesdesk/backend/internal/infrastructure/auth"
	"github.com/salesdesk/backend/internal/infrastructure/logger"
	"github.com/salesdesk/backend/internal/interfaces/http/dto"
)

const (
	callerKey     = "caller"
	authHeaderKey = "Authorization"
	bearerPrefix  = "Bearer "
)

// Auth validates the bearer token and builds the caller for the
// request. Group memberships are loaded fresh so reference-set checks
// see the current state, not the state at login.
func Auth(jwt *auth.JWTService, users identity.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(authHeaderKey)
		if header == "" || !strings.HasPrefix(header, bearerPrefix) {
			abortUnauthorized(c, "Missing bearer token")
			return
		}

		session, err := jwt.Validate(strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthorized(c, "Token has expired")
				return
			}
			abortUnauthorized(c, "Invalid token")
			return
		}

		user, err := users.FindByID(c.Request.Context(), session.TenantID, session.UserID)
		if err != nil {
			logger.L(c.Request.Context()).Warn("authenticated user not found",
				zap.String("user_id", session.UserID.String()))
			abortUnauthorized(c, "Invalid token")
			return
		}
		if !user.IsEmployed() {
			abortUnauthorized(c, "Account is no longer active")
			return
		}

		caller := identity.Caller{
			UserID:    user.ID,
			TenantID:  user.TenantID,
			Privilege: user.Privilege,
			GroupIDs:  user.GroupIDs,
		}
		c.Set(callerKey, caller)

		ctx := c.Request.Context()
		l := logger.FromContext(ctx)
		ctx, l = logger.WithTenantID(ctx, l, caller.TenantID.String())
		ctx, _ = logger.WithUserID(ctx, l, caller.UserID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetCaller returns the caller set by Auth. The second return is false
// on routes that skip authentication.
func GetCaller(c *gin.Context) (identity.Caller, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return identity.Caller{}, false
	}
	caller, ok := v.(identity.Caller)
	return caller, ok
}

// RequirePrivilege rejects callers below the given privilege class.
// Fine-grained rules still live in the services; this only stops
// obviously unauthorized requests at the edge.
func RequirePrivilege(min identity.Privilege) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := GetCaller(c)
		if !ok {
			abortUnauthorized(c, "Missing bearer token")
			return
		}
		if !caller.Privilege.AtLeast(min) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse(dto.ErrCodeForbidden, "Insufficient privilege", GetRequestID(c)))
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponse(dto.ErrCodeUnauthorized, message, GetRequestID(c)))
}
