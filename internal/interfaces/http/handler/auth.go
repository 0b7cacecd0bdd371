package handler

import (
	"github.com/gin-gonic/gin"

	appidentity "github.com/salesdesk/backend/internal/application/identity"
)

// AuthHandler handles login, logout and the current-user endpoint
type AuthHandler struct {
	BaseHandler
	auth  *appidentity.AuthService
	users *appidentity.UserService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(auth *appidentity.AuthService, users *appidentity.UserService) *AuthHandler {
	return &AuthHandler{auth: auth, users: users}
}

// RegisterPublicRoutes registers the routes that work without a token
func (h *AuthHandler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/login", h.Login)
}

// RegisterRoutes registers the authenticated routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/logout", h.Logout)
	rg.GET("/auth/me", h.Me)
}

// Login verifies credentials and issues an access token
func (h *AuthHandler) Login(c *gin.Context) {
	var req appidentity.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Logout records the logout for the audit trail
func (h *AuthHandler) Logout(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	h.auth.Logout(c.Request.Context(), caller)
	h.NoContent(c)
}

// Me returns the authenticated user
func (h *AuthHandler) Me(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	resp, err := h.users.Get(c.Request.Context(), caller, caller.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
