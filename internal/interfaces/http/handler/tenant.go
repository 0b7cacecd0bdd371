package handler

import (
	"github.com/gin-gonic/gin"

	appidentity "github.com/salesdesk/backend/internal/application/identity"
)

// TenantHandler exposes the caller's tenant profile
type TenantHandler struct {
	BaseHandler
	tenants *appidentity.TenantService
}

// NewTenantHandler creates a new TenantHandler
func NewTenantHandler(tenants *appidentity.TenantService) *TenantHandler {
	return &TenantHandler{tenants: tenants}
}

// RegisterRoutes registers the tenant routes
func (h *TenantHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/tenant", h.Get)
	rg.PUT("/tenant", h.Update)
}

// Get returns the caller's tenant profile
func (h *TenantHandler) Get(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	resp, err := h.tenants.Get(c.Request.Context(), caller)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update edits the tenant profile
func (h *TenantHandler) Update(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req appidentity.UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.tenants.Update(c.Request.Context(), caller, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
