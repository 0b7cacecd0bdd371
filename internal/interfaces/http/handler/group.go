package handler

import (
	"github.com/gin-gonic/gin"

	appidentity "github.com/salesdesk/backend/internal/application/identity"
)

// GroupHandler handles the user group endpoints
type GroupHandler struct {
	BaseHandler
	groups *appidentity.GroupService
}

// NewGroupHandler creates a new GroupHandler
func NewGroupHandler(groups *appidentity.GroupService) *GroupHandler {
	return &GroupHandler{groups: groups}
}

// RegisterRoutes registers the group routes
func (h *GroupHandler) RegisterRoutes(rg *gin.RouterGroup) {
	groups := rg.Group("/groups")
	groups.POST("", h.Create)
	groups.GET("", h.List)
	groups.PUT("/:id", h.Update)
	groups.DELETE("/:id", h.Delete)
}

// Create creates a group
func (h *GroupHandler) Create(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req appidentity.GroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.groups.Create(c.Request.Context(), caller, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List returns all groups in the tenant
func (h *GroupHandler) List(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	items, err := h.groups.List(c.Request.Context(), caller)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Update renames a group
func (h *GroupHandler) Update(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req appidentity.GroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.groups.Update(c.Request.Context(), caller, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete soft-deletes a group
func (h *GroupHandler) Delete(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.groups.Delete(c.Request.Context(), caller, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
