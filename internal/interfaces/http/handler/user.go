package handler

import (
	"github.com/gin-gonic/gin"

	appidentity "github.com/salesdesk/backend/internal/application/identity"
)

// UserHandler handles the user master endpoints
type UserHandler struct {
	BaseHandler
	users *appidentity.UserService
	csv   *appidentity.CSVService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users *appidentity.UserService, csv *appidentity.CSVService) *UserHandler {
	return &UserHandler{users: users, csv: csv}
}

// RegisterRoutes registers the user master routes
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.POST("", h.Create)
	users.GET("", h.List)
	users.POST("/import", h.Import)
	users.GET("/export", h.Export)
	users.GET("/:id", h.Get)
	users.PUT("/:id", h.Update)
	users.DELETE("/:id", h.Delete)
}

// Create creates a user
func (h *UserHandler) Create(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req appidentity.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.users.Create(c.Request.Context(), caller, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get returns one user
func (h *UserHandler) Get(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.users.Get(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List returns a page of users
func (h *UserHandler) List(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var f appidentity.UserListFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.users.List(c.Request.Context(), caller, f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, resp.Items, resp.Total, resp.Page, resp.PageSize)
}

// Update applies a partial edit to a user
func (h *UserHandler) Update(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req appidentity.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.users.Update(c.Request.Context(), caller, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete soft-deletes a user
func (h *UserHandler) Delete(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.users.Delete(c.Request.Context(), caller, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Import creates users from an uploaded CSV
func (h *UserHandler) Import(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	filename, data, err := readUpload(c, c.Request.ContentLength)
	if err != nil {
		h.BadRequest(c, "file upload is required")
		return
	}

	result, err := h.csv.Import(c.Request.Context(), caller, filename, data)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Export downloads the user master as CSV or xlsx
func (h *UserHandler) Export(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var f appidentity.UserListFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var (
		result *appidentity.ExportResult
		err    error
	)
	contentType := contentTypeCSV
	if wantsExcel(c) {
		result, err = h.csv.ExportExcel(c.Request.Context(), caller, f)
		contentType = contentTypeXLSX
	} else {
		result, err = h.csv.Export(c.Request.Context(), caller, f)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.File(c, result.Filename, contentType, result.Data)
}
