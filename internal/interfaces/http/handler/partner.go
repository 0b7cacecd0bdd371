package handler

import (
	"github.com/gin-gonic/gin"

	apppartner "github.com/salesdesk/backend/internal/application/partner"
)

// PartnerHandler exposes the business partner master table
type PartnerHandler struct {
	BaseHandler
	partners *apppartner.Service
	csv      *apppartner.CSVService
}

// NewPartnerHandler creates a new PartnerHandler
func NewPartnerHandler(partners *apppartner.Service, csv *apppartner.CSVService) *PartnerHandler {
	return &PartnerHandler{partners: partners, csv: csv}
}

// RegisterRoutes registers the partner routes
func (h *PartnerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/partners")
	{
		g.POST("", h.Create)
		g.GET("", h.List)
		g.POST("/import", h.Import)
		g.GET("/export", h.Export)
		g.GET("/:id", h.Get)
		g.PUT("/:id", h.Update)
		g.DELETE("/:id", h.Delete)
	}
}

// Create registers a new partner
func (h *PartnerHandler) Create(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req apppartner.CreatePartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.partners.Create(c.Request.Context(), caller, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get returns a single partner
func (h *PartnerHandler) Get(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.partners.Get(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List returns a filtered page of partners
func (h *PartnerHandler) List(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var f apppartner.ListFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.partners.List(c.Request.Context(), caller, f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, resp.Items, resp.Total, resp.Page, resp.PageSize)
}

// Update edits a partner
func (h *PartnerHandler) Update(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req apppartner.UpdatePartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.partners.Update(c.Request.Context(), caller, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete removes a partner unless orders still reference it
func (h *PartnerHandler) Delete(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.partners.Delete(c.Request.Context(), caller, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Import loads partners from an uploaded CSV file
func (h *PartnerHandler) Import(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	filename, data, err := readUpload(c, c.Request.ContentLength)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.csv.Import(c.Request.Context(), caller, filename, data)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Export streams the partner master table as CSV or Excel
func (h *PartnerHandler) Export(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var f apppartner.ListFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var (
		result      *apppartner.ExportResult
		contentType string
		err         error
	)
	if wantsExcel(c) {
		result, err = h.csv.ExportExcel(c.Request.Context(), caller, f)
		contentType = contentTypeXLSX
	} else {
		result, err = h.csv.Export(c.Request.Context(), caller, f)
		contentType = contentTypeCSV
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.File(c, result.Filename, contentType, result.Data)
}
