package handler

import (
	"github.com/gin-gonic/gin"

	appcatalog "github.com/salesdesk/backend/internal/application/catalog"
)

// ProductHandler exposes the product master table
type ProductHandler struct {
	BaseHandler
	products *appcatalog.ProductService
	csv      *appcatalog.CSVService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products *appcatalog.ProductService, csv *appcatalog.CSVService) *ProductHandler {
	return &ProductHandler{products: products, csv: csv}
}

// RegisterRoutes registers the product routes
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/products")
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

// Create registers a new product
func (h *ProductHandler) Create(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req appcatalog.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.products.Create(c.Request.Context(), caller, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get returns a single product
func (h *ProductHandler) Get(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.products.Get(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List returns a filtered page of products
func (h *ProductHandler) List(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var f appcatalog.ListFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.products.List(c.Request.Context(), caller, f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, resp.Items, resp.Total, resp.Page, resp.PageSize)
}

// Update edits a product
func (h *ProductHandler) Update(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req appcatalog.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.products.Update(c.Request.Context(), caller, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete removes a product unless orders still reference it
func (h *ProductHandler) Delete(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.products.Delete(c.Request.Context(), caller, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Import loads products from an uploaded CSV file
func (h *ProductHandler) Import(c *gin.Context) {
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

// Export streams the product master table as CSV or Excel
func (h *ProductHandler) Export(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var f appcatalog.ListFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var (
		result      *appcatalog.ExportResult
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
