package handler

import (
	"github.com/gin-gonic/gin"

	apporder "github.com/salesdesk/backend/internal/application/order"
)

// OrderHandler exposes the sales order workflow
type OrderHandler struct {
	BaseHandler
	orders *apporder.Service
	csv    *apporder.CSVService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders *apporder.Service, csv *apporder.CSVService) *OrderHandler {
	return &OrderHandler{orders: orders, csv: csv}
}

// RegisterRoutes registers the authenticated order routes
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/orders")
	{
		g.POST("", h.Create)
		g.GET("", h.List)
		g.POST("/import", h.Import)
		g.GET("/export.csv", h.ExportCSV)
		g.GET("/export.xlsx", h.ExportExcel)
		g.GET("/export/count", h.ExportCount)
		g.GET("/:id", h.Get)
		g.PATCH("/:id", h.Update)
		g.POST("/:id/transitions", h.Transition)
	}
}

// RegisterPublicRoutes registers the external approval endpoint.
// The bearer here is the minted approval token, not a login session.
func (h *OrderHandler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/orders/tokens/:token", h.Redeem)
}

// Create opens a new draft order
func (h *OrderHandler) Create(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req apporder.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.orders.CreateDraft(c.Request.Context(), caller, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get returns a single order with its details
func (h *OrderHandler) Get(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.orders.Get(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List returns a filtered page of orders
func (h *OrderHandler) List(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var f apporder.ListFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.orders.List(c.Request.Context(), caller, f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, resp.Items, resp.Total, resp.Page, resp.PageSize)
}

// Update edits an order within the caller's editable field set
func (h *OrderHandler) Update(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req apporder.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.orders.Update(c.Request.Context(), caller, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Transition moves an order through the approval workflow
func (h *OrderHandler) Transition(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req apporder.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.orders.Transition(c.Request.Context(), caller, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Redeem records an external party's decision on a pending approval
func (h *OrderHandler) Redeem(c *gin.Context) {
	var req apporder.RedeemTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.orders.RedeemToken(c.Request.Context(), c.Param("token"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Import loads confirmed orders from an uploaded CSV file
func (h *OrderHandler) Import(c *gin.Context) {
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

// ExportCSV streams filtered orders as CSV
func (h *OrderHandler) ExportCSV(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var f apporder.ListFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.csv.Export(c.Request.Context(), caller, f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.File(c, result.Filename, contentTypeCSV, result.Data)
}

// ExportExcel streams filtered orders as an Excel workbook
func (h *OrderHandler) ExportExcel(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var f apporder.ListFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.csv.ExportExcel(c.Request.Context(), caller, f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.File(c, result.Filename, contentTypeXLSX, result.Data)
}

// ExportCount tells the client whether the filtered export would be truncated
func (h *OrderHandler) ExportCount(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var f apporder.ListFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	count, err := h.csv.Count(c.Request.Context(), caller, f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, count)
}
