package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/salesdesk/backend/internal/domain/order"
)

// DetailRequest is one incoming detail line
type DetailRequest struct {
	ProductID        *uuid.UUID      `json:"product_id"`
	Quantity         int             `json:"quantity"`
	BillingUnitPrice decimal.Decimal `json:"billing_unit_price"`
	TaxRate          decimal.Decimal `json:"tax_rate"`
	IsTaxExempt      bool            `json:"is_tax_exempt"`
}

// CreateOrderRequest represents a request to create a draft order
type CreateOrderRequest struct {
	SalesOrderDate    time.Time       `json:"sales_order_date" binding:"required"`
	PartnerID         *uuid.UUID      `json:"partner_id"`
	AssigneeUserID    *uuid.UUID      `json:"assignee_user_id"`
	DeliveryDueDate   *time.Time      `json:"delivery_due_date"`
	DeliveryPlace     string          `json:"delivery_place" binding:"max=255"`
	Remarks           string          `json:"remarks"`
	RoundingMethod    string          `json:"rounding_method" binding:"omitempty,oneof=floor ceil half_up"`
	ReferenceUserIDs  []uuid.UUID     `json:"reference_user_ids"`
	ReferenceGroupIDs []uuid.UUID     `json:"reference_group_ids"`
	Details           []DetailRequest `json:"details"`
}

// UpdateOrderRequest represents a partial update of an order. Nil
// fields are left untouched; a provided field must be writable in the
// order's current status for the caller.
type UpdateOrderRequest struct {
	SalesOrderDate          *time.Time       `json:"sales_order_date"`
	PartnerID               *uuid.UUID       `json:"partner_id"`
	AssigneeUserID          *uuid.UUID       `json:"assignee_user_id"`
	DeliveryDueDate         *time.Time       `json:"delivery_due_date"`
	DeliveryPlace           *string          `json:"delivery_place" binding:"omitempty,max=255"`
	Remarks                 *string          `json:"remarks"`
	RoundingMethod          *string          `json:"rounding_method" binding:"omitempty,oneof=floor ceil half_up"`
	ReferenceUserIDs        *[]uuid.UUID     `json:"reference_user_ids"`
	ReferenceGroupIDs       *[]uuid.UUID     `json:"reference_group_ids"`
	Details                 *[]DetailRequest `json:"details"`
	QuotationManagerComment *string          `json:"quotation_manager_comment"`
	OrderManagerComment     *string          `json:"order_manager_comment"`
}

// TransitionRequest represents a workflow action on an order
type TransitionRequest struct {
	Verb       string             `json:"verb" binding:"required"`
	Comment    string             `json:"comment"`
	References *ReferencesRequest `json:"references"`
}

// ReferencesRequest replaces the reference reviewer lists atomically
// with a transition, while the pre-transition state still permits it
type ReferencesRequest struct {
	UserIDs  []uuid.UUID `json:"user_ids"`
	GroupIDs []uuid.UUID `json:"group_ids"`
}

// RedeemTokenRequest is the external party's decision on an approval
type RedeemTokenRequest struct {
	Decision string `json:"decision" binding:"required,oneof=accept reject"`
	Comment  string `json:"comment"`
}

// ListFilter narrows the order listing
type ListFilter struct {
	Keyword   string     `form:"keyword"`
	Status    string     `form:"status"`
	PartnerID *uuid.UUID `form:"partner_id"`
	DateFrom  *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo    *time.Time `form:"date_to" time_format:"2006-01-02"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size"`
}

// DetailResponse represents a detail line in API responses
type DetailResponse struct {
	ID               uuid.UUID       `json:"id"`
	LineNo           int             `json:"line_no"`
	ProductID        *uuid.UUID      `json:"product_id"`
	Quantity         int             `json:"quantity"`
	MasterUnitPrice  decimal.Decimal `json:"master_unit_price"`
	BillingUnitPrice decimal.Decimal `json:"billing_unit_price"`
	TaxRate          decimal.Decimal `json:"tax_rate"`
	IsTaxExempt      bool            `json:"is_tax_exempt"`
}

// OrderResponse represents a full order in API responses
type OrderResponse struct {
	ID                       uuid.UUID        `json:"id"`
	SalesOrderNo             string           `json:"sales_order_no"`
	Status                   string           `json:"status"`
	SalesOrderDate           time.Time        `json:"sales_order_date"`
	PartnerID                *uuid.UUID       `json:"partner_id"`
	AssigneeUserID           *uuid.UUID       `json:"assignee_user_id"`
	DeliveryDueDate          *time.Time       `json:"delivery_due_date"`
	DeliveryPlace            string           `json:"delivery_place"`
	Remarks                  string           `json:"remarks"`
	QuotationManagerComment  string           `json:"quotation_manager_comment"`
	QuotationCustomerComment string           `json:"quotation_customer_comment"`
	OrderManagerComment      string           `json:"order_manager_comment"`
	OrderCustomerComment     string           `json:"order_customer_comment"`
	RoundingMethod           string           `json:"rounding_method"`
	ReferenceUserIDs         []uuid.UUID      `json:"reference_user_ids"`
	ReferenceGroupIDs        []uuid.UUID      `json:"reference_group_ids"`
	Details                  []DetailResponse `json:"details"`
	Subtotal                 decimal.Decimal  `json:"subtotal"`
	TaxTotal                 decimal.Decimal  `json:"tax_total"`
	GrandTotal               decimal.Decimal  `json:"grand_total"`
	EditableFields           []string         `json:"editable_fields"`
	CreateUserID             *uuid.UUID       `json:"create_user_id"`
	CreatedAt                time.Time        `json:"created_at"`
	UpdatedAt                time.Time        `json:"updated_at"`
}

// OrderListItem represents one row of the order listing
type OrderListItem struct {
	ID             uuid.UUID       `json:"id"`
	SalesOrderNo   string          `json:"sales_order_no"`
	Status         string          `json:"status"`
	SalesOrderDate time.Time       `json:"sales_order_date"`
	PartnerID      *uuid.UUID      `json:"partner_id"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ListResponse is a page of the order listing
type ListResponse struct {
	Items    []OrderListItem `json:"items"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// ToOrderResponse maps the aggregate to its API representation.
// EditableFields reflects what the given caller may change in the
// current status, for UI hinting.
func ToOrderResponse(o *order.SalesOrder, caller order.Caller) *OrderResponse {
	details := make([]DetailResponse, len(o.Details))
	for i, d := range o.Details {
		details[i] = DetailResponse{
			ID:               d.ID,
			LineNo:           d.LineNo,
			ProductID:        d.ProductID,
			Quantity:         d.Quantity,
			MasterUnitPrice:  d.MasterUnitPrice,
			BillingUnitPrice: d.BillingUnitPrice,
			TaxRate:          d.TaxRate,
			IsTaxExempt:      d.IsTaxExempt,
		}
	}

	totals := o.Totals()

	var editable []string
	if fields, err := o.AuthorizeSave(caller); err == nil {
		for f := range fields {
			editable = append(editable, string(f))
		}
	}

	return &OrderResponse{
		ID:                       o.ID,
		SalesOrderNo:             o.SalesOrderNo,
		Status:                   string(o.Status),
		SalesOrderDate:           o.SalesOrderDate,
		PartnerID:                o.PartnerID,
		AssigneeUserID:           o.AssigneeUserID,
		DeliveryDueDate:          o.DeliveryDueDate,
		DeliveryPlace:            o.DeliveryPlace,
		Remarks:                  o.Remarks,
		QuotationManagerComment:  o.QuotationManagerComment,
		QuotationCustomerComment: o.QuotationCustomerComment,
		OrderManagerComment:      o.OrderManagerComment,
		OrderCustomerComment:     o.OrderCustomerComment,
		RoundingMethod:           string(o.RoundingMethod),
		ReferenceUserIDs:         o.ReferenceUserIDs,
		ReferenceGroupIDs:        o.ReferenceGroupIDs,
		Details:                  details,
		Subtotal:                 totals.Subtotal,
		TaxTotal:                 totals.TaxTotal,
		GrandTotal:               totals.GrandTotal,
		EditableFields:           editable,
		CreateUserID:             o.CreateUserID,
		CreatedAt:                o.CreatedAt,
		UpdatedAt:                o.UpdatedAt,
	}
}

// ToOrderListItem maps one aggregate to a listing row
func ToOrderListItem(o *order.SalesOrder) OrderListItem {
	return OrderListItem{
		ID:             o.ID,
		SalesOrderNo:   o.SalesOrderNo,
		Status:         string(o.Status),
		SalesOrderDate: o.SalesOrderDate,
		PartnerID:      o.PartnerID,
		GrandTotal:     o.Totals().GrandTotal,
		UpdatedAt:      o.UpdatedAt,
	}
}
