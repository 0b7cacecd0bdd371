package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/salesdesk/backend/internal/domain/shared"
)

// SalesOrder is the aggregate root: a header plus its ordered detail
// lines, reference users and reference groups. Lifecycle is driven by
// the status machine; orders are never soft-deleted, CANCEL is the
// terminal failure state.
type SalesOrder struct {
	shared.TenantEntity
	TenantID                 uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_order_tenant_no,priority:1"`
	SalesOrderNo             string    `gorm:"type:varchar(20);uniqueIndex:idx_order_tenant_no,priority:2"`
	Status                   Status    `gorm:"type:varchar(30);not null;default:'DRAFT'"`
	SalesOrderDate           time.Time `gorm:"not null"`
	PartnerID                *uuid.UUID `gorm:"type:uuid;index"`
	AssigneeUserID           *uuid.UUID `gorm:"type:uuid"`
	DeliveryDueDate          *time.Time
	DeliveryPlace            string         `gorm:"type:varchar(255)"`
	Remarks                  string         `gorm:"type:text"`
	QuotationManagerComment  string         `gorm:"type:text"`
	QuotationCustomerComment string         `gorm:"type:text"`
	OrderManagerComment      string         `gorm:"type:text"`
	OrderCustomerComment     string         `gorm:"type:text"`
	RoundingMethod           RoundingMethod `gorm:"type:varchar(10);not null;default:'floor'"`

	Details []SalesOrderDetail `gorm:"foreignKey:SalesOrderID"`
	// Reference sets live in join tables, loaded by the repository
	ReferenceUserIDs  []uuid.UUID `gorm:"-"`
	ReferenceGroupIDs []uuid.UUID `gorm:"-"`
}

// TableName returns the table name for GORM
func (SalesOrder) TableName() string {
	return "sales_orders"
}

// SalesOrderDetail is one ordered line of an order. line_no values are
// dense, starting at 1, unique per order.
type SalesOrderDetail struct {
	shared.BaseEntity
	SalesOrderID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_detail_order_line,priority:1"`
	TenantID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	LineNo           int        `gorm:"not null;uniqueIndex:idx_detail_order_line,priority:2"`
	ProductID        *uuid.UUID `gorm:"type:uuid;index"`
	Quantity         int        `gorm:"not null"`
	MasterUnitPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	BillingUnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TaxRate          decimal.Decimal `gorm:"type:decimal(4,2);not null;default:0.10"`
	IsTaxExempt      bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (SalesOrderDetail) TableName() string {
	return "sales_order_details"
}

// OrderReferenceUser is the join row granting a user internal
// approval rights on one order
type OrderReferenceUser struct {
	SalesOrderID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID     uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt    time.Time
}

// TableName returns the table name for GORM
func (OrderReferenceUser) TableName() string {
	return "sales_order_reference_users"
}

// OrderReferenceGroup is the join row granting a group internal
// approval rights on one order
type OrderReferenceGroup struct {
	SalesOrderID uuid.UUID `gorm:"type:uuid;primaryKey"`
	GroupID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID     uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt    time.Time
}

// TableName returns the table name for GORM
func (OrderReferenceGroup) TableName() string {
	return "sales_order_reference_groups"
}

// LineError is a validation failure pinned to one detail line
type LineError struct {
	Line    int    `json:"line"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// LineErrors aggregates per-line failures into one error value
type LineErrors []LineError

// Error implements the error interface
func (e LineErrors) Error() string {
	msgs := make([]string, len(e))
	for i, le := range e {
		msgs[i] = fmt.Sprintf("line %d %s: %s", le.Line, le.Field, le.Message)
	}
	return strings.Join(msgs, "; ")
}

// DetailInput is one incoming detail line before normalization.
// MasterUnitPrice is only honored when explicitly provided (imports);
// otherwise the price is snapshot from the product master.
type DetailInput struct {
	ProductID        *uuid.UUID
	Quantity         int
	BillingUnitPrice decimal.Decimal
	MasterUnitPrice  *decimal.Decimal
	TaxRate          decimal.Decimal
	IsTaxExempt      bool
}

var allowedTaxRates = []decimal.Decimal{
	decimal.NewFromFloat(0.08),
	decimal.NewFromFloat(0.10),
}

// NewDraft creates a new order in DRAFT. The order number is assigned
// by the repository on first persistence, not here.
func NewDraft(tenantID, createdBy uuid.UUID, orderDate time.Time, rounding RoundingMethod) (*SalesOrder, error) {
	if !rounding.IsValid() {
		return nil, shared.NewValidationError("rounding_method", "must be one of floor, ceil, half_up")
	}
	if orderDate.IsZero() {
		return nil, shared.NewValidationError("sales_order_date", "cannot be empty")
	}

	return &SalesOrder{
		TenantEntity:      shared.NewTenantEntity(createdBy),
		TenantID:          tenantID,
		Status:            StatusDraft,
		SalesOrderDate:    orderDate,
		RoundingMethod:    rounding,
		Details:           make([]SalesOrderDetail, 0),
		ReferenceUserIDs:  make([]uuid.UUID, 0),
		ReferenceGroupIDs: make([]uuid.UUID, 0),
	}, nil
}

// AssignNumber sets the order number exactly once
func (o *SalesOrder) AssignNumber(no string) error {
	if o.SalesOrderNo != "" {
		return shared.NewDomainError("NUMBER_ASSIGNED", "Sales order number is already assigned")
	}
	o.SalesOrderNo = no
	return nil
}

// SetDetails replaces the detail list. Lines without a product are
// dropped; remaining lines are renumbered densely from 1 in input
// order. masterPrices supplies the product master price for snapshot;
// a line keeps its previous snapshot while its product is unchanged.
func (o *SalesOrder) SetDetails(inputs []DetailInput, masterPrices map[uuid.UUID]decimal.Decimal) error {
	previous := make(map[uuid.UUID]decimal.Decimal, len(o.Details))
	for i := range o.Details {
		if o.Details[i].ProductID != nil {
			previous[*o.Details[i].ProductID] = o.Details[i].MasterUnitPrice
		}
	}

	var errs LineErrors
	productCount := make(map[uuid.UUID]int)
	details := make([]SalesOrderDetail, 0, len(inputs))

	for _, in := range inputs {
		if in.ProductID == nil || *in.ProductID == uuid.Nil {
			continue
		}
		lineNo := len(details) + 1
		productCount[*in.ProductID]++

		if in.Quantity <= 0 {
			errs = append(errs, LineError{lineNo, "quantity", "must be greater than zero"})
		}
		if in.BillingUnitPrice.IsNegative() {
			errs = append(errs, LineError{lineNo, "billing_unit_price", "must not be negative"})
		}
		if !isAllowedTaxRate(in.TaxRate) {
			errs = append(errs, LineError{lineNo, "tax_rate", "must be 0.08 or 0.10"})
		}

		master := decimal.Zero
		switch {
		case in.MasterUnitPrice != nil:
			master = *in.MasterUnitPrice
		default:
			if prev, ok := previous[*in.ProductID]; ok {
				master = prev
			} else if mp, ok := masterPrices[*in.ProductID]; ok {
				master = mp
			} else {
				errs = append(errs, LineError{lineNo, "product_id", "unknown product"})
			}
		}

		details = append(details, SalesOrderDetail{
			BaseEntity:       shared.NewBaseEntity(),
			SalesOrderID:     o.ID,
			TenantID:         o.TenantID,
			LineNo:           lineNo,
			ProductID:        in.ProductID,
			Quantity:         in.Quantity,
			MasterUnitPrice:  master,
			BillingUnitPrice: in.BillingUnitPrice,
			TaxRate:          in.TaxRate,
			IsTaxExempt:      in.IsTaxExempt,
		})
	}

	// every line sharing a duplicated product gets its own error
	for i := range details {
		if productCount[*details[i].ProductID] > 1 {
			errs = append(errs, LineError{details[i].LineNo, "product_id", "duplicate product"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	o.Details = details
	return nil
}

func isAllowedTaxRate(rate decimal.Decimal) bool {
	for _, r := range allowedTaxRates {
		if rate.Equal(r) {
			return true
		}
	}
	return false
}

// Totals computes the monetary summary under the header's rounding
// method
func (o *SalesOrder) Totals() Totals {
	return ComputeTotals(o.Details, o.RoundingMethod)
}

// SetReferences replaces the reference users and groups, deduplicated
func (o *SalesOrder) SetReferences(userIDs, groupIDs []uuid.UUID) {
	o.ReferenceUserIDs = dedupe(userIDs)
	o.ReferenceGroupIDs = dedupe(groupIDs)
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// SetDelivery sets the delivery due date and place
func (o *SalesOrder) SetDelivery(dueDate *time.Time, place string) {
	o.DeliveryDueDate = dueDate
	o.DeliveryPlace = strings.TrimSpace(place)
}

// HasDeliveryInfo reports whether both delivery fields are set
func (o *SalesOrder) HasDeliveryInfo() bool {
	return o.DeliveryDueDate != nil && o.DeliveryPlace != ""
}

// ApplyTransition moves the order along the workflow. Content
// preconditions are checked here; actor eligibility belongs to
// Authorize and must be verified by the caller first.
func (o *SalesOrder) ApplyTransition(verb Verb, actor ActorClass) error {
	next, err := NextStatus(o.Status, verb, actor)
	if err != nil {
		return err
	}

	switch verb {
	case VerbSubmitQuotation, VerbSubmitOrder:
		if len(o.Details) == 0 {
			return shared.NewValidationError("details", "cannot submit an order without detail lines")
		}
	case VerbMarkReady:
		if !o.HasDeliveryInfo() {
			return shared.NewValidationError("delivery", "delivery due date and place must be set before marking ready")
		}
	}

	o.Status = next
	return nil
}

// SetCustomerComment writes the customer comment matching the pending
// approval stage. Called by token redemption together with the
// transition.
func (o *SalesOrder) SetCustomerComment(comment string) error {
	switch o.Status {
	case StatusQuotationApprovedIn:
		o.QuotationCustomerComment = comment
	case StatusOrderApprovedIn:
		o.OrderCustomerComment = comment
	default:
		return shared.NewConflictStateError(string(o.Status), "customer_comment")
	}
	return nil
}

// SetManagerComment writes the manager comment matching the pending
// internal review stage
func (o *SalesOrder) SetManagerComment(comment string) error {
	switch o.Status {
	case StatusQuotationSubmitted:
		o.QuotationManagerComment = comment
	case StatusOrderSubmitted:
		o.OrderManagerComment = comment
	default:
		return shared.NewConflictStateError(string(o.Status), "manager_comment")
	}
	return nil
}
