package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/salesdesk/backend/internal/domain/catalog"
	"github.com/salesdesk/backend/internal/domain/identity"
	"github.com/salesdesk/backend/internal/domain/order"
	"github.com/salesdesk/backend/internal/domain/partner"
	"github.com/salesdesk/backend/internal/domain/shared"
	"github.com/salesdesk/backend/internal/infrastructure/logger"
)

// DefaultPageSize caps listing pages when the request does not say
const DefaultPageSize = 20

// Service handles sales order workflow operations
type Service struct {
	orders   order.Repository
	uow      order.UnitOfWork
	partners partner.Repository
	products catalog.ProductRepository
	notifier order.TokenNotifier
}

// NewService creates a new order Service
func NewService(
	orders order.Repository,
	uow order.UnitOfWork,
	partners partner.Repository,
	products catalog.ProductRepository,
	notifier order.TokenNotifier,
) *Service {
	return &Service{
		orders:   orders,
		uow:      uow,
		partners: partners,
		products: products,
		notifier: notifier,
	}
}

// workflowVerbs are the verbs a logged-in user may invoke. accept and
// reject are reserved for token redemption.
var workflowVerbs = map[string]order.Verb{
	string(order.VerbSubmitQuotation):          order.VerbSubmitQuotation,
	string(order.VerbApproveQuotationInternal): order.VerbApproveQuotationInternal,
	string(order.VerbRejectQuotationInternal):  order.VerbRejectQuotationInternal,
	string(order.VerbSubmitOrder):              order.VerbSubmitOrder,
	string(order.VerbApproveOrderInternal):     order.VerbApproveOrderInternal,
	string(order.VerbRejectOrderInternal):      order.VerbRejectOrderInternal,
	string(order.VerbMarkReady):                order.VerbMarkReady,
	string(order.VerbShip):                     order.VerbShip,
	string(order.VerbBill):                     order.VerbBill,
	string(order.VerbRecordPayment):            order.VerbRecordPayment,
	string(order.VerbCancel):                   order.VerbCancel,
}

// CreateDraft creates a new order in DRAFT and persists it, assigning
// the order number
func (s *Service) CreateDraft(ctx context.Context, caller order.Caller, req CreateOrderRequest) (*OrderResponse, error) {
	if !caller.Privilege.AtLeast(identity.PrivilegeEditor) {
		return nil, shared.ErrForbidden
	}

	rounding := order.RoundFloor
	if req.RoundingMethod != "" {
		var err error
		rounding, err = order.ParseRoundingMethod(req.RoundingMethod)
		if err != nil {
			return nil, err
		}
	}

	o, err := order.NewDraft(caller.TenantID, caller.UserID, req.SalesOrderDate, rounding)
	if err != nil {
		return nil, err
	}

	if req.PartnerID != nil {
		if _, err := s.partners.FindByID(ctx, caller.TenantID, *req.PartnerID); err != nil {
			return nil, shared.NewValidationError("partner_id", "unknown partner")
		}
		o.PartnerID = req.PartnerID
	}
	o.AssigneeUserID = req.AssigneeUserID
	o.Remarks = req.Remarks
	o.SetDelivery(req.DeliveryDueDate, req.DeliveryPlace)
	o.SetReferences(req.ReferenceUserIDs, req.ReferenceGroupIDs)

	if len(req.Details) > 0 {
		if err := s.setDetails(ctx, o, req.Details); err != nil {
			return nil, err
		}
	}

	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("sales order created",
		zap.String("sales_order_no", o.SalesOrderNo))
	return ToOrderResponse(o, caller), nil
}

// Update applies a partial edit under the writable-field mask of the
// order's current status. The row is held under lock so a concurrent
// transition cannot widen or shrink the mask mid-save.
func (s *Service) Update(ctx context.Context, caller order.Caller, id uuid.UUID, req UpdateOrderRequest) (*OrderResponse, error) {
	var updated *order.SalesOrder
	err := s.uow.Execute(ctx, func(ws order.Workspace) error {
		o, err := ws.Orders.FindByIDForUpdate(ctx, caller.TenantID, id)
		if err != nil {
			return err
		}

		mask, err := o.AuthorizeSave(caller)
		if err != nil {
			return err
		}

		if err := s.applyUpdate(ctx, o, mask, req); err != nil {
			return err
		}

		o.UpdateUserID = &caller.UserID
		if err := ws.Orders.Save(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ToOrderResponse(updated, caller), nil
}

// applyUpdate copies provided fields onto the aggregate, rejecting any
// field outside the writable mask
func (s *Service) applyUpdate(ctx context.Context, o *order.SalesOrder, mask order.FieldSet, req UpdateOrderRequest) error {
	check := func(f order.Field, provided bool) error {
		if provided && !mask.Contains(f) {
			return shared.NewValidationError(string(f), "not editable in the current status")
		}
		return nil
	}

	for f, provided := range map[order.Field]bool{
		order.FieldSalesOrderDate:          req.SalesOrderDate != nil,
		order.FieldPartnerID:               req.PartnerID != nil,
		order.FieldAssigneeUserID:          req.AssigneeUserID != nil,
		order.FieldDeliveryDueDate:         req.DeliveryDueDate != nil,
		order.FieldDeliveryPlace:           req.DeliveryPlace != nil,
		order.FieldRemarks:                 req.Remarks != nil,
		order.FieldRoundingMethod:          req.RoundingMethod != nil,
		order.FieldReferenceUsers:          req.ReferenceUserIDs != nil,
		order.FieldReferenceGroups:         req.ReferenceGroupIDs != nil,
		order.FieldDetails:                 req.Details != nil,
		order.FieldQuotationManagerComment: req.QuotationManagerComment != nil,
		order.FieldOrderManagerComment:     req.OrderManagerComment != nil,
	} {
		if err := check(f, provided); err != nil {
			return err
		}
	}

	if req.SalesOrderDate != nil {
		o.SalesOrderDate = *req.SalesOrderDate
	}
	if req.PartnerID != nil {
		if _, err := s.partners.FindByID(ctx, o.TenantID, *req.PartnerID); err != nil {
			return shared.NewValidationError("partner_id", "unknown partner")
		}
		o.PartnerID = req.PartnerID
	}
	if req.AssigneeUserID != nil {
		o.AssigneeUserID = req.AssigneeUserID
	}
	if req.DeliveryDueDate != nil || req.DeliveryPlace != nil {
		due := o.DeliveryDueDate
		place := o.DeliveryPlace
		if req.DeliveryDueDate != nil {
			due = req.DeliveryDueDate
		}
		if req.DeliveryPlace != nil {
			place = *req.DeliveryPlace
		}
		o.SetDelivery(due, place)
	}
	if req.Remarks != nil {
		o.Remarks = *req.Remarks
	}
	if req.RoundingMethod != nil {
		m, err := order.ParseRoundingMethod(*req.RoundingMethod)
		if err != nil {
			return err
		}
		o.RoundingMethod = m
	}
	if req.ReferenceUserIDs != nil || req.ReferenceGroupIDs != nil {
		users := o.ReferenceUserIDs
		groups := o.ReferenceGroupIDs
		if req.ReferenceUserIDs != nil {
			users = *req.ReferenceUserIDs
		}
		if req.ReferenceGroupIDs != nil {
			groups = *req.ReferenceGroupIDs
		}
		o.SetReferences(users, groups)
	}
	if req.Details != nil {
		if err := s.setDetails(ctx, o, *req.Details); err != nil {
			return err
		}
	}
	if req.QuotationManagerComment != nil {
		if err := o.SetManagerComment(*req.QuotationManagerComment); err != nil {
			return err
		}
	}
	if req.OrderManagerComment != nil {
		if err := o.SetManagerComment(*req.OrderManagerComment); err != nil {
			return err
		}
	}
	return nil
}

// setDetails resolves master prices for the incoming lines and
// replaces the detail list
func (s *Service) setDetails(ctx context.Context, o *order.SalesOrder, reqs []DetailRequest) error {
	inputs := make([]order.DetailInput, len(reqs))
	ids := make([]uuid.UUID, 0, len(reqs))
	for i, d := range reqs {
		inputs[i] = order.DetailInput{
			ProductID:        d.ProductID,
			Quantity:         d.Quantity,
			BillingUnitPrice: d.BillingUnitPrice,
			TaxRate:          d.TaxRate,
			IsTaxExempt:      d.IsTaxExempt,
		}
		if d.ProductID != nil && *d.ProductID != uuid.Nil {
			ids = append(ids, *d.ProductID)
		}
	}

	masterPrices := make(map[uuid.UUID]decimal.Decimal, len(ids))
	if len(ids) > 0 {
		products, err := s.products.FindByIDs(ctx, o.TenantID, ids)
		if err != nil {
			return err
		}
		for _, p := range products {
			masterPrices[p.ID] = p.UnitPrice
		}
	}

	return o.SetDetails(inputs, masterPrices)
}

// Get returns one order visible to the caller. An order the caller may
// not view reads as absent, the same as a cross-tenant ID.
func (s *Service) Get(ctx context.Context, caller order.Caller, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, caller.TenantID, id)
	if err != nil {
		return nil, err
	}
	if !o.CanView(caller) {
		return nil, shared.ErrNotFound
	}
	return ToOrderResponse(o, caller), nil
}

// List returns a permission-filtered page of orders. Callers below
// manager only see orders they created or reference.
func (s *Service) List(ctx context.Context, caller order.Caller, f ListFilter) (*ListResponse, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 || f.PageSize > 100 {
		f.PageSize = DefaultPageSize
	}

	filter := order.Filter{
		Keyword:   f.Keyword,
		Status:    order.Status(f.Status),
		PartnerID: f.PartnerID,
		DateFrom:  f.DateFrom,
		DateTo:    f.DateTo,
		Page:      f.Page,
		PageSize:  f.PageSize,
	}
	if !caller.Privilege.AtLeast(identity.PrivilegeManager) {
		filter.RestrictToUser = &caller.UserID
		filter.UserGroupIDs = caller.GroupIDs
	}

	orders, total, err := s.orders.FindAll(ctx, caller.TenantID, filter)
	if err != nil {
		return nil, err
	}

	items := make([]OrderListItem, len(orders))
	for i := range orders {
		items[i] = ToOrderListItem(&orders[i])
	}
	return &ListResponse{
		Items:    items,
		Total:    total,
		Page:     f.Page,
		PageSize: f.PageSize,
	}, nil
}

// Transition moves an order along the workflow. The row is re-read
// under lock and the precondition re-checked inside the transaction.
// Entering an approved state mints an approval token for the partner
// in the same transaction; the notification goes out after commit.
func (s *Service) Transition(ctx context.Context, caller order.Caller, id uuid.UUID, req TransitionRequest) (*OrderResponse, error) {
	verb, ok := workflowVerbs[req.Verb]
	if !ok {
		return nil, shared.NewValidationError("verb", "unknown workflow action")
	}

	var (
		updated *order.SalesOrder
		minted  *order.ApprovalToken
	)
	err := s.uow.Execute(ctx, func(ws order.Workspace) error {
		o, err := ws.Orders.FindByIDForUpdate(ctx, caller.TenantID, id)
		if err != nil {
			return err
		}

		actor, err := o.Authorize(verb, caller)
		if err != nil {
			return err
		}

		if req.Comment != "" && actor == order.ActorReference {
			if err := o.SetManagerComment(req.Comment); err != nil {
				return err
			}
		}

		// references are written against the pre-transition mask, so a
		// creator can name the reviewers on the submit itself
		if req.References != nil {
			mask := order.WritableFields(o.Status, actor)
			if !mask.Contains(order.FieldReferenceUsers) {
				return shared.NewValidationError("references", "not editable in the current status")
			}
			o.SetReferences(req.References.UserIDs, req.References.GroupIDs)
		}

		if err := o.ApplyTransition(verb, actor); err != nil {
			return err
		}

		if o.Status == order.StatusQuotationApprovedIn || o.Status == order.StatusOrderApprovedIn {
			minted, err = s.mintToken(ctx, ws, o)
			if err != nil {
				return err
			}
		}

		o.UpdateUserID = &caller.UserID
		if err := ws.Orders.Save(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Info("sales order transitioned",
		zap.String("sales_order_no", updated.SalesOrderNo),
		zap.String("verb", string(verb)),
		zap.String("status", string(updated.Status)))

	if minted != nil {
		if err := s.notifier.NotifyApprovalRequested(minted, updated); err != nil {
			logger.L(ctx).Warn("approval notification failed",
				zap.String("sales_order_no", updated.SalesOrderNo),
				zap.Error(err))
		}
	}
	return ToOrderResponse(updated, caller), nil
}

// mintToken creates a one-shot approval token addressed to the
// order's partner. The partner must exist and carry an email address.
func (s *Service) mintToken(ctx context.Context, ws order.Workspace, o *order.SalesOrder) (*order.ApprovalToken, error) {
	if o.PartnerID == nil {
		return nil, shared.NewValidationError("partner_id", "a partner is required before customer approval")
	}
	p, err := s.partners.FindByID(ctx, o.TenantID, *o.PartnerID)
	if err != nil {
		return nil, err
	}
	if p.Email == "" {
		return nil, shared.NewValidationError("partner_id", "the partner has no email address for approval requests")
	}

	token, err := order.NewApprovalToken(o.TenantID, o.ID, p.Email)
	if err != nil {
		return nil, err
	}
	if err := ws.Tokens.Create(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// Cancel aborts the order from any non-terminal status
func (s *Service) Cancel(ctx context.Context, caller order.Caller, id uuid.UUID) (*OrderResponse, error) {
	return s.Transition(ctx, caller, id, TransitionRequest{Verb: string(order.VerbCancel)})
}

// RedeemToken applies the external party's decision. The token row and
// the order row are both locked; the transition, the customer comment
// and the used flag commit together or not at all.
func (s *Service) RedeemToken(ctx context.Context, tokenString string, req RedeemTokenRequest) (*OrderResponse, error) {
	decision := order.Decision(req.Decision)
	verb, err := decision.Verb()
	if err != nil {
		return nil, err
	}

	var updated *order.SalesOrder
	err = s.uow.Execute(ctx, func(ws order.Workspace) error {
		token, err := ws.Tokens.FindForUpdate(ctx, tokenString)
		if err != nil {
			return err
		}
		if err := token.Redeem(); err != nil {
			return err
		}

		o, err := ws.Orders.FindByIDForUpdate(ctx, token.TenantID, token.SalesOrderID)
		if err != nil {
			return err
		}
		if o.Status != order.StatusQuotationApprovedIn && o.Status != order.StatusOrderApprovedIn {
			return shared.ErrInvalidToken
		}

		if req.Comment != "" {
			if err := o.SetCustomerComment(req.Comment); err != nil {
				return err
			}
		}
		if err := o.ApplyTransition(verb, order.ActorPartner); err != nil {
			return err
		}

		if err := ws.Tokens.Update(ctx, token); err != nil {
			return err
		}
		if err := ws.Orders.Save(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Info("approval token redeemed",
		zap.String("sales_order_no", updated.SalesOrderNo),
		zap.String("decision", req.Decision),
		zap.String("status", string(updated.Status)))

	// the partner is anonymous to the session; respond with a bare view
	return ToOrderResponse(updated, order.Caller{}), nil
}
