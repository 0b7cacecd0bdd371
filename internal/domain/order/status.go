package order

import (
	"github.com/salesdesk/backend/internal/domain/shared"
)

// Status represents the workflow state of a sales order
type Status string

const (
	StatusDraft                Status = "DRAFT"
	StatusQuotationSubmitted   Status = "QUOTATION_SUBMITTED"
	StatusQuotationApprovedIn  Status = "QUOTATION_APPROVED_IN"
	StatusQuotationRejectedIn  Status = "QUOTATION_REJECTED_IN"
	StatusQuotationConfirmed   Status = "QUOTATION_CONFIRMED"
	StatusQuotationRejectedOut Status = "QUOTATION_REJECTED_OUT"
	StatusOrderSubmitted       Status = "ORDER_SUBMITTED"
	StatusOrderApprovedIn      Status = "ORDER_APPROVED_IN"
	StatusOrderRejectedIn      Status = "ORDER_REJECTED_IN"
	StatusOrderConfirmed       Status = "ORDER_CONFIRMED"
	StatusOrderRejectedOut     Status = "ORDER_REJECTED_OUT"
	StatusReadyToShip          Status = "READY_TO_SHIP"
	StatusShipped              Status = "SHIPPED"
	StatusBilled               Status = "BILLED"
	StatusPaid                 Status = "PAID"
	StatusCancel               Status = "CANCEL"
)

// IsTerminal reports whether no further transition leaves the status
func (s Status) IsTerminal() bool {
	return s == StatusPaid || s == StatusCancel
}

// Verb represents a workflow action on a sales order
type Verb string

const (
	VerbSubmitQuotation          Verb = "submit_quotation"
	VerbApproveQuotationInternal Verb = "approve_quotation_internal"
	VerbRejectQuotationInternal  Verb = "reject_quotation_internal"
	VerbSubmitOrder              Verb = "submit_order"
	VerbApproveOrderInternal     Verb = "approve_order_internal"
	VerbRejectOrderInternal      Verb = "reject_order_internal"
	VerbAccept                   Verb = "accept"
	VerbReject                   Verb = "reject"
	VerbMarkReady                Verb = "mark_ready"
	VerbShip                     Verb = "ship"
	VerbBill                     Verb = "bill"
	VerbRecordPayment            Verb = "record_payment"
	VerbCancel                   Verb = "cancel"
)

// ActorClass classifies who is acting on the order for transition and
// field-mask purposes
type ActorClass string

const (
	ActorCreator   ActorClass = "creator"   // the user who created the order
	ActorReference ActorClass = "reference" // internal approver from the reference set
	ActorPartner   ActorClass = "partner"   // external party acting through a token
)

// Transition is one legal edge of the workflow
type Transition struct {
	From  Status
	Verb  Verb
	Actor ActorClass
	To    Status
}

// transitions is the full edge list. Cancellation edges are appended
// for every non-terminal status in init.
var transitions = []Transition{
	{StatusDraft, VerbSubmitQuotation, ActorCreator, StatusQuotationSubmitted},
	{StatusQuotationRejectedIn, VerbSubmitQuotation, ActorCreator, StatusQuotationSubmitted},
	{StatusQuotationRejectedOut, VerbSubmitQuotation, ActorCreator, StatusQuotationSubmitted},

	{StatusQuotationSubmitted, VerbApproveQuotationInternal, ActorReference, StatusQuotationApprovedIn},
	{StatusQuotationSubmitted, VerbRejectQuotationInternal, ActorReference, StatusQuotationRejectedIn},

	{StatusQuotationApprovedIn, VerbAccept, ActorPartner, StatusQuotationConfirmed},
	{StatusQuotationApprovedIn, VerbReject, ActorPartner, StatusQuotationRejectedOut},

	{StatusQuotationConfirmed, VerbSubmitOrder, ActorCreator, StatusOrderSubmitted},
	{StatusOrderRejectedIn, VerbSubmitOrder, ActorCreator, StatusOrderSubmitted},
	{StatusOrderRejectedOut, VerbSubmitOrder, ActorCreator, StatusOrderSubmitted},

	{StatusOrderSubmitted, VerbApproveOrderInternal, ActorReference, StatusOrderApprovedIn},
	{StatusOrderSubmitted, VerbRejectOrderInternal, ActorReference, StatusOrderRejectedIn},

	{StatusOrderApprovedIn, VerbAccept, ActorPartner, StatusOrderConfirmed},
	{StatusOrderApprovedIn, VerbReject, ActorPartner, StatusOrderRejectedOut},

	{StatusOrderConfirmed, VerbMarkReady, ActorCreator, StatusReadyToShip},
	{StatusReadyToShip, VerbShip, ActorCreator, StatusShipped},
	{StatusShipped, VerbBill, ActorCreator, StatusBilled},
	{StatusBilled, VerbRecordPayment, ActorCreator, StatusPaid},
}

var allStatuses = []Status{
	StatusDraft,
	StatusQuotationSubmitted,
	StatusQuotationApprovedIn,
	StatusQuotationRejectedIn,
	StatusQuotationConfirmed,
	StatusQuotationRejectedOut,
	StatusOrderSubmitted,
	StatusOrderApprovedIn,
	StatusOrderRejectedIn,
	StatusOrderConfirmed,
	StatusOrderRejectedOut,
	StatusReadyToShip,
	StatusShipped,
	StatusBilled,
	StatusPaid,
	StatusCancel,
}

type transitionKey struct {
	from  Status
	verb  Verb
	actor ActorClass
}

var transitionIndex map[transitionKey]Status

func init() {
	for _, s := range allStatuses {
		if !s.IsTerminal() {
			transitions = append(transitions, Transition{s, VerbCancel, ActorCreator, StatusCancel})
		}
	}
	transitionIndex = make(map[transitionKey]Status, len(transitions))
	for _, t := range transitions {
		transitionIndex[transitionKey{t.From, t.Verb, t.Actor}] = t.To
	}
}

// NextStatus resolves (status, verb, actor) against the transition
// table. An illegal combination returns a CONFLICT_STATE error carrying
// the current status and the attempted verb.
func NextStatus(from Status, verb Verb, actor ActorClass) (Status, error) {
	if to, ok := transitionIndex[transitionKey{from, verb, actor}]; ok {
		return to, nil
	}
	return "", shared.NewConflictStateError(string(from), string(verb))
}

// Field names a writable portion of the order for the per-state edit
// mask. FieldDetails covers the whole detail list.
type Field string

const (
	FieldSalesOrderDate           Field = "sales_order_date"
	FieldPartnerID                Field = "partner_id"
	FieldAssigneeUserID           Field = "assignee_user_id"
	FieldDeliveryDueDate          Field = "delivery_due_date"
	FieldDeliveryPlace            Field = "delivery_place"
	FieldRemarks                  Field = "remarks"
	FieldRoundingMethod           Field = "rounding_method"
	FieldReferenceUsers           Field = "reference_users"
	FieldReferenceGroups          Field = "reference_groups"
	FieldDetails                  Field = "details"
	FieldQuotationManagerComment  Field = "quotation_manager_comment"
	FieldQuotationCustomerComment Field = "quotation_customer_comment"
	FieldOrderManagerComment      Field = "order_manager_comment"
	FieldOrderCustomerComment     Field = "order_customer_comment"
)

// FieldSet is the writable-field mask for one (status, actor) pair
type FieldSet map[Field]bool

// Contains reports whether the field is writable
func (s FieldSet) Contains(f Field) bool {
	return s[f]
}

func fieldSet(fields ...Field) FieldSet {
	s := make(FieldSet, len(fields))
	for _, f := range fields {
		s[f] = true
	}
	return s
}

var draftFields = fieldSet(
	FieldSalesOrderDate, FieldPartnerID, FieldAssigneeUserID,
	FieldDeliveryDueDate, FieldDeliveryPlace, FieldRemarks,
	FieldRoundingMethod, FieldReferenceUsers, FieldReferenceGroups,
	FieldDetails,
)

var reworkFields = fieldSet(
	FieldRemarks, FieldDetails, FieldReferenceUsers, FieldReferenceGroups,
)

var writableFields = map[Status]map[ActorClass]FieldSet{
	StatusDraft: {
		ActorCreator: draftFields,
	},
	StatusQuotationSubmitted: {
		ActorReference: fieldSet(FieldQuotationManagerComment),
	},
	StatusQuotationRejectedIn: {
		ActorCreator: reworkFields,
	},
	StatusQuotationRejectedOut: {
		ActorCreator: reworkFields,
	},
	StatusQuotationApprovedIn: {
		ActorPartner: fieldSet(FieldQuotationCustomerComment),
	},
	StatusQuotationConfirmed: {
		ActorCreator: fieldSet(FieldDeliveryDueDate, FieldDeliveryPlace),
	},
	StatusOrderSubmitted: {
		ActorReference: fieldSet(FieldOrderManagerComment),
	},
	StatusOrderRejectedIn: {
		ActorCreator: reworkFields,
	},
	StatusOrderRejectedOut: {
		ActorCreator: reworkFields,
	},
	StatusOrderApprovedIn: {
		ActorPartner: fieldSet(FieldOrderCustomerComment),
	},
}

// WritableFields returns the edit mask for the given status and actor.
// States past customer confirmation of the order are read only, as is
// any (status, actor) pair not in the table.
func WritableFields(status Status, actor ActorClass) FieldSet {
	if byActor, ok := writableFields[status]; ok {
		if fields, ok := byActor[actor]; ok {
			return fields
		}
	}
	return FieldSet{}
}
