package order

import (
	"github.com/salesdesk/backend/internal/domain/identity"
	"github.com/salesdesk/backend/internal/domain/shared"
)

// Caller identifies who is invoking a verb. The type lives with the
// session model; the alias keeps workflow call sites reading naturally.
type Caller = identity.Caller

// IsCreator reports whether the caller created the order
func (o *SalesOrder) IsCreator(c Caller) bool {
	return o.CreateUserID != nil && *o.CreateUserID == c.UserID
}

// IsReference reports whether the caller is in the order's reference
// set, directly or through a group
func (o *SalesOrder) IsReference(c Caller) bool {
	for _, uid := range o.ReferenceUserIDs {
		if uid == c.UserID {
			return true
		}
	}
	for _, gid := range o.ReferenceGroupIDs {
		if c.InGroup(gid) {
			return true
		}
	}
	return false
}

// CanView reports whether the caller may read the order: the creator,
// anyone in the reference set, or any manager and above.
func (o *SalesOrder) CanView(c Caller) bool {
	if !c.Privilege.AtLeast(identity.PrivilegeViewer) {
		return false
	}
	if c.Privilege.AtLeast(identity.PrivilegeManager) {
		return true
	}
	return o.IsCreator(c) || o.IsReference(c)
}

// Authorize checks actor eligibility for a workflow verb and returns
// the actor class to feed into the transition table. Token-gated verbs
// (accept, reject) are not decided here; redemption authorizes them.
func (o *SalesOrder) Authorize(verb Verb, c Caller) (ActorClass, error) {
	switch verb {
	case VerbSubmitQuotation, VerbSubmitOrder, VerbMarkReady, VerbShip, VerbBill, VerbRecordPayment, VerbCancel:
		if !c.Privilege.AtLeast(identity.PrivilegeEditor) {
			return "", shared.ErrForbidden
		}
		if !o.IsCreator(c) {
			return "", shared.ErrForbidden
		}
		return ActorCreator, nil

	case VerbApproveQuotationInternal, VerbRejectQuotationInternal,
		VerbApproveOrderInternal, VerbRejectOrderInternal:
		if !c.Privilege.AtLeast(identity.PrivilegeManager) {
			return "", shared.ErrForbidden
		}
		if !o.IsReference(c) {
			return "", shared.ErrForbidden
		}
		return ActorReference, nil
	}

	return "", shared.ErrForbidden
}

// AuthorizeSave checks that the caller may persist field changes in
// the current status and returns the writable-field mask to enforce.
func (o *SalesOrder) AuthorizeSave(c Caller) (FieldSet, error) {
	var actor ActorClass
	switch {
	case o.IsCreator(c) && c.Privilege.AtLeast(identity.PrivilegeEditor):
		actor = ActorCreator
	case o.IsReference(c) && c.Privilege.AtLeast(identity.PrivilegeManager):
		actor = ActorReference
	default:
		return nil, shared.ErrForbidden
	}

	fields := WritableFields(o.Status, actor)
	if len(fields) == 0 {
		return nil, shared.NewConflictStateError(string(o.Status), "save")
	}
	return fields, nil
}
