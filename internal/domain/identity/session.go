package identity

import "github.com/google/uuid"

// Caller identifies who is invoking an operation. It is built once at
// the service boundary from the authenticated session and passed down
// explicitly; the domain never reads ambient identity.
type Caller struct {
	UserID    uuid.UUID
	TenantID  uuid.UUID
	Privilege Privilege
	GroupIDs  []uuid.UUID
}

// InGroup reports whether the caller belongs to the group
func (c Caller) InGroup(groupID uuid.UUID) bool {
	for _, gid := range c.GroupIDs {
		if gid == groupID {
			return true
		}
	}
	return false
}
