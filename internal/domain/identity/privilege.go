package identity

// Privilege represents the operation class a user belongs to.
// The classes are strictly ordered: viewer < editor < manager < system.
type Privilege string

const (
	PrivilegeSystem  Privilege = "system"
	PrivilegeManager Privilege = "manager"
	PrivilegeEditor  Privilege = "editor"
	PrivilegeViewer  Privilege = "viewer"
)

var privilegeRank = map[Privilege]int{
	PrivilegeViewer:  0,
	PrivilegeEditor:  1,
	PrivilegeManager: 2,
	PrivilegeSystem:  3,
}

// IsValid reports whether p is one of the known privilege classes
func (p Privilege) IsValid() bool {
	_, ok := privilegeRank[p]
	return ok
}

// AtLeast reports whether p grants at least the rights of min
func (p Privilege) AtLeast(min Privilege) bool {
	return privilegeRank[p] >= privilegeRank[min]
}

// String returns the privilege as a string
func (p Privilege) String() string {
	return string(p)
}

// ParsePrivilege maps a stored privilege value to a Privilege.
// Unknown values fall back to viewer.
func ParsePrivilege(s string) Privilege {
	p := Privilege(s)
	if !p.IsValid() {
		return PrivilegeViewer
	}
	return p
}
