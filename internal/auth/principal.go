// Package auth models the authenticated principal handed to the core by the
// host environment. Identity verification and role lookup happen outside;
// the core only consumes the resulting subject and role.
package auth

// Role classifies what a principal may do. Admins may trigger scrapes;
// viewers (and admins) may read stored items.
type Role string

// Known roles.
const (
	RoleAdmin  Role = "admin"
	RoleViewer Role = "viewer"
)

// Principal is an externally authenticated caller identity.
type Principal struct {
	// Subject is an opaque identity label used for auditing.
	Subject string
	Role    Role
}

// Authenticated reports whether a principal is present at all.
func (p Principal) Authenticated() bool {
	return p.Subject != ""
}

// CanWrite reports whether the principal may trigger scrapes.
func (p Principal) CanWrite() bool {
	return p.Role == RoleAdmin
}

// RoleFromString maps a role label to a Role; anything unrecognized is
// treated as the least-privileged viewer role.
func RoleFromString(s string) Role {
	if s == string(RoleAdmin) {
		return RoleAdmin
	}
	return RoleViewer
}
