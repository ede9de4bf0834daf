package roles

// Role is the access level carried by every account.
type Role string

const (
	User       Role = "USER"
	Admin      Role = "ADMIN"
	SuperAdmin Role = "SUPERADMIN"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case User, Admin, SuperAdmin:
		return true
	}
	return false
}

// AssignableAtCreate reports whether r may be requested when creating an
// account through the API. SUPERADMIN is seed-only.
func (r Role) AssignableAtCreate() bool {
	return r == User || r == Admin
}

// IsManagementForbidden decides whether an account with the acting role may
// view or manage an account with the target role. Plain users manage nobody,
// admins manage only plain users, and superadmins manage everyone but their
// peers.
func IsManagementForbidden(acting, target Role) bool {
	return acting == User ||
		(acting == Admin && target != User) ||
		(acting == SuperAdmin && target == SuperAdmin)
}
