package models

// Role is one of the closed set of principal roles.
type Role string

const (
	RoleSuperAdmin   Role = "super_admin"
	RoleOrganization Role = "organization"
	RoleUser         Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleOrganization, RoleUser:
		return true
	}
	return false
}
