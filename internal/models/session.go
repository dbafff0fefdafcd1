package models

// Role gates the dashboard views. Only admins may mutate the catalog.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleFarmer Role = "farmer"
)

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	return r == RoleAdmin || r == RoleFarmer
}

// Session is the logged-in user. There is no real authentication: the
// dashboard is single-user and the role is whatever was chosen at login.
type Session struct {
	Role Role   `json:"role" validate:"required"`
	Name string `json:"name" validate:"required"`
}
