package domain

import "fmt"

// Role classifies a principal and governs which pages it may view.
type Role string

const (
	RolePatient Role = "patient"
	RoleNurse   Role = "nurse"
	RoleAdmin   Role = "admin"
)

// Roles returns the closed set of roles in a stable order.
func Roles() []Role {
	return []Role{RolePatient, RoleNurse, RoleAdmin}
}

// ParseRole converts a raw string into a Role. An empty string yields
// RolePatient, matching the signup default.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return RolePatient, nil
	}
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

// Valid reports whether r belongs to the closed role set.
func (r Role) Valid() bool {
	_, ok := r.Landing()
	return ok
}

// Landing returns the default page for the role. The second result is false
// for anything outside the closed set.
func (r Role) Landing() (string, bool) {
	switch r {
	case RolePatient:
		return RoutePatientDashboard, true
	case RoleNurse:
		return RouteNurseDashboard, true
	case RoleAdmin:
		return RouteAdminDashboard, true
	default:
		return "", false
	}
}

func (r Role) String() string { return string(r) }
