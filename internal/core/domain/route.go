package domain

import "fmt"

// Well-known routes.
const (
	RouteAnonymousEntry   = "/auth"
	RoutePatientDashboard = "/patient/dashboard"
	RouteNurseDashboard   = "/nurse/dashboard"
	RouteAdminDashboard   = "/admin/dashboard"
)

// RouteDeclaration is the static access metadata of one page. An empty
// AllowedRoles set admits any authenticated role.
type RouteDeclaration struct {
	Path         string `json:"path"`
	Title        string `json:"title"`
	AllowedRoles []Role `json:"allowed_roles"`
}

// Validate checks the path is set and every allowed role is known.
func (d RouteDeclaration) Validate() error {
	if d.Path == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidRoute)
	}
	for _, r := range d.AllowedRoles {
		if !r.Valid() {
			return fmt.Errorf("%w: %s allows unknown role %q", ErrInvalidRoute, d.Path, r)
		}
	}
	return nil
}

// Allows reports whether role may view the page.
func (d RouteDeclaration) Allows(role Role) bool {
	if len(d.AllowedRoles) == 0 {
		return true
	}
	for _, r := range d.AllowedRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Outcome is the navigation result of a guard decision.
type Outcome string

const (
	OutcomeRender              Outcome = "render"
	OutcomeRedirectAnonymous   Outcome = "redirect_anonymous"
	OutcomeRedirectRoleDefault Outcome = "redirect_role_default"
)

// Decision pairs an Outcome with its redirect target (empty for render).
type Decision struct {
	Outcome Outcome `json:"outcome"`
	Target  string  `json:"target,omitempty"`
}
