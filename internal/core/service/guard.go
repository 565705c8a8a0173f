package service

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/careline/homecare-portal/internal/core/domain"
	"github.com/careline/homecare-portal/internal/core/ports"
	"github.com/careline/homecare-portal/internal/metrics"
)

// Decide maps the signed-in identity (nil when anonymous) and a page's
// declaration to a navigation decision. It is pure and deterministic.
func Decide(identity *domain.Identity, decl domain.RouteDeclaration) domain.Decision {
	if identity == nil {
		return domain.Decision{Outcome: domain.OutcomeRedirectAnonymous, Target: domain.RouteAnonymousEntry}
	}
	// A role outside the closed set gets no page, even an open one.
	landing, ok := identity.Role.Landing()
	if !ok {
		return domain.Decision{Outcome: domain.OutcomeRedirectAnonymous, Target: domain.RouteAnonymousEntry}
	}
	if decl.Allows(identity.Role) {
		return domain.Decision{Outcome: domain.OutcomeRender}
	}
	return domain.Decision{Outcome: domain.OutcomeRedirectRoleDefault, Target: landing}
}

// DefaultRoutes lists the portal's protected pages.
func DefaultRoutes() []domain.RouteDeclaration {
	open := []domain.Role(nil)
	return []domain.RouteDeclaration{
		{Path: "/dashboard", Title: "Dashboard", AllowedRoles: open},
		{Path: domain.RoutePatientDashboard, Title: "Patient dashboard", AllowedRoles: []domain.Role{domain.RolePatient}},
		{Path: domain.RouteNurseDashboard, Title: "Nurse dashboard", AllowedRoles: []domain.Role{domain.RoleNurse}},
		{Path: domain.RouteAdminDashboard, Title: "Admin dashboard", AllowedRoles: []domain.Role{domain.RoleAdmin}},
		{Path: "/appointments", Title: "Appointments", AllowedRoles: open},
		{Path: "/services", Title: "Services", AllowedRoles: open},
		{Path: "/services/:id", Title: "Service details", AllowedRoles: open},
		{Path: "/nurses", Title: "Nurses", AllowedRoles: []domain.Role{domain.RolePatient, domain.RoleAdmin}},
		{Path: "/nurses/:id", Title: "Nurse details", AllowedRoles: []domain.Role{domain.RolePatient, domain.RoleAdmin}},
		{Path: "/patients", Title: "Patients", AllowedRoles: []domain.Role{domain.RoleNurse, domain.RoleAdmin}},
		{Path: "/patients/:id", Title: "Patient details", AllowedRoles: []domain.Role{domain.RoleNurse, domain.RoleAdmin}},
		{Path: "/requests", Title: "Requests", AllowedRoles: []domain.Role{domain.RolePatient, domain.RoleNurse}},
		{Path: "/analytics", Title: "Analytics", AllowedRoles: []domain.Role{domain.RoleAdmin}},
		{Path: "/notifications", Title: "Notifications", AllowedRoles: open},
		{Path: "/messages", Title: "Messages", AllowedRoles: open},
		{Path: "/messages/:id", Title: "Conversation", AllowedRoles: open},
		{Path: "/profile", Title: "Profile", AllowedRoles: open},
		{Path: "/settings", Title: "Settings", AllowedRoles: open},
		{Path: "/help", Title: "Help", AllowedRoles: open},
	}
}

// RouteTable is a validated set of route declarations keyed by path pattern.
// Pattern segments starting with ':' match any single non-empty segment.
type RouteTable struct {
	routes []domain.RouteDeclaration
	byPath map[string]domain.RouteDeclaration
}

// NewRouteTable validates every declaration and rejects duplicate patterns.
func NewRouteTable(decls ...domain.RouteDeclaration) (*RouteTable, error) {
	t := &RouteTable{byPath: make(map[string]domain.RouteDeclaration, len(decls))}
	for _, d := range decls {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, dup := t.byPath[d.Path]; dup {
			return nil, fmt.Errorf("%w: duplicate path %s", domain.ErrInvalidRoute, d.Path)
		}
		t.byPath[d.Path] = d
		t.routes = append(t.routes, d)
	}
	return t, nil
}

// Routes returns the declarations in registration order.
func (t *RouteTable) Routes() []domain.RouteDeclaration {
	out := make([]domain.RouteDeclaration, len(t.routes))
	copy(out, t.routes)
	return out
}

// Lookup finds the declaration for a concrete path or a pattern.
func (t *RouteTable) Lookup(path string) (domain.RouteDeclaration, bool) {
	if d, ok := t.byPath[path]; ok {
		return d, true
	}
	for _, d := range t.routes {
		if matchPattern(d.Path, path) {
			return d, true
		}
	}
	return domain.RouteDeclaration{}, false
}

func matchPattern(pattern, path string) bool {
	ps := strings.Split(strings.Trim(pattern, "/"), "/")
	xs := strings.Split(strings.Trim(path, "/"), "/")
	if len(ps) != len(xs) {
		return false
	}
	for i := range ps {
		if strings.HasPrefix(ps[i], ":") {
			if xs[i] == "" {
				return false
			}
			continue
		}
		if ps[i] != xs[i] {
			return false
		}
	}
	return true
}

// RouteGuard applies Decide against a route table and records each decision.
type RouteGuard struct {
	table *RouteTable
	log   zerolog.Logger
}

func NewRouteGuard(table *RouteTable, log zerolog.Logger) *RouteGuard {
	return &RouteGuard{table: table, log: log}
}

var _ ports.RouteGuard = (*RouteGuard)(nil)

// Routes returns the guarded declarations in registration order.
func (g *RouteGuard) Routes() []domain.RouteDeclaration { return g.table.Routes() }

// Evaluate decides access to decl for identity.
func (g *RouteGuard) Evaluate(identity *domain.Identity, decl domain.RouteDeclaration) domain.Decision {
	d := Decide(identity, decl)
	metrics.GuardDecisionsTotal.WithLabelValues(string(d.Outcome)).Inc()
	if d.Outcome != domain.OutcomeRender {
		g.log.Debug().
			Str("path", decl.Path).
			Str("outcome", string(d.Outcome)).
			Str("target", d.Target).
			Msg("route guarded")
	}
	return d
}

// EvaluatePath looks path up in the table and decides access to it.
func (g *RouteGuard) EvaluatePath(identity *domain.Identity, path string) (domain.Decision, domain.RouteDeclaration, error) {
	decl, ok := g.table.Lookup(path)
	if !ok {
		return domain.Decision{}, domain.RouteDeclaration{}, fmt.Errorf("%w: %s", domain.ErrRouteNotDeclared, path)
	}
	return g.Evaluate(identity, decl), decl, nil
}
