package ports

import "github.com/careline/homecare-portal/internal/core/domain"

// RouteGuard decides whether the current identity may view a page.
type RouteGuard interface {
	Routes() []domain.RouteDeclaration
	Evaluate(identity *domain.Identity, decl domain.RouteDeclaration) domain.Decision
	// EvaluatePath resolves a concrete path against the declared patterns.
	// Unknown paths fail with domain.ErrRouteNotDeclared.
	EvaluatePath(identity *domain.Identity, path string) (domain.Decision, domain.RouteDeclaration, error)
}
