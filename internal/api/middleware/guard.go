package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/careline/homecare-portal/internal/core/domain"
	"github.com/careline/homecare-portal/internal/core/ports"
)

// Guard enforces the page's role declaration. Denied requests are redirected
// with 302 to the anonymous entry or the role's landing page; allowed ones
// reach next with the declaration stored under "route". It must run after
// Session.
func Guard(guard ports.RouteGuard, decl domain.RouteDeclaration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, _ := c.Get("identity").(*domain.Identity)
			d := guard.Evaluate(id, decl)
			if d.Outcome != domain.OutcomeRender {
				return c.Redirect(http.StatusFound, d.Target)
			}
			c.Set("route", decl)
			return next(c)
		}
	}
}
