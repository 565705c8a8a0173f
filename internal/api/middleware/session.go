package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/careline/homecare-portal/internal/core/domain"
	"github.com/careline/homecare-portal/internal/core/ports"
)

// Session reads the process session and injects the signed-in identity into
// the request context under "identity". Anonymous requests carry a nil
// identity and are not rejected here.
func Session(session ports.SessionService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("identity", session.Snapshot().Identity)
			return next(c)
		}
	}
}

// RequireSession rejects anonymous requests with 401. It must run after Session.
func RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id, _ := c.Get("identity").(*domain.Identity); id == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}
			return next(c)
		}
	}
}
