package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/careline/homecare-portal/internal/core/domain"
)

// ctxIdentity returns the identity the session middleware placed on the
// request, or nil for an anonymous caller.
func ctxIdentity(c echo.Context) *domain.Identity {
	id, _ := c.Get("identity").(*domain.Identity)
	return id
}

// requireIdentity is ctxIdentity with a fast 401 for anonymous callers.
func requireIdentity(c echo.Context) (*domain.Identity, error) {
	id := ctxIdentity(c)
	if id == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return id, nil
}
