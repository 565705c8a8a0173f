package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/careline/homecare-portal/internal/core/domain"
	"github.com/careline/homecare-portal/internal/core/ports"
)

type RouteHandler struct {
	guard   ports.RouteGuard
	session ports.SessionService
}

func NewRouteHandler(guard ports.RouteGuard, session ports.SessionService) *RouteHandler {
	return &RouteHandler{guard: guard, session: session}
}

type decisionResponse struct {
	Path     string                  `json:"path"`
	Route    domain.RouteDeclaration `json:"route"`
	Decision domain.Decision         `json:"decision"`
}

// List returns every protected page with its allowed roles.
//
// @Summary      Declared routes
// @Tags         routes
// @Produce      json
// @Success      200  {array}   domain.RouteDeclaration
// @Router       /api/routes [get]
func (h *RouteHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, h.guard.Routes())
}

// Decision reports what the guard would do for the current session on path.
//
// @Summary      Guard decision
// @Tags         routes
// @Produce      json
// @Param        path  query     string  true  "Page path, e.g. /nurses/42"
// @Success      200   {object}  decisionResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/routes/decision [get]
func (h *RouteHandler) Decision(c echo.Context) error {
	path := c.QueryParam("path")
	if path == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "path is required"})
	}

	d, decl, err := h.guard.EvaluatePath(h.session.Snapshot().Identity, path)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, decisionResponse{Path: path, Route: decl, Decision: d})
}
