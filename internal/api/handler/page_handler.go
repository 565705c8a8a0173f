package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/careline/homecare-portal/internal/core/domain"
)

// PageHandler serves the page envelopes behind the route guard.
type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

type pageResponse struct {
	Path   string            `json:"path"`
	Route  string            `json:"route"`
	Title  string            `json:"title"`
	Params map[string]string `json:"params,omitempty"`
	User   *domain.Identity  `json:"user"`
}

// Render returns the envelope for a page the guard let through. The guard
// middleware stores the matched declaration under "route".
func (h *PageHandler) Render(c echo.Context) error {
	decl, ok := c.Get("route").(domain.RouteDeclaration)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "route not resolved")
	}

	var params map[string]string
	if names := c.ParamNames(); len(names) > 0 {
		params = make(map[string]string, len(names))
		for _, n := range names {
			params[n] = c.Param(n)
		}
	}

	return c.JSON(http.StatusOK, pageResponse{
		Path:   c.Request().URL.Path,
		Route:  decl.Path,
		Title:  decl.Title,
		Params: params,
		User:   ctxIdentity(c),
	})
}

// Entry serves the anonymous entry page. Signed-in callers are sent to their
// role's landing page.
//
// @Summary      Sign-in entry page
// @Tags         pages
// @Produce      json
// @Success      200  {object}  map[string]string
// @Success      302
// @Router       /auth [get]
func (h *PageHandler) Entry(c echo.Context) error {
	if id := ctxIdentity(c); id != nil {
		if landing, ok := id.Role.Landing(); ok {
			return c.Redirect(http.StatusFound, landing)
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"page": "auth"})
}
