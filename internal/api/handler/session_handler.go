package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/careline/homecare-portal/internal/core/domain"
	"github.com/careline/homecare-portal/internal/core/ports"
)

type SessionHandler struct {
	session ports.SessionService
}

func NewSessionHandler(session ports.SessionService) *SessionHandler {
	return &SessionHandler{session: session}
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email       string `json:"email"        validate:"required,email"`
	Password    string `json:"password"     validate:"required"`
	FirstName   string `json:"first_name"   validate:"max=100"`
	LastName    string `json:"last_name"    validate:"max=100"`
	Role        string `json:"role"         validate:"omitempty,oneof=patient nurse admin"`
	Avatar      string `json:"avatar"       validate:"omitempty,url"`
	PhoneNumber string `json:"phone_number" validate:"max=32"`
}

type profileRequest struct {
	FirstName   *string `json:"first_name"   validate:"omitempty,max=100"`
	LastName    *string `json:"last_name"    validate:"omitempty,max=100"`
	Avatar      *string `json:"avatar"       validate:"omitempty,url"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=32"`
}

type logoutResponse struct {
	Session  domain.Snapshot `json:"session"`
	Redirect string          `json:"redirect"`
}

// Get returns the current session.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  domain.Snapshot
// @Router       /api/session [get]
func (h *SessionHandler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, h.session.Snapshot())
}

// Login signs in with email and password.
//
// @Summary      Login
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  domain.Snapshot
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      423   {object}  map[string]string
// @Router       /api/session/login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	snap, err := h.session.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap)
}

// Register creates an account and signs it in.
//
// @Summary      Register a new account
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  domain.Snapshot
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      423   {object}  map[string]string
// @Router       /api/session/register [post]
func (h *SessionHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	snap, err := h.session.Register(c.Request().Context(), ports.RegisterInput{
		Email:       req.Email,
		Secret:      req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Role:        req.Role,
		Avatar:      req.Avatar,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, snap)
}

// Logout signs out. It always succeeds.
//
// @Summary      Logout
// @Tags         session
// @Produce      json
// @Success      200  {object}  logoutResponse
// @Router       /api/session [delete]
func (h *SessionHandler) Logout(c echo.Context) error {
	snap := h.session.Logout(c.Request().Context())
	return c.JSON(http.StatusOK, logoutResponse{Session: snap, Redirect: domain.RouteAnonymousEntry})
}

// UpdateProfile merges the given fields into the signed-in identity.
//
// @Summary      Update profile
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      profileRequest  true  "Fields to change"
// @Success      200   {object}  domain.Snapshot
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      423   {object}  map[string]string
// @Router       /api/session/profile [patch]
func (h *SessionHandler) UpdateProfile(c echo.Context) error {
	var req profileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	snap, err := h.session.UpdateProfile(c.Request().Context(), domain.ProfileUpdate{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Avatar:      req.Avatar,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap)
}
