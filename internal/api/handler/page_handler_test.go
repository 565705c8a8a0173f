package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/careline/homecare-portal/internal/core/domain"
	"github.com/careline/homecare-portal/internal/core/service"
)

func TestPageHandler_Entry(t *testing.T) {
	h := NewPageHandler()

	tests := []struct {
		name     string
		identity *domain.Identity
		wantCode int
		wantLoc  string
	}{
		{"anonymous", nil, http.StatusOK, ""},
		{"patient", &domain.Identity{ID: "1", Role: domain.RolePatient}, http.StatusFound, "/patient/dashboard"},
		{"admin", &domain.Identity{ID: "3", Role: domain.RoleAdmin}, http.StatusFound, "/admin/dashboard"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/auth", nil), rec)
			c.Set("identity", tc.identity)

			if err := h.Entry(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tc.wantCode || rec.Header().Get(echo.HeaderLocation) != tc.wantLoc {
				t.Fatalf("got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
			}
		})
	}
}

func TestPageHandler_Render(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/nurses/42", nil), rec)
	c.SetPath("/nurses/:id")
	c.SetParamNames("id")
	c.SetParamValues("42")
	c.Set("identity", &domain.Identity{ID: "1", Role: domain.RolePatient})
	c.Set("route", domain.RouteDeclaration{Path: "/nurses/:id", Title: "Nurse details"})

	if err := NewPageHandler().Render(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp pageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Path != "/nurses/42" || resp.Route != "/nurses/:id" || resp.Title != "Nurse details" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	if resp.Params["id"] != "42" || resp.User == nil || resp.User.ID != "1" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
}

func TestRouteHandler_Decision(t *testing.T) {
	table, err := service.NewRouteTable(service.DefaultRoutes()...)
	if err != nil {
		t.Fatalf("route table: %v", err)
	}
	guard := service.NewRouteGuard(table, zerolog.Nop())
	stub := &stubSessionService{snapshot: domain.Snapshot{Identity: &domain.Identity{ID: "1", Role: domain.RolePatient}}}
	h := NewRouteHandler(guard, stub)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/routes/decision?path=/analytics", nil), rec)

	if err := h.Decision(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp decisionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Decision.Outcome != domain.OutcomeRedirectRoleDefault || resp.Decision.Target != "/patient/dashboard" {
		t.Fatalf("unexpected decision: %+v", resp)
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/api/routes/decision?path=/nowhere", nil), rec)
	if err := h.Decision(c); !errors.Is(err, domain.ErrRouteNotDeclared) {
		t.Fatalf("expected ErrRouteNotDeclared, got %v", err)
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/api/routes/decision", nil), rec)
	_ = h.Decision(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRouteHandler_List(t *testing.T) {
	table, _ := service.NewRouteTable(service.DefaultRoutes()...)
	h := NewRouteHandler(service.NewRouteGuard(table, zerolog.Nop()), &stubSessionService{})

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/routes", nil), rec)
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var routes []domain.RouteDeclaration
	if err := json.Unmarshal(rec.Body.Bytes(), &routes); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(routes) != len(service.DefaultRoutes()) {
		t.Fatalf("got %d routes", len(routes))
	}
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealthDependenciesHandler_Readiness(t *testing.T) {
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)
	ok := NewHealthDependenciesHandler(map[string]Pinger{"slot": stubPinger{}, "credentials": stubPinger{}})
	if err := ok.Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)
	bad := NewHealthDependenciesHandler(map[string]Pinger{"slot": stubPinger{err: errors.New("redis down")}})
	if err := bad.Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var resp readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Status != "degraded" || resp.Dependencies["slot"].Error != "redis down" {
		t.Fatalf("unexpected body: %+v", resp)
	}
}
