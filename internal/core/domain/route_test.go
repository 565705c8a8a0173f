package domain

import (
	"errors"
	"testing"
)

func TestRouteDeclaration_Validate(t *testing.T) {
	ok := RouteDeclaration{Path: "/analytics", AllowedRoles: []Role{RoleAdmin}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	open := RouteDeclaration{Path: "/help"}
	if err := open.Validate(); err != nil {
		t.Fatalf("empty role set must be valid: %v", err)
	}

	bad := RouteDeclaration{Path: "/x", AllowedRoles: []Role{"guest"}}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidRoute) {
		t.Fatalf("expected ErrInvalidRoute, got %v", err)
	}

	if err := (RouteDeclaration{}).Validate(); !errors.Is(err, ErrInvalidRoute) {
		t.Fatalf("expected ErrInvalidRoute for empty path, got %v", err)
	}
}

func TestRouteDeclaration_Allows(t *testing.T) {
	d := RouteDeclaration{Path: "/patients", AllowedRoles: []Role{RoleNurse, RoleAdmin}}
	if d.Allows(RolePatient) {
		t.Errorf("patient must not be allowed")
	}
	if !d.Allows(RoleNurse) || !d.Allows(RoleAdmin) {
		t.Errorf("nurse and admin must be allowed")
	}
	if !(RouteDeclaration{Path: "/help"}).Allows(RolePatient) {
		t.Errorf("open route must allow any role")
	}
}
