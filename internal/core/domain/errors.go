package domain

import "errors"

var (
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrNotAuthenticated      = errors.New("not authenticated")
	ErrMalformedStoredRecord = errors.New("malformed stored record")

	// ErrOperationInFlight rejects a mutation issued while another is pending.
	ErrOperationInFlight = errors.New("another session operation is in flight")
	// ErrSessionReset is returned by an operation whose session was logged out
	// before it could commit.
	ErrSessionReset = errors.New("session was reset during the operation")

	ErrInvalidRole          = errors.New("invalid role")
	ErrInvalidRegistration  = errors.New("email and password are required")
	ErrCredentialNotFound   = errors.New("credential not found")
	ErrSlotEmpty            = errors.New("identity slot is empty")
	ErrInvalidRoute         = errors.New("invalid route declaration")
	ErrRouteNotDeclared     = errors.New("route not declared")
	ErrNotificationNotFound = errors.New("notification not found")
)
