package ports

import (
	"context"

	"github.com/careline/homecare-portal/internal/core/domain"
)

// RegisterInput carries a signup form. Role defaults to patient when empty.
type RegisterInput struct {
	Email       string
	Secret      string
	FirstName   string
	LastName    string
	Role        string
	Avatar      string
	PhoneNumber string
}

// SessionService owns the process Session.
type SessionService interface {
	Restore(ctx context.Context) domain.Snapshot
	Login(ctx context.Context, email, secret string) (domain.Snapshot, error)
	Register(ctx context.Context, in RegisterInput) (domain.Snapshot, error)
	Logout(ctx context.Context) domain.Snapshot
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (domain.Snapshot, error)
	Snapshot() domain.Snapshot
}
