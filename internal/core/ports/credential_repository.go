package ports

import (
	"context"

	"github.com/careline/homecare-portal/internal/core/domain"
)

// CredentialRepository is the backing store consulted by login and extended by
// registration.
type CredentialRepository interface {
	// FindByEmail matches the email exactly. Returns domain.ErrCredentialNotFound
	// when nothing matches.
	FindByEmail(ctx context.Context, email string) (*domain.CredentialRecord, error)
	// Create appends a record. Returns domain.ErrEmailAlreadyExists when the
	// email is taken.
	Create(ctx context.Context, rec *domain.CredentialRecord) error
}
