// Package memory provides a process-lifetime credential store. Registrations
// made against it are lost when the process exits.
package memory

import (
	"context"
	"sync"

	"github.com/careline/homecare-portal/internal/core/domain"
)

// CredentialRepository keeps records in a slice and matches by linear scan.
type CredentialRepository struct {
	mu      sync.RWMutex
	records []domain.CredentialRecord
}

func NewCredentialRepository() *CredentialRepository {
	return &CredentialRepository{}
}

func (r *CredentialRepository) FindByEmail(_ context.Context, email string) (*domain.CredentialRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.records {
		if r.records[i].Email == email {
			rec := r.records[i]
			return &rec, nil
		}
	}
	return nil, domain.ErrCredentialNotFound
}

func (r *CredentialRepository) Create(_ context.Context, rec *domain.CredentialRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.records {
		if r.records[i].Email == rec.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.records = append(r.records, *rec)
	return nil
}

// Ping always succeeds; it lets the store take part in readiness checks.
func (r *CredentialRepository) Ping(context.Context) error { return nil }
