package ports

import (
	"context"

	"github.com/careline/homecare-portal/internal/core/domain"
)

// IdentitySlot is the single durable record holding the signed-in Identity.
type IdentitySlot interface {
	// Load returns the raw record, or domain.ErrSlotEmpty when there is none.
	Load(ctx context.Context) ([]byte, error)
	// Save overwrites the record wholesale.
	Save(ctx context.Context, data []byte) error
	// Clear removes the record. Clearing an empty slot is not an error.
	Clear(ctx context.Context) error
}

// IdentityCodec serializes an Identity for the slot.
type IdentityCodec interface {
	Encode(id domain.Identity) ([]byte, error)
	// Decode fails with domain.ErrMalformedStoredRecord on unusable input.
	Decode(data []byte) (*domain.Identity, error)
}
