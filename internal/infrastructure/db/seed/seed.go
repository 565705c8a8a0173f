// Package seed holds the fixture data that makes the portal usable without a
// real user store: one account per role and their starter notifications.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/careline/homecare-portal/internal/core/domain"
	"github.com/careline/homecare-portal/internal/core/ports"
)

// Secret is the password shared by every fixture account.
const Secret = "password"

type account struct {
	id, email, first, last string
	role                   domain.Role
}

var accounts = []account{
	{"1", "patient@example.com", "Ahmed", "Hassan", domain.RolePatient},
	{"2", "nurse@example.com", "Sara", "Ali", domain.RoleNurse},
	{"3", "admin@example.com", "Mohammed", "Khaled", domain.RoleAdmin},
}

// Credentials returns the fixture accounts with Secret hashed at cost.
func Credentials(cost int, createdAt time.Time) ([]domain.CredentialRecord, error) {
	out := make([]domain.CredentialRecord, 0, len(accounts))
	for _, a := range accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(Secret), cost)
		if err != nil {
			return nil, fmt.Errorf("hash fixture secret: %w", err)
		}
		out = append(out, domain.CredentialRecord{
			Identity: domain.Identity{
				ID:        a.id,
				Email:     a.email,
				FirstName: a.first,
				LastName:  a.last,
				Role:      a.role,
				CreatedAt: createdAt,
			},
			SecretHash: string(hash),
		})
	}
	return out, nil
}

// Apply inserts recs into repo, skipping emails that already exist. It returns
// how many records were inserted.
func Apply(ctx context.Context, repo ports.CredentialRepository, recs []domain.CredentialRecord) (int, error) {
	inserted := 0
	for i := range recs {
		err := repo.Create(ctx, &recs[i])
		switch {
		case err == nil:
			inserted++
		case errors.Is(err, domain.ErrEmailAlreadyExists):
		default:
			return inserted, fmt.Errorf("seed %s: %w", recs[i].Email, err)
		}
	}
	return inserted, nil
}

// Notifications returns the starter feed for the fixture accounts, dated
// relative to now.
func Notifications(now time.Time) []domain.Notification {
	return []domain.Notification{
		{
			ID: "1", UserID: "1", Kind: domain.NotificationAppointment,
			Title:     "Appointment Confirmed",
			Message:   "Your appointment with Dr. Ali on June 15 is confirmed.",
			CreatedAt: now.Add(-time.Hour),
		},
		{
			ID: "2", UserID: "1", Kind: domain.NotificationMessage, Read: true,
			Title:     "New Message",
			Message:   "You have a new message from Dr. Ali regarding your upcoming appointment.",
			CreatedAt: now.Add(-24 * time.Hour),
		},
		{
			ID: "3", UserID: "2", Kind: domain.NotificationAppointment,
			Title:     "New Appointment Request",
			Message:   "Ahmed Hassan has requested a home visit on June 18 at 10:00 AM.",
			CreatedAt: now.Add(-30 * time.Minute),
		},
		{
			ID: "4", UserID: "2", Kind: domain.NotificationSystem,
			Title:     "Rating Received",
			Message:   "You received a 5-star rating from your last visit.",
			CreatedAt: now.Add(-2 * time.Hour),
		},
		{
			ID: "5", UserID: "3", Kind: domain.NotificationSystem,
			Title:     "New User Registered",
			Message:   "A new nurse has registered and requires approval.",
			CreatedAt: now.Add(-time.Hour),
		},
	}
}
