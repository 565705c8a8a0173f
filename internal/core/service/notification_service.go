package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/careline/homecare-portal/internal/core/domain"
	"github.com/careline/homecare-portal/internal/core/ports"
)

type notificationService struct {
	mu     sync.RWMutex
	byUser map[string][]domain.Notification
	log    zerolog.Logger
}

// NewNotificationService returns an in-memory NotificationService holding
// seed as the initial feeds.
func NewNotificationService(seed []domain.Notification, log zerolog.Logger) ports.NotificationService {
	s := &notificationService{
		byUser: make(map[string][]domain.Notification),
		log:    log,
	}
	for _, n := range seed {
		s.byUser[n.UserID] = append(s.byUser[n.UserID], n)
	}
	return s
}

// Deliver appends n to its user's feed.
func (s *notificationService) Deliver(_ context.Context, n domain.Notification) error {
	if n.UserID == "" || n.ID == "" {
		return fmt.Errorf("deliver notification: missing user or id")
	}
	s.mu.Lock()
	s.byUser[n.UserID] = append(s.byUser[n.UserID], n)
	s.mu.Unlock()

	s.log.Debug().Str("user_id", n.UserID).Str("title", n.Title).Msg("notification delivered")
	return nil
}

// List returns the user's feed, newest first.
func (s *notificationService) List(_ context.Context, userID string) ([]domain.Notification, error) {
	s.mu.RLock()
	out := make([]domain.Notification, len(s.byUser[userID]))
	copy(out, s.byUser[userID])
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *notificationService) UnreadCount(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, item := range s.byUser[userID] {
		if !item.Read {
			n++
		}
	}
	return n, nil
}

func (s *notificationService) MarkRead(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	feed := s.byUser[userID]
	for i := range feed {
		if feed[i].ID == id {
			feed[i].Read = true
			return nil
		}
	}
	return domain.ErrNotificationNotFound
}

func (s *notificationService) MarkAllRead(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	feed := s.byUser[userID]
	for i := range feed {
		feed[i].Read = true
	}
	return nil
}

func (s *notificationService) Delete(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	feed := s.byUser[userID]
	for i := range feed {
		if feed[i].ID == id {
			s.byUser[userID] = append(feed[:i:i], feed[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotificationNotFound
}
