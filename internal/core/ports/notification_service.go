package ports

import (
	"context"

	"github.com/careline/homecare-portal/internal/core/domain"
)

// NotificationSink receives notifications produced by session events.
type NotificationSink interface {
	Deliver(ctx context.Context, n domain.Notification) error
}

// NotificationPublisher hands notifications off without blocking the caller.
type NotificationPublisher interface {
	Publish(n domain.Notification)
}

// NotificationService manages per-user notification feeds.
type NotificationService interface {
	NotificationSink
	List(ctx context.Context, userID string) ([]domain.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID, id string) error
}
