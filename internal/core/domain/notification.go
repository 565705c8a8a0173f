package domain

import "time"

// NotificationKind groups notifications in the feed.
type NotificationKind string

const (
	NotificationAppointment NotificationKind = "appointment"
	NotificationMessage     NotificationKind = "message"
	NotificationSystem      NotificationKind = "system"
)

// Notification is a single entry in a user's feed.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Kind      NotificationKind `json:"type"`
	Read      bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}
