package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/careline/homecare-portal/internal/core/domain"
)

func feedFixture() []domain.Notification {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return []domain.Notification{
		{ID: "a", UserID: "1", Title: "oldest", Kind: domain.NotificationSystem, CreatedAt: base},
		{ID: "b", UserID: "1", Title: "newest", Kind: domain.NotificationAppointment, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "c", UserID: "1", Title: "middle", Kind: domain.NotificationMessage, Read: true, CreatedAt: base.Add(time.Hour)},
		{ID: "d", UserID: "2", Title: "other user", Kind: domain.NotificationSystem, CreatedAt: base},
	}
}

func TestNotificationService_ListNewestFirst(t *testing.T) {
	svc := NewNotificationService(feedFixture(), zerolog.Nop())

	got, err := svc.List(context.Background(), "1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"b", "c", "a"}
	if len(got) != len(want) {
		t.Fatalf("List len = %d, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("List[%d] = %s, want %s", i, got[i].ID, id)
		}
	}

	empty, err := svc.List(context.Background(), "nobody")
	if err != nil || len(empty) != 0 {
		t.Fatalf("List(unknown) = %v, %v", empty, err)
	}
}

func TestNotificationService_ReadState(t *testing.T) {
	svc := NewNotificationService(feedFixture(), zerolog.Nop())
	ctx := context.Background()

	if n, _ := svc.UnreadCount(ctx, "1"); n != 2 {
		t.Fatalf("UnreadCount = %d, want 2", n)
	}
	if err := svc.MarkRead(ctx, "1", "a"); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if n, _ := svc.UnreadCount(ctx, "1"); n != 1 {
		t.Fatalf("UnreadCount after MarkRead = %d, want 1", n)
	}
	if err := svc.MarkAllRead(ctx, "1"); err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if n, _ := svc.UnreadCount(ctx, "1"); n != 0 {
		t.Fatalf("UnreadCount after MarkAllRead = %d", n)
	}
	if n, _ := svc.UnreadCount(ctx, "2"); n != 1 {
		t.Fatalf("other user's feed touched: unread = %d", n)
	}
}

func TestNotificationService_ScopedToUser(t *testing.T) {
	svc := NewNotificationService(feedFixture(), zerolog.Nop())
	ctx := context.Background()

	if err := svc.MarkRead(ctx, "1", "d"); !errors.Is(err, domain.ErrNotificationNotFound) {
		t.Fatalf("MarkRead other user's item: expected ErrNotificationNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, "2", "a"); !errors.Is(err, domain.ErrNotificationNotFound) {
		t.Fatalf("Delete other user's item: expected ErrNotificationNotFound, got %v", err)
	}
}

func TestNotificationService_Delete(t *testing.T) {
	svc := NewNotificationService(feedFixture(), zerolog.Nop())
	ctx := context.Background()

	if err := svc.Delete(ctx, "1", "c"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, _ := svc.List(ctx, "1")
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("unexpected feed after delete: %+v", got)
	}
	if err := svc.Delete(ctx, "1", "c"); !errors.Is(err, domain.ErrNotificationNotFound) {
		t.Fatalf("second Delete: expected ErrNotificationNotFound, got %v", err)
	}
}

func TestNotificationService_Deliver(t *testing.T) {
	svc := NewNotificationService(nil, zerolog.Nop())
	ctx := context.Background()

	if err := svc.Deliver(ctx, domain.Notification{ID: "x"}); err == nil {
		t.Fatalf("expected error for missing user")
	}
	n := domain.Notification{ID: "x", UserID: "9", Title: "hi", CreatedAt: time.Now()}
	if err := svc.Deliver(ctx, n); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	got, _ := svc.List(ctx, "9")
	if len(got) != 1 || got[0].Title != "hi" || got[0].Read {
		t.Fatalf("unexpected feed: %+v", got)
	}
}
