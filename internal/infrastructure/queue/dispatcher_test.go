package queue

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/careline/homecare-portal/internal/core/domain"
)

type recordingSink struct {
	mu    sync.Mutex
	got   map[string][]string
	total int
	done  chan struct{}
	want  int
}

func newRecordingSink(want int) *recordingSink {
	return &recordingSink{got: make(map[string][]string), done: make(chan struct{}), want: want}
}

func (s *recordingSink) Deliver(_ context.Context, n domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got[n.UserID] = append(s.got[n.UserID], n.ID)
	s.total++
	if s.total == s.want {
		close(s.done)
	}
	return nil
}

func TestDispatcher_PreservesPerUserOrder(t *testing.T) {
	const perUser = 20
	users := []string{"1", "2", "3", "4", "5"}
	sink := newRecordingSink(perUser * len(users))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := NewDispatcher(3, sink, zerolog.Nop())
	d.Start(ctx)

	for i := 0; i < perUser; i++ {
		for _, u := range users {
			d.Publish(domain.Notification{ID: strconv.Itoa(i), UserID: u})
		}
	}

	select {
	case <-sink.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for deliveries")
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	for _, u := range users {
		ids := sink.got[u]
		if len(ids) != perUser {
			t.Fatalf("user %s: got %d notifications, want %d", u, len(ids), perUser)
		}
		for i, id := range ids {
			if id != strconv.Itoa(i) {
				t.Fatalf("user %s: out of order at %d: %v", u, i, ids)
			}
		}
	}
}

func TestDispatcher_ShardIndexStable(t *testing.T) {
	d := NewDispatcher(0, newRecordingSink(0), zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
	first := d.shardIndex("user-42")
	for i := 0; i < 10; i++ {
		if d.shardIndex("user-42") != first {
			t.Fatalf("shard index not deterministic")
		}
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	d := NewDispatcher(1, newRecordingSink(0), zerolog.Nop())
	// Not started: nothing drains the queue.
	for i := 0; i < channelBuffer+5; i++ {
		d.Publish(domain.Notification{ID: strconv.Itoa(i), UserID: "1"})
	}
	if got := len(d.workers[0]); got != channelBuffer {
		t.Fatalf("queue length = %d, want %d", got, channelBuffer)
	}
}
