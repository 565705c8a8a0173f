package redis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/careline/homecare-portal/internal/core/domain"
)

// DefaultKey is where the signed-in identity lives when no key is configured.
const DefaultKey = "careportal:session:identity"

// slotClient is the subset of *redis.Client the slot needs.
type slotClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// IdentitySlot stores the identity record under a single key with no TTL.
// Every call goes through a circuit breaker so a dead Redis fails fast.
type IdentitySlot struct {
	client  slotClient
	key     string
	breaker *gobreaker.CircuitBreaker
	closer  io.Closer
}

// NewIdentitySlot wraps client. An empty key falls back to DefaultKey.
func NewIdentitySlot(client slotClient, key string, log zerolog.Logger) *IdentitySlot {
	if key == "" {
		key = DefaultKey
	}
	return &IdentitySlot{
		client:  client,
		key:     key,
		breaker: newBreaker("redis-identity-slot", log),
	}
}

func newBreaker(name string, log zerolog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		// An empty slot is an answer, not a failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrSlotEmpty)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
}

func (s *IdentitySlot) Load(ctx context.Context) ([]byte, error) {
	v, err := s.breaker.Execute(func() (interface{}, error) {
		b, err := s.client.Get(ctx, s.key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSlotEmpty
		}
		return b, err
	})
	if err != nil {
		if errors.Is(err, domain.ErrSlotEmpty) {
			return nil, err
		}
		return nil, fmt.Errorf("redis slot load: %w", err)
	}
	return v.([]byte), nil
}

func (s *IdentitySlot) Save(ctx context.Context, data []byte) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.client.Set(ctx, s.key, data, 0).Err()
	})
	if err != nil {
		return fmt.Errorf("redis slot save: %w", err)
	}
	return nil
}

func (s *IdentitySlot) Clear(ctx context.Context) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.client.Del(ctx, s.key).Err()
	})
	if err != nil {
		return fmt.Errorf("redis slot clear: %w", err)
	}
	return nil
}

// Ping reports whether Redis answers.
func (s *IdentitySlot) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
