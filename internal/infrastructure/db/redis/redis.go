package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const dialTimeout = 5 * time.Second

// Config locates the Redis server and the key holding the identity record.
type Config struct {
	Addr     string
	Password string
	DB       int
	Key      string
	// Timeout bounds dialing and every command. Zero means dialTimeout.
	Timeout time.Duration
}

// OpenIdentitySlot dials Redis, checks it answers, and returns a slot that
// owns the connection. Release it with Close.
func OpenIdentitySlot(ctx context.Context, cfg Config, log zerolog.Logger) (*IdentitySlot, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = dialTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		MaxRetries:   1,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis slot %s: %w", cfg.Addr, err)
	}

	s := NewIdentitySlot(client, cfg.Key, log)
	s.closer = client
	log.Info().Str("addr", cfg.Addr).Int("db", cfg.DB).Str("key", s.key).Msg("identity slot connected")
	return s, nil
}

// Close releases the connection opened by OpenIdentitySlot. Slots built with
// NewIdentitySlot do not own their client and Close is a no-op.
func (s *IdentitySlot) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
