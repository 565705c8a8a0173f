package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	connectTimeout = 10 * time.Second
	appName        = "homecare-portal"
)

// Config locates the credential database.
type Config struct {
	URI      string
	Database string
	// Timeout bounds server selection and index creation. Zero means
	// connectTimeout.
	Timeout time.Duration
}

// OpenCredentialRepository connects to MongoDB, makes sure the unique email
// index exists, and returns a repository that owns the client. Release it
// with Close.
func OpenCredentialRepository(ctx context.Context, cfg Config) (*CredentialRepository, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = connectTimeout
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName(appName).
		SetServerSelectionTimeout(timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	setupCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	repo := NewCredentialRepository(client.Database(cfg.Database))
	if err := repo.Ping(setupCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	if err := repo.EnsureIndexes(setupCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	repo.owned = true
	return repo, nil
}

// Close disconnects the client opened by OpenCredentialRepository. It is a
// no-op for repositories built with NewCredentialRepository.
func (r *CredentialRepository) Close(ctx context.Context) error {
	if !r.owned {
		return nil
	}
	return r.coll.Database().Client().Disconnect(ctx)
}
