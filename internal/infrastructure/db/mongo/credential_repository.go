package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/careline/homecare-portal/internal/core/domain"
)

const credentialCollection = "credentials"

// CredentialRepository is the durable credential store: registrations survive
// restarts.
type CredentialRepository struct {
	coll  *mongo.Collection
	owned bool
}

func NewCredentialRepository(db *mongo.Database) *CredentialRepository {
	return &CredentialRepository{coll: db.Collection(credentialCollection)}
}

type mongoCredential struct {
	ID          string `bson:"_id"`
	Email       string `bson:"email"`
	SecretHash  string `bson:"secret_hash"`
	FirstName   string `bson:"first_name"`
	LastName    string `bson:"last_name"`
	Role        string `bson:"role"`
	Avatar      string `bson:"avatar,omitempty"`
	PhoneNumber string `bson:"phone_number,omitempty"`
	CreatedAt   int64  `bson:"created_at_ns"`
}

// EnsureIndexes creates the unique email index backing ErrEmailAlreadyExists.
func (r *CredentialRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_email"),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

func (r *CredentialRepository) Create(ctx context.Context, rec *domain.CredentialRecord) error {
	_, err := r.coll.InsertOne(ctx, toMongo(rec))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

func (r *CredentialRepository) FindByEmail(ctx context.Context, email string) (*domain.CredentialRecord, error) {
	var mc mongoCredential
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&mc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("find credential: %w", err)
	}
	return fromMongo(mc), nil
}

// Ping checks the server is reachable.
func (r *CredentialRepository) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}

func toMongo(rec *domain.CredentialRecord) mongoCredential {
	return mongoCredential{
		ID:          rec.ID,
		Email:       rec.Email,
		SecretHash:  rec.SecretHash,
		FirstName:   rec.FirstName,
		LastName:    rec.LastName,
		Role:        rec.Role.String(),
		Avatar:      rec.Avatar,
		PhoneNumber: rec.PhoneNumber,
		CreatedAt:   unixNano(rec.CreatedAt),
	}
}

func fromMongo(mc mongoCredential) *domain.CredentialRecord {
	return &domain.CredentialRecord{
		Identity: domain.Identity{
			ID:          mc.ID,
			Email:       mc.Email,
			FirstName:   mc.FirstName,
			LastName:    mc.LastName,
			Role:        domain.Role(mc.Role),
			Avatar:      mc.Avatar,
			PhoneNumber: mc.PhoneNumber,
			CreatedAt:   nanoToTime(mc.CreatedAt),
		},
		SecretHash: mc.SecretHash,
	}
}

// Creation times are kept as Unix nanoseconds; BSON dates only hold
// milliseconds.
func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func nanoToTime(ns int64) time.Time {
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns).UTC()
}
