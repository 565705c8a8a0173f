package slot

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/careline/homecare-portal/internal/core/domain"
)

// JSONCodec stores the Identity as a plain JSON object.
type JSONCodec struct{}

func (JSONCodec) Encode(id domain.Identity) ([]byte, error) {
	return json.Marshal(id)
}

func (JSONCodec) Decode(data []byte) (*domain.Identity, error) {
	var id domain.Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedStoredRecord, err)
	}
	return &id, nil
}

// SignedCodec stores the Identity as the claims of an HS256 JWT so a record
// edited outside the process, or written under another key, is rejected.
type SignedCodec struct {
	key []byte
}

func NewSignedCodec(key string) (*SignedCodec, error) {
	if key == "" {
		return nil, errors.New("signed codec: empty signing key")
	}
	return &SignedCodec{key: []byte(key)}, nil
}

type identityClaims struct {
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Role        string `json:"role"`
	Avatar      string `json:"avatar,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	// CreatedAt keeps full precision; NumericDate claims are truncated to
	// seconds.
	CreatedAt time.Time `json:"created_at"`
	jwt.RegisteredClaims
}

func (c *SignedCodec) Encode(id domain.Identity) ([]byte, error) {
	claims := identityClaims{
		Email:       id.Email,
		FirstName:   id.FirstName,
		LastName:    id.LastName,
		Role:        id.Role.String(),
		Avatar:      id.Avatar,
		PhoneNumber: id.PhoneNumber,
		CreatedAt:   id.CreatedAt,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  id.ID,
			IssuedAt: jwt.NewNumericDate(id.CreatedAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return nil, fmt.Errorf("sign identity: %w", err)
	}
	return []byte(signed), nil
}

func (c *SignedCodec) Decode(data []byte) (*domain.Identity, error) {
	var claims identityClaims
	_, err := jwt.ParseWithClaims(string(data), &claims, func(t *jwt.Token) (interface{}, error) {
		return c.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedStoredRecord, err)
	}

	created := claims.CreatedAt
	if created.IsZero() && claims.IssuedAt != nil {
		created = claims.IssuedAt.Time.UTC()
	}
	return &domain.Identity{
		ID:          claims.Subject,
		Email:       claims.Email,
		FirstName:   claims.FirstName,
		LastName:    claims.LastName,
		Role:        domain.Role(claims.Role),
		Avatar:      claims.Avatar,
		PhoneNumber: claims.PhoneNumber,
		CreatedAt:   created,
	}, nil
}
