package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is the authenticated caller as asserted by the external auth
// service. The core never issues or validates credentials itself.
type Identity struct {
	UserID    uuid.UUID `json:"user_id"`
	CompanyID uuid.UUID `json:"company_id"`
	Name      string    `json:"name"`
	IsDriver  bool      `json:"is_driver"`
	IsAdmin   bool      `json:"is_admin"`
}

// Verifier resolves an opaque bearer token to an identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// RedisVerifier reads session records the auth service writes under
// auth:token:<token>. A missing key means the token is invalid or expired.
type RedisVerifier struct {
	client *redis.Client
}

// NewRedisVerifier creates a verifier backed by the shared session store
func NewRedisVerifier(client *redis.Client) *RedisVerifier {
	return &RedisVerifier{client: client}
}

// Verify implements Verifier
func (v *RedisVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	raw, err := v.client.Get(ctx, fmt.Sprintf("auth:token:%s", token)).Result()
	if err == redis.Nil {
		return Identity{}, ErrInvalidToken
	}
	if err != nil {
		return Identity{}, fmt.Errorf("failed to look up token: %w", err)
	}

	var id Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		return Identity{}, fmt.Errorf("malformed session record: %w", err)
	}
	if id.UserID == uuid.Nil {
		return Identity{}, ErrInvalidToken
	}
	return id, nil
}
