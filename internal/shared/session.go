package shared

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TokenStore issues and resolves bearer tokens backed by Redis.
type TokenStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

type tokenPayload struct {
	Caller   Caller    `json:"caller"`
	IssuedAt time.Time `json:"issued_at"`
}

// NewTokenStore constructs a TokenStore.
func NewTokenStore(client *redis.Client, prefix string, ttl time.Duration) *TokenStore {
	if prefix == "" {
		prefix = "session"
	}
	return &TokenStore{client: client, prefix: prefix, ttl: ttl}
}

// Issue creates a new token for the caller.
func (s *TokenStore) Issue(ctx context.Context, caller Caller) (string, error) {
	if s == nil || s.client == nil {
		return "", errors.New("token store not initialised")
	}
	if caller.UserID == "" {
		return "", errors.New("token store: caller id required")
	}
	token := generateToken()
	data, err := json.Marshal(tokenPayload{Caller: caller, IssuedAt: time.Now().UTC()})
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, s.redisKey(token), data, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve returns the caller bound to token, or ErrUnauthorized.
func (s *TokenStore) Resolve(ctx context.Context, token string) (Caller, error) {
	if s == nil || s.client == nil {
		return Caller{}, errors.New("token store not initialised")
	}
	if token == "" {
		return Caller{}, ErrUnauthorized
	}
	payload, err := s.client.Get(ctx, s.redisKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Caller{}, ErrUnauthorized
		}
		return Caller{}, err
	}
	var stored tokenPayload
	if err := json.Unmarshal(payload, &stored); err != nil {
		return Caller{}, err
	}
	return stored.Caller, nil
}

// Revoke deletes the token. Unknown tokens are ignored.
func (s *TokenStore) Revoke(ctx context.Context, token string) error {
	if s == nil || s.client == nil || token == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.redisKey(token)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

// TTL exposes the configured token lifetime.
func (s *TokenStore) TTL() time.Duration {
	return s.ttl
}

// BearerToken extracts the token from an Authorization header.
func BearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(raw) < 7 || !strings.EqualFold(raw[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(raw[7:])
}

func (s *TokenStore) redisKey(token string) string {
	return s.prefix + ":" + token
}

func generateToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return uuid.NewString()
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
