package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/praxis-hq/praxis/internal/shared"
)

// TokenStore keeps opaque bearer tokens in Redis. A token maps to the user
// id it was issued for and expires after the configured TTL.
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTokenStore constructs a TokenStore.
func NewTokenStore(client *redis.Client, ttl time.Duration) *TokenStore {
	return &TokenStore{client: client, ttl: ttl}
}

// Issue mints a new token for the user.
func (ts *TokenStore) Issue(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	if err := ts.client.Set(ctx, ts.key(token), userID, ts.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve returns the user id a token was issued for.
func (ts *TokenStore) Resolve(ctx context.Context, token string) (int64, error) {
	raw, err := ts.client.Get(ctx, ts.key(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, shared.ErrUnauthenticated
		}
		return 0, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, shared.ErrUnauthenticated
	}
	return id, nil
}

// Revoke deletes a token.
func (ts *TokenStore) Revoke(ctx context.Context, token string) error {
	err := ts.client.Del(ctx, ts.key(token)).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

// TTL exposes the configured token lifetime.
func (ts *TokenStore) TTL() time.Duration {
	return ts.ttl
}

func (ts *TokenStore) key(token string) string {
	return "token:" + token
}
