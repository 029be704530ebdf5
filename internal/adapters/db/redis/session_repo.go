package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	customErrors "github.com/halcyonworks/identity/internal/domain/identity/errors"
	"github.com/redis/go-redis/v9"
)

type SessionRepo struct {
	client *redis.Client
}

func NewSessionRepo(client *redis.Client) *SessionRepo {
	return &SessionRepo{client: client}
}

func key(userID uuid.UUID) string {
	return "session:" + userID.String()
}

func (r *SessionRepo) Set(ctx context.Context, userID uuid.UUID, snapshot string, ttl time.Duration) error {
	return r.client.Set(ctx, key(userID), snapshot, safeTTL(ttl)).Err()
}

func (r *SessionRepo) Get(ctx context.Context, userID uuid.UUID) (string, error) {
	val, err := r.client.Get(ctx, key(userID)).Result()
	switch {
	case err == redis.Nil:
		return "", customErrors.ErrNotFound
	case err != nil:
		return "", err
	default:
		return val, nil
	}
}

func (r *SessionRepo) Delete(ctx context.Context, userID uuid.UUID) error {
	// DEL of an absent key returns 0, not an error
	return r.client.Del(ctx, key(userID)).Err()
}

func safeTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		// minimal TTL so the key still disappears
		return time.Minute
	}
	return ttl
}
