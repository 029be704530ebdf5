package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionRepo is the TTL-capable key-value store holding session
// records, one per user id. Get returns errors.ErrNotFound once the
// record has been deleted or evicted; Delete of an absent key is not
// an error.
type SessionRepo interface {
	Set(ctx context.Context, userID uuid.UUID, snapshot string, ttl time.Duration) error
	Get(ctx context.Context, userID uuid.UUID) (string, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}
