package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionRegistry tracks live sessions in Redis under
// session:<userId>:<sessionId>. A signed token whose session is missing
// has been logged out.
type SessionRegistry struct {
	rdb redis.Cmdable
}

func NewSessionRegistry(rdb redis.Cmdable) *SessionRegistry {
	return &SessionRegistry{rdb: rdb}
}

func sessionKey(userID, sessionID string) string {
	return fmt.Sprintf("session:%s:%s", userID, sessionID)
}

func (r *SessionRegistry) Register(ctx context.Context, userID, sessionID string, ttl time.Duration) error {
	if err := r.rdb.Set(ctx, sessionKey(userID, sessionID), time.Now().UTC().Format(time.RFC3339), ttl).Err(); err != nil {
		return fmt.Errorf("failed to register session: %w", err)
	}
	return nil
}

func (r *SessionRegistry) Active(ctx context.Context, userID, sessionID string) (bool, error) {
	n, err := r.rdb.Exists(ctx, sessionKey(userID, sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to look up session: %w", err)
	}
	return n == 1, nil
}

func (r *SessionRegistry) Revoke(ctx context.Context, userID, sessionID string) error {
	if err := r.rdb.Del(ctx, sessionKey(userID, sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}
