package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"mobility-portal/internal/common/logger"
	"mobility-portal/internal/models"
)

const cacheKeyPrefix = "submission:"

// CachedStore puts a Redis read-through cache in front of GetMySubmission.
// Saves write the new record through to the cache. Redis failures are
// logged and never fail a request.
type CachedStore struct {
	inner  SubmissionStore
	rdb    redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedStore(inner SubmissionStore, rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *CachedStore {
	return &CachedStore{
		inner:  inner,
		rdb:    rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "submission-cache"}),
	}
}

func cacheKey(email string) string {
	return cacheKeyPrefix + strings.ToLower(email)
}

func (c *CachedStore) SaveSubmission(ctx context.Context, data models.SubmissionData) (*models.SubmissionMetaDb, error) {
	rec, err := c.inner.SaveSubmission(ctx, data)
	if err != nil {
		return nil, err
	}
	c.put(ctx, rec)
	return rec, nil
}

func (c *CachedStore) GetMySubmission(ctx context.Context, email string) (*models.SubmissionMetaDb, error) {
	key := cacheKey(email)
	cached, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		var rec models.SubmissionMetaDb
		if jsonErr := json.Unmarshal([]byte(cached), &rec); jsonErr == nil {
			return &rec, nil
		}
		c.logger.Warn("dropping unreadable cache entry", map[string]interface{}{"key": key})
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
	}

	rec, err := c.inner.GetMySubmission(ctx, email)
	if err != nil || rec == nil {
		return rec, err
	}
	c.put(ctx, rec)
	return rec, nil
}

func (c *CachedStore) ListAllSubmissions(ctx context.Context) ([]models.SubmissionMetaDb, error) {
	return c.inner.ListAllSubmissions(ctx)
}

func (c *CachedStore) put(ctx context.Context, rec *models.SubmissionMetaDb) {
	data, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(rec.Email), data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{"email": rec.Email, "error": err.Error()})
	}
}
