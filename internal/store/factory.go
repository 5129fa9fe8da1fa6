package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/redis/go-redis/v9"

	"mobility-portal/internal/common/config"
	"mobility-portal/internal/common/database"
	"mobility-portal/internal/common/logger"
)

// Backend is the selected record store plus what the readiness probe and
// shutdown need from it.
type Backend struct {
	Store  SubmissionStore
	Checks map[string]database.Check

	db *sql.DB
}

// Close releases the Postgres pool when there is one.
func (b *Backend) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

// Open builds the store selected by cfg.Strategy. When rdb is non-nil and
// cfg.Redis.CacheTTL is positive the store is wrapped in a CachedStore.
func Open(ctx context.Context, cfg config.DatabaseConfig, rdb *redis.Client, log logger.Logger) (*Backend, error) {
	b := &Backend{Checks: map[string]database.Check{}}

	switch cfg.Strategy {
	case "postgres":
		db, err := database.OpenPostgres(cfg.Postgres)
		if err != nil {
			return nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping postgres: %w", err)
		}
		pg := NewPostgresStore(db, log)
		if err := pg.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		b.db = db
		b.Store = pg
		b.Checks["postgres"] = database.PostgresCheck(db)

	case "elasticsearch":
		es, err := database.NewElasticsearch(cfg.Elasticsearch, nil)
		if err != nil {
			return nil, err
		}
		s := NewElasticsearchStore(es, cfg.Elasticsearch.Index, cfg.Elasticsearch.ListSize, log)
		if err := s.EnsureIndex(ctx); err != nil {
			return nil, err
		}
		b.Store = s
		b.Checks["elasticsearch"] = database.ElasticsearchCheck(es)

	case "mockup", "":
		b.Store = NewMemoryStore()

	default:
		return nil, fmt.Errorf("unknown database strategy %q", cfg.Strategy)
	}

	if rdb != nil && cfg.Redis.CacheTTL > 0 {
		b.Store = NewCachedStore(b.Store, rdb, config.GetDuration(cfg.Redis.CacheTTL), log)
		b.Checks["redis"] = database.RedisCheck(rdb)
	}

	log.Info("record store ready", map[string]interface{}{
		"strategy": cfg.Strategy,
		"cached":   rdb != nil && cfg.Redis.CacheTTL > 0,
	})
	return b, nil
}
