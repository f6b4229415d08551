package zoning

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedResolver is a redis read-through cache in front of another resolver.
// Zone lookups sit on the fee assessment hot path and the underlying data
// changes rarely, so a short TTL is safe. Cache failures degrade to the inner
// resolver rather than failing the request.
type CachedResolver struct {
	next   Resolver
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedResolver(next Resolver, rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedResolver {
	return &CachedResolver{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func (r *CachedResolver) Resolve(ctx context.Context, zoneID string) (Classification, error) {
	key := "zoning:classification:" + zoneID

	raw, err := r.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var c Classification
		if err := json.Unmarshal(raw, &c); err == nil {
			return c, nil
		}
		// Corrupt cache entry: fall through and repopulate.
	} else if !errors.Is(err, redis.Nil) {
		r.logger.WarnContext(ctx, "zone cache read failed", "zone_id", zoneID, "error", err)
	}

	c, err := r.next.Resolve(ctx, zoneID)
	if err != nil {
		return Classification{}, err
	}

	if raw, err := json.Marshal(c); err == nil {
		if err := r.rdb.Set(ctx, key, raw, r.ttl).Err(); err != nil {
			r.logger.WarnContext(ctx, "zone cache write failed", "zone_id", zoneID, "error", err)
		}
	}
	return c, nil
}
