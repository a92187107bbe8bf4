package masterdata

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ListCache keeps list responses in Redis, one hash per company and resource
// with a field per query. Concurrent misses for the same key share one load.
// Entries are shared by every operator of a company: a hit is served without
// the backend re-checking the caller's token.
type ListCache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

// NewListCache builds a ListCache. A nil client or zero ttl disables caching.
func NewListCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *ListCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListCache{client: client, ttl: ttl, logger: logger}
}

func (c *ListCache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Fetch returns the cached rows or calls load and stores its result.
func (c *ListCache) Fetch(ctx context.Context, company string, res Resource, query url.Values, load func(context.Context) ([]Row, error)) ([]Row, error) {
	if !c.enabled() {
		return load(ctx)
	}
	key := hashKey(company, res)
	field := queryField(query)

	if raw, err := c.client.HGet(ctx, key, field).Bytes(); err == nil {
		var rows []Row
		if err := json.Unmarshal(raw, &rows); err == nil {
			return rows, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("masterdata cache read", slog.String("key", key), slog.Any("error", err))
	}

	// Detached from the first caller's cancellation; waiters share the result.
	v, err, _ := c.group.Do(key+"|"+field, func() (any, error) {
		loadCtx := context.WithoutCancel(ctx)
		rows, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		c.store(loadCtx, key, field, rows)
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Row), nil
}

func (c *ListCache) store(ctx context.Context, key, field string, rows []Row) {
	payload, err := json.Marshal(rows)
	if err != nil {
		return
	}
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, field, payload)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("masterdata cache write", slog.String("key", key), slog.Any("error", err))
	}
}

// Invalidate drops every cached list of res for company.
func (c *ListCache) Invalidate(ctx context.Context, company string, res Resource) {
	if !c.enabled() {
		return
	}
	if err := c.client.Del(ctx, hashKey(company, res)).Err(); err != nil {
		c.logger.Warn("masterdata cache invalidate", slog.String("resource", res.Name), slog.Any("error", err))
	}
}

func hashKey(company string, res Resource) string {
	if company == "" {
		company = "-"
	}
	return "odyssey:masterdata:" + company + ":" + res.Name
}

func queryField(query url.Values) string {
	if len(query) == 0 {
		return "all"
	}
	sum := sha1.Sum([]byte(query.Encode()))
	return hex.EncodeToString(sum[:])
}
