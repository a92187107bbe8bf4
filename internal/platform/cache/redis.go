// Package cache owns the Redis connection settings shared by sessions, list
// caches and the asynq job queue.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// Options describes one Redis endpoint.
type Options struct {
	Addr     string
	Password string
	DB       int
}

func (o Options) client() *redis.Options {
	return &redis.Options{
		Addr:         o.Addr,
		Password:     o.Password,
		DB:           o.DB,
		DialTimeout:  pingTimeout,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Asynq converts the options for the job client, worker and inspector so all
// of them target the same database.
func (o Options) Asynq() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: o.Addr, Password: o.Password, DB: o.DB}
}

// New dials Redis. The client is returned even when the ping fails so callers
// can keep serving with caching degraded.
func New(ctx context.Context, opts Options) (*redis.Client, error) {
	client := redis.NewClient(opts.client())

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return client, fmt.Errorf("platform/cache: ping %s: %w", opts.Addr, err)
	}
	return client, nil
}
