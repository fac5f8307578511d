package infra

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedis connects the client that carries stock-change events to the
// eventos:estoque list. Redis is optional for this service: an empty URL
// yields a nil client, the dispatcher then drops events and /health reports
// Redis as disabled.
func NewRedis(redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	// Publishing happens after a posting has committed; keep it from stalling the response.
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 2 * time.Second
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}
