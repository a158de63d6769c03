// Package redis backs the optional token revocation list with Redis.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTimeout = 5 * time.Second

// Config captures the settings for the revocation list connection.
type Config struct {
	Addr    string
	DB      int
	Timeout time.Duration
}

// Open connects, checks the server answers PING and returns a revocation
// list bound to the connection. Close the list to release it.
func Open(ctx context.Context, cfg Config) (*RevocationList, error) {
	client := newClient(cfg)

	pingCtx, cancel := context.WithTimeout(ctx, client.Options().DialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	return NewRevocationList(client), nil
}

// newClient applies defaultTimeout to dial, read and write when cfg leaves
// it unset.
func newClient(cfg Config) *redis.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		DB:           cfg.DB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})
}
