package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zatekoja/mtf-triage/backend/pkg/config"
)

// Redis backs optional features only (scan cache, response cache,
// assessment events), so operations time out quickly and callers fall
// through instead of stalling a request.
const (
	dialTimeout      = 2 * time.Second
	operationTimeout = 500 * time.Millisecond
	pingTimeout      = 5 * time.Second
	clientName       = "mtf-triage"
)

// Client wraps the go-redis client shared by the cache and event adapters
type Client struct {
	client *redis.Client
}

// NewClient connects to Redis and verifies the connection with a ping
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		ClientName:   clientName,
		DialTimeout:  dialTimeout,
		ReadTimeout:  operationTimeout,
		WriteTimeout: operationTimeout,
		MaxRetries:   1,
	})

	c := &Client{client: client}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddr(), err)
	}
	return c, nil
}

// NewClientFromRedis wraps an existing go-redis client
func NewClientFromRedis(client *redis.Client) *Client {
	return &Client{client: client}
}

// Client returns the underlying go-redis client
func (c *Client) Client() *redis.Client {
	return c.client
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
