package redisclient

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
)

//go:embed scripts/set_high_bid.lua
var setHighBidScript string

// Client is a thin display-side cache over Redis. It mirrors the
// committed high bid per lot for cheap reads; it is never consulted
// when deciding whether to accept a bid. That decision lives entirely
// inside the ledger's transaction.
type Client struct {
	rdb        *redis.Client
	highBidScr *redis.Script
}

// NewClient creates a new Redis client with the high-bid script loaded
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{
		rdb:        rdb,
		highBidScr: redis.NewScript(setHighBidScript),
	}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// SetHighBid updates the cached high bid for a lot, monotonically. Two
// commits racing to update the cache cannot leave a stale lower value:
// the Lua script only ever raises the cached amount.
func (c *Client) SetHighBid(ctx context.Context, lotID string, amount decimal.Decimal) error {
	key := fmt.Sprintf("highbid:%s", lotID)

	if _, err := c.highBidScr.Run(ctx, c.rdb, []string{key}, amount.String()).Result(); err != nil {
		return fmt.Errorf("set high bid script failed: %w", err)
	}
	return nil
}

// GetHighBid reads the cached high bid for a lot. The second return is
// false when nothing is cached.
func (c *Client) GetHighBid(ctx context.Context, lotID string) (decimal.Decimal, bool, error) {
	key := fmt.Sprintf("highbid:%s", lotID)

	val, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}

	amount, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("corrupt cached high bid for lot %s: %w", lotID, err)
	}
	return amount, true, nil
}

// ClearHighBid drops the cached high bid for a lot (used once a lot is
// settled and its high bid stops moving).
func (c *Client) ClearHighBid(ctx context.Context, lotID string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("highbid:%s", lotID)).Err()
}

// SetIdempotencyKey stores an idempotency key with TTL
func (c *Client) SetIdempotencyKey(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.rdb.Set(ctx, fmt.Sprintf("idempotency:%s", key), value, ttl).Err()
}

// CheckIdempotencyKey checks if an idempotency key exists
func (c *Client) CheckIdempotencyKey(ctx context.Context, key string) (bool, error) {
	result, err := c.rdb.Exists(ctx, fmt.Sprintf("idempotency:%s", key)).Result()
	if err != nil {
		return false, err
	}
	return result > 0, nil
}
