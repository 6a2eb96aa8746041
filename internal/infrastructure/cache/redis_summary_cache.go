package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	appledger "github.com/papererp/backend/internal/application/ledger"
)

// RedisSummaryCache implements SummaryCache using Redis. It is suitable
// for distributed deployments where multiple instances serve the same
// tenant and must see each other's invalidations.
type RedisSummaryCache struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisSummaryCache creates a new Redis-based summary cache
func NewRedisSummaryCache(cfg RedisConfig) (*RedisSummaryCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisSummaryCache{
		client:    client,
		keyPrefix: "ledger:summary:",
	}, nil
}

// NewRedisSummaryCacheWithClient creates a cache with an existing Redis client.
// Useful for testing or when sharing a client across components.
func NewRedisSummaryCacheWithClient(client *redis.Client, keyPrefix string) *RedisSummaryCache {
	if keyPrefix == "" {
		keyPrefix = "ledger:summary:"
	}
	return &RedisSummaryCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (c *RedisSummaryCache) key(tenantID, customerID uuid.UUID) string {
	return c.keyPrefix + tenantID.String() + ":" + customerID.String()
}

// Get returns the cached summary, or nil on a cache miss
func (c *RedisSummaryCache) Get(ctx context.Context, tenantID, customerID uuid.UUID) (*appledger.CustomerLedgerSummary, error) {
	data, err := c.client.Get(ctx, c.key(tenantID, customerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read summary from cache: %w", err)
	}

	var summary appledger.CustomerLedgerSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		// A corrupt entry is treated as a miss and will be overwritten
		return nil, nil
	}
	return &summary, nil
}

// Set stores a summary with the given TTL
func (c *RedisSummaryCache) Set(ctx context.Context, tenantID, customerID uuid.UUID, summary *appledger.CustomerLedgerSummary, ttl time.Duration) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := c.client.Set(ctx, c.key(tenantID, customerID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write summary to cache: %w", err)
	}
	return nil
}

// Invalidate removes a customer's cached summary
func (c *RedisSummaryCache) Invalidate(ctx context.Context, tenantID, customerID uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(tenantID, customerID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate summary: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client
func (c *RedisSummaryCache) Close() error {
	return c.client.Close()
}

// Ensure RedisSummaryCache implements SummaryCache
var _ appledger.SummaryCache = (*RedisSummaryCache)(nil)
