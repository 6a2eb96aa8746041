package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	appledger "github.com/papererp/backend/internal/application/ledger"
)

// InMemorySummaryCache implements SummaryCache with a process-local map.
// Suitable for single-instance deployments and testing.
// WARNING: invalidations are not shared across process instances, which
// can serve stale summaries in distributed deployments.
type InMemorySummaryCache struct {
	mu      sync.RWMutex
	entries map[string]inMemoryEntry
}

type inMemoryEntry struct {
	summary   *appledger.CustomerLedgerSummary
	expiresAt time.Time
}

// NewInMemorySummaryCache creates a new in-memory summary cache
func NewInMemorySummaryCache() *InMemorySummaryCache {
	return &InMemorySummaryCache{
		entries: make(map[string]inMemoryEntry),
	}
}

func summaryKey(tenantID, customerID uuid.UUID) string {
	return tenantID.String() + ":" + customerID.String()
}

// Get returns the cached summary, or nil on a miss or expired entry
func (c *InMemorySummaryCache) Get(_ context.Context, tenantID, customerID uuid.UUID) (*appledger.CustomerLedgerSummary, error) {
	c.mu.RLock()
	entry, ok := c.entries[summaryKey(tenantID, customerID)]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, nil
	}
	return entry.summary, nil
}

// Set stores a summary with the given TTL
func (c *InMemorySummaryCache) Set(_ context.Context, tenantID, customerID uuid.UUID, summary *appledger.CustomerLedgerSummary, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[summaryKey(tenantID, customerID)] = inMemoryEntry{
		summary:   summary,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Invalidate removes a customer's cached summary
func (c *InMemorySummaryCache) Invalidate(_ context.Context, tenantID, customerID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, summaryKey(tenantID, customerID))
	return nil
}

// Ensure InMemorySummaryCache implements SummaryCache
var _ appledger.SummaryCache = (*InMemorySummaryCache)(nil)
