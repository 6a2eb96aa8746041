package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appledger "github.com/papererp/backend/internal/application/ledger"
)

func TestInMemorySummaryCache(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	customerID := uuid.New()

	summary := &appledger.CustomerLedgerSummary{
		CustomerID: customerID,
		NetBalance: decimal.NewFromInt(1350),
	}

	t.Run("miss returns nil", func(t *testing.T) {
		c := NewInMemorySummaryCache()

		got, err := c.Get(ctx, tenantID, customerID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("set then get", func(t *testing.T) {
		c := NewInMemorySummaryCache()
		require.NoError(t, c.Set(ctx, tenantID, customerID, summary, time.Minute))

		got, err := c.Get(ctx, tenantID, customerID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.NetBalance.Equal(decimal.NewFromInt(1350)))
	})

	t.Run("expired entry is a miss", func(t *testing.T) {
		c := NewInMemorySummaryCache()
		require.NoError(t, c.Set(ctx, tenantID, customerID, summary, -time.Second))

		got, err := c.Get(ctx, tenantID, customerID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("invalidate removes the entry", func(t *testing.T) {
		c := NewInMemorySummaryCache()
		require.NoError(t, c.Set(ctx, tenantID, customerID, summary, time.Minute))
		require.NoError(t, c.Invalidate(ctx, tenantID, customerID))

		got, err := c.Get(ctx, tenantID, customerID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("entries are scoped by tenant", func(t *testing.T) {
		c := NewInMemorySummaryCache()
		require.NoError(t, c.Set(ctx, tenantID, customerID, summary, time.Minute))

		got, err := c.Get(ctx, uuid.New(), customerID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
