package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/papererp/backend/internal/domain/shared"
)

func (f *serviceFixture) queryService() *LedgerQueryService {
	return NewLedgerQueryService(
		f.env.scope,
		zap.NewNop(),
		WithQuerySummaryCache(f.env.cache),
	)
}

func (f *serviceFixture) accountService() *AccountService {
	return NewAccountService(f.env.scope, f.env.cache, zap.NewNop())
}

func TestLedgerQueryService_GetSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("empty ledger", func(t *testing.T) {
		f := newServiceFixture()

		summary, err := f.queryService().GetSummary(ctx, f.tenantID, f.customerID)
		require.NoError(t, err)

		assert.True(t, summary.OpeningBalance.IsZero())
		assert.Zero(t, summary.OpenInvoiceCount)
		assert.True(t, summary.NetBalance.IsZero())
	})

	t.Run("combines opening balance, invoices, and credit", func(t *testing.T) {
		f := newServiceFixture()

		_, err := f.accountService().ImportOpeningBalance(ctx, f.tenantID, ImportOpeningBalanceRequest{
			CustomerID:     f.customerID,
			CustomerName:   "Dunmore Paper Supply",
			OpeningBalance: decimal.NewFromInt(1000),
		})
		require.NoError(t, err)
		f.seedInvoice(t, "INV-A", 300, daysFromNow(5))
		f.seedInvoice(t, "INV-B", 200, daysFromNow(10))
		f.seedCredit(t, 150)

		summary, err := f.queryService().GetSummary(ctx, f.tenantID, f.customerID)
		require.NoError(t, err)

		assert.True(t, summary.OpeningBalance.Equal(decimal.NewFromInt(1000)))
		assert.True(t, summary.TotalInvoiced.Equal(decimal.NewFromInt(500)))
		assert.True(t, summary.TotalPaid.IsZero())
		assert.Equal(t, 2, summary.OpenInvoiceCount)
		assert.True(t, summary.OpenInvoiceBalance.Equal(decimal.NewFromInt(500)))
		assert.True(t, summary.AvailableCredit.Equal(decimal.NewFromInt(150)))
		// 1000 + 500 - 150
		assert.True(t, summary.NetBalance.Equal(decimal.NewFromInt(1350)))
	})

	t.Run("served from cache on the second read", func(t *testing.T) {
		f := newServiceFixture()
		svc := f.queryService()

		first, err := svc.GetSummary(ctx, f.tenantID, f.customerID)
		require.NoError(t, err)

		// A write bypassing the services would not be visible until
		// the cache is invalidated or expires
		f.seedInvoice(t, "INV-A", 300, daysFromNow(5))

		second, err := svc.GetSummary(ctx, f.tenantID, f.customerID)
		require.NoError(t, err)
		assert.Equal(t, first.GeneratedAt, second.GeneratedAt)
		assert.Zero(t, second.OpenInvoiceCount)
	})

	t.Run("payment refreshes the summary", func(t *testing.T) {
		f := newServiceFixture()
		svc := f.queryService()
		f.seedInvoice(t, "INV-A", 300, daysFromNow(5))

		before, err := svc.GetSummary(ctx, f.tenantID, f.customerID)
		require.NoError(t, err)
		assert.Equal(t, 1, before.OpenInvoiceCount)

		_, err = f.paymentService().RecordPayment(ctx, f.tenantID, f.userID, RecordPaymentRequest{
			CustomerID:   f.customerID,
			CustomerName: "Dunmore Paper Supply",
			Amount:       decimal.NewFromInt(300),
			Method:       "CASH",
		})
		require.NoError(t, err)

		after, err := svc.GetSummary(ctx, f.tenantID, f.customerID)
		require.NoError(t, err)
		assert.Zero(t, after.OpenInvoiceCount)
		assert.True(t, after.TotalPaid.Equal(decimal.NewFromInt(300)))
		assert.True(t, after.NetBalance.IsZero())
	})
}

func TestLedgerQueryService_GetStatement(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()
	f.seedInvoice(t, "INV-A", 300, daysFromNow(5))

	_, err := f.paymentService().RecordPayment(ctx, f.tenantID, f.userID, RecordPaymentRequest{
		CustomerID:   f.customerID,
		CustomerName: "Dunmore Paper Supply",
		Amount:       decimal.NewFromInt(500),
		Method:       "BANK_TRANSFER",
	})
	require.NoError(t, err)

	statement, err := f.queryService().GetStatement(ctx, f.tenantID, f.customerID, shared.DefaultFilter())
	require.NoError(t, err)

	// Invoice, payment, and the overpayment credit
	require.Len(t, statement.Entries, 3)
	kinds := make(map[StatementEntryKind]int)
	for _, e := range statement.Entries {
		kinds[e.Kind]++
	}
	assert.Equal(t, 1, kinds[StatementEntryInvoice])
	assert.Equal(t, 1, kinds[StatementEntryPayment])
	assert.Equal(t, 1, kinds[StatementEntryCredit])

	for i := 1; i < len(statement.Entries); i++ {
		assert.False(t, statement.Entries[i].Date.After(statement.Entries[i-1].Date))
	}

	assert.Zero(t, statement.Summary.OpenInvoiceCount)
	assert.True(t, statement.Summary.AvailableCredit.Equal(decimal.NewFromInt(200)))
}

func TestAccountService_ImportOpeningBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("imports once", func(t *testing.T) {
		f := newServiceFixture()
		date := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

		account, err := f.accountService().ImportOpeningBalance(ctx, f.tenantID, ImportOpeningBalanceRequest{
			CustomerID:         f.customerID,
			CustomerName:       "Dunmore Paper Supply",
			OpeningBalance:     decimal.NewFromInt(2500),
			OpeningBalanceDate: &date,
		})
		require.NoError(t, err)
		assert.True(t, account.OpeningBalance.Equal(decimal.NewFromInt(2500)))
		assert.Equal(t, date, account.OpeningBalanceDate)
	})

	t.Run("second import rejected", func(t *testing.T) {
		f := newServiceFixture()
		svc := f.accountService()

		_, err := svc.ImportOpeningBalance(ctx, f.tenantID, ImportOpeningBalanceRequest{
			CustomerID:     f.customerID,
			CustomerName:   "Dunmore Paper Supply",
			OpeningBalance: decimal.NewFromInt(100),
		})
		require.NoError(t, err)

		_, err = svc.ImportOpeningBalance(ctx, f.tenantID, ImportOpeningBalanceRequest{
			CustomerID:     f.customerID,
			CustomerName:   "Dunmore Paper Supply",
			OpeningBalance: decimal.NewFromInt(999),
		})
		assertServiceError(t, err, "ALREADY_IMPORTED")
	})

	t.Run("unknown account not found", func(t *testing.T) {
		f := newServiceFixture()
		_, err := f.accountService().GetAccount(ctx, f.tenantID, f.customerID)
		assertServiceError(t, err, "NOT_FOUND")
	})
}
