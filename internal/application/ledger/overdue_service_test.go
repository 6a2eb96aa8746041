package ledger

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/papererp/backend/internal/domain/ledger"
)

func (f *serviceFixture) overdueService() *OverdueSweepService {
	return NewOverdueSweepService(f.env.scope, f.env.cache, zap.NewNop())
}

func TestOverdueSweepService_MarkOverdueInvoices(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing past due", func(t *testing.T) {
		f := newServiceFixture()
		f.seedInvoice(t, "INV-A", 100, daysFromNow(10))

		stats, err := f.overdueService().MarkOverdueInvoices(ctx)
		require.NoError(t, err)
		assert.Zero(t, stats.TotalPastDue)
		assert.Zero(t, stats.Marked)
	})

	t.Run("marks past-due invoices overdue", func(t *testing.T) {
		f := newServiceFixture()
		pastDue := f.seedInvoice(t, "INV-A", 100, daysFromNow(-3))
		current := f.seedInvoice(t, "INV-B", 200, daysFromNow(10))
		undated := f.seedInvoice(t, "INV-C", 300, nil)

		stats, err := f.overdueService().MarkOverdueInvoices(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.TotalPastDue)
		assert.Equal(t, 1, stats.Marked)
		assert.Zero(t, stats.Failed)

		marked, err := f.env.invoices.FindByIDForTenant(ctx, f.tenantID, pastDue.ID)
		require.NoError(t, err)
		assert.Equal(t, ledger.InvoiceStatusOverdue, marked.Status)
		assert.NotNil(t, marked.OverdueAt)

		for _, untouched := range []*ledger.Invoice{current, undated} {
			inv, err := f.env.invoices.FindByIDForTenant(ctx, f.tenantID, untouched.ID)
			require.NoError(t, err)
			assert.Equal(t, ledger.InvoiceStatusOpen, inv.Status)
		}

		assert.Contains(t, f.env.outbox.eventTypes(), "InvoiceOverdue")
	})

	t.Run("second sweep is a no-op", func(t *testing.T) {
		f := newServiceFixture()
		f.seedInvoice(t, "INV-A", 100, daysFromNow(-3))
		svc := f.overdueService()

		first, err := svc.MarkOverdueInvoices(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, first.Marked)

		second, err := svc.MarkOverdueInvoices(ctx)
		require.NoError(t, err)
		assert.Zero(t, second.TotalPastDue)
	})

	t.Run("overdue invoice still receives payment and settles", func(t *testing.T) {
		f := newServiceFixture()
		pastDue := f.seedInvoice(t, "INV-A", 100, daysFromNow(-3))

		_, err := f.overdueService().MarkOverdueInvoices(ctx)
		require.NoError(t, err)

		// Partial payment leaves the invoice overdue
		_, err = f.paymentService().RecordPayment(ctx, f.tenantID, f.userID, RecordPaymentRequest{
			CustomerID:   f.customerID,
			CustomerName: "Dunmore Paper Supply",
			Amount:       decimal.NewFromInt(40),
			Method:       "CASH",
		})
		require.NoError(t, err)
		inv, err := f.env.invoices.FindByIDForTenant(ctx, f.tenantID, pastDue.ID)
		require.NoError(t, err)
		assert.Equal(t, ledger.InvoiceStatusOverdue, inv.Status)

		// Full settlement flips it to paid
		_, err = f.paymentService().RecordPayment(ctx, f.tenantID, f.userID, RecordPaymentRequest{
			CustomerID:   f.customerID,
			CustomerName: "Dunmore Paper Supply",
			Amount:       decimal.NewFromInt(60),
			Method:       "CASH",
		})
		require.NoError(t, err)
		inv, err = f.env.invoices.FindByIDForTenant(ctx, f.tenantID, pastDue.ID)
		require.NoError(t, err)
		assert.Equal(t, ledger.InvoiceStatusPaid, inv.Status)
	})

	t.Run("invalidates summaries of touched customers", func(t *testing.T) {
		f := newServiceFixture()
		f.seedInvoice(t, "INV-A", 100, daysFromNow(-3))
		require.NoError(t, f.env.cache.Set(ctx, f.tenantID, f.customerID, &CustomerLedgerSummary{CustomerID: f.customerID}, 0))

		_, err := f.overdueService().MarkOverdueInvoices(ctx)
		require.NoError(t, err)

		cached, err := f.env.cache.Get(ctx, f.tenantID, f.customerID)
		require.NoError(t, err)
		assert.Nil(t, cached)
	})
}
