package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/papererp/backend/internal/domain/ledger"
	"github.com/papererp/backend/internal/domain/shared"
	"github.com/papererp/backend/internal/domain/shared/valueobject"
)

type serviceFixture struct {
	env        *testEnv
	tenantID   uuid.UUID
	customerID uuid.UUID
	userID     uuid.UUID
}

func newServiceFixture() *serviceFixture {
	return &serviceFixture{
		env:        newTestEnv(),
		tenantID:   uuid.New(),
		customerID: uuid.New(),
		userID:     uuid.New(),
	}
}

func (f *serviceFixture) paymentService() *PaymentService {
	return NewPaymentService(
		f.env.scope,
		zap.NewNop(),
		WithPaymentNumberGenerator(f.env.numbers),
		WithPaymentSummaryCache(f.env.cache),
	)
}

func (f *serviceFixture) seedInvoice(t *testing.T, number string, total float64, dueDaysFromNow *int) *ledger.Invoice {
	t.Helper()
	var due *time.Time
	if dueDaysFromNow != nil {
		d := time.Now().AddDate(0, 0, *dueDaysFromNow)
		due = &d
	}
	inv, err := ledger.NewInvoice(
		f.tenantID,
		number,
		f.customerID,
		"Dunmore Paper Supply",
		valueobject.NewMoneyUSD(decimal.NewFromFloat(total)),
		time.Now().AddDate(0, 0, -30),
		due,
	)
	require.NoError(t, err)
	require.NoError(t, f.env.invoices.Save(context.Background(), inv))
	return inv
}

func daysFromNow(n int) *int { return &n }

func assertServiceError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

func TestPaymentService_RecordPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("spreads across open invoices oldest first", func(t *testing.T) {
		f := newServiceFixture()
		f.seedInvoice(t, "INV-B", 500, daysFromNow(10))
		f.seedInvoice(t, "INV-A", 300, daysFromNow(-5))

		result, err := f.paymentService().RecordPayment(ctx, f.tenantID, f.userID, RecordPaymentRequest{
			CustomerID:   f.customerID,
			CustomerName: "Dunmore Paper Supply",
			Amount:       decimal.NewFromInt(600),
			Method:       "BANK_TRANSFER",
		})
		require.NoError(t, err)

		require.Len(t, result.Payment.Applications, 2)
		assert.Equal(t, "INV-A", result.Payment.Applications[0].InvoiceNumber)
		assert.Equal(t, "INV-B", result.Payment.Applications[1].InvoiceNumber)
		assert.Nil(t, result.Credit)

		require.Len(t, result.UpdatedInvoices, 2)
		assert.Equal(t, "PAID", result.UpdatedInvoices[0].Status)
		assert.Equal(t, "PARTIAL", result.UpdatedInvoices[1].Status)
		assert.True(t, result.UpdatedInvoices[1].Balance.Equal(decimal.NewFromInt(200)))

		// Persisted state matches the response
		stored, err := f.env.payments.FindByIDForTenant(ctx, f.tenantID, result.Payment.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.True(t, stored.IsFullyAllocated())
	})

	t.Run("overpayment issues credit for the remainder", func(t *testing.T) {
		f := newServiceFixture()
		f.seedInvoice(t, "INV-A", 400, daysFromNow(5))

		result, err := f.paymentService().RecordPayment(ctx, f.tenantID, f.userID, RecordPaymentRequest{
			CustomerID:   f.customerID,
			CustomerName: "Dunmore Paper Supply",
			Amount:       decimal.NewFromInt(1000),
			Method:       "CHECK",
			Reference:    "CHK-4471",
		})
		require.NoError(t, err)

		require.NotNil(t, result.Credit)
		assert.True(t, result.Credit.AvailableAmount.Equal(decimal.NewFromInt(600)))
		assert.Equal(t, "OVERPAYMENT", result.Credit.Reason)
		require.NotNil(t, result.Payment.CreditID)
		assert.Equal(t, result.Credit.ID, *result.Payment.CreditID)

		stored, err := f.env.credits.FindByIDForTenant(ctx, f.tenantID, result.Credit.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, ledger.CreditStatusActive, stored.Status)
	})

	t.Run("no open invoices turns the payment into credit", func(t *testing.T) {
		f := newServiceFixture()

		result, err := f.paymentService().RecordPayment(ctx, f.tenantID, f.userID, RecordPaymentRequest{
			CustomerID:   f.customerID,
			CustomerName: "Dunmore Paper Supply",
			Amount:       decimal.NewFromInt(250),
			Method:       "CASH",
		})
		require.NoError(t, err)

		assert.Empty(t, result.UpdatedInvoices)
		require.NotNil(t, result.Credit)
		assert.True(t, result.Credit.Amount.Equal(decimal.NewFromInt(250)))
	})

	t.Run("targeted payment touches only the chosen invoice", func(t *testing.T) {
		f := newServiceFixture()
		older := f.seedInvoice(t, "INV-OLD", 400, daysFromNow(-10))
		chosen := f.seedInvoice(t, "INV-NEW", 300, daysFromNow(10))

		result, err := f.paymentService().RecordPayment(ctx, f.tenantID, f.userID, RecordPaymentRequest{
			CustomerID:      f.customerID,
			CustomerName:    "Dunmore Paper Supply",
			Amount:          decimal.NewFromInt(300),
			Method:          "BANK_TRANSFER",
			TargetInvoiceID: &chosen.ID,
		})
		require.NoError(t, err)

		require.Len(t, result.UpdatedInvoices, 1)
		assert.Equal(t, "INV-NEW", result.UpdatedInvoices[0].InvoiceNumber)
		assert.Equal(t, "PAID", result.UpdatedInvoices[0].Status)

		untouched, err := f.env.invoices.FindByIDForTenant(ctx, f.tenantID, older.ID)
		require.NoError(t, err)
		assert.Equal(t, ledger.InvoiceStatusOpen, untouched.Status)
		assert.True(t, untouched.Balance.Equal(decimal.NewFromInt(400)))
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		f := newServiceFixture()
		_, err := f.paymentService().RecordPayment(ctx, f.tenantID, f.userID, RecordPaymentRequest{
			CustomerID:   f.customerID,
			CustomerName: "Dunmore Paper Supply",
			Amount:       decimal.Zero,
			Method:       "CASH",
		})
		assertServiceError(t, err, "INVALID_PAYMENT_AMOUNT")
	})

	t.Run("unknown payment method rejected", func(t *testing.T) {
		f := newServiceFixture()
		_, err := f.paymentService().RecordPayment(ctx, f.tenantID, f.userID, RecordPaymentRequest{
			CustomerID:   f.customerID,
			CustomerName: "Dunmore Paper Supply",
			Amount:       decimal.NewFromInt(100),
			Method:       "BARTER",
		})
		assertServiceError(t, err, "INVALID_PAYMENT_METHOD")
	})

	t.Run("retries after a version conflict and succeeds", func(t *testing.T) {
		f := newServiceFixture()
		f.seedInvoice(t, "INV-A", 300, daysFromNow(5))
		f.env.invoices.conflicts = 1

		result, err := f.paymentService().RecordPayment(ctx, f.tenantID, f.userID, RecordPaymentRequest{
			CustomerID:   f.customerID,
			CustomerName: "Dunmore Paper Supply",
			Amount:       decimal.NewFromInt(300),
			Method:       "BANK_TRANSFER",
		})
		require.NoError(t, err)
		assert.Equal(t, "PAID", result.UpdatedInvoices[0].Status)

		// Only the successful attempt's payment is persisted
		payments, total, err := f.env.payments.FindByCustomer(ctx, f.tenantID, f.customerID, shared.DefaultFilter())
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		assert.True(t, payments[0].IsFullyAllocated())
	})

	t.Run("gives up after exhausting conflict retries", func(t *testing.T) {
		f := newServiceFixture()
		f.seedInvoice(t, "INV-A", 300, daysFromNow(5))
		f.env.invoices.conflicts = maxAllocationAttempts

		_, err := f.paymentService().RecordPayment(ctx, f.tenantID, f.userID, RecordPaymentRequest{
			CustomerID:   f.customerID,
			CustomerName: "Dunmore Paper Supply",
			Amount:       decimal.NewFromInt(300),
			Method:       "BANK_TRANSFER",
		})
		assertServiceError(t, err, "CONCURRENCY_CONFLICT")
	})

	t.Run("writes audit events to the outbox", func(t *testing.T) {
		f := newServiceFixture()
		f.seedInvoice(t, "INV-A", 400, daysFromNow(5))

		_, err := f.paymentService().RecordPayment(ctx, f.tenantID, f.userID, RecordPaymentRequest{
			CustomerID:   f.customerID,
			CustomerName: "Dunmore Paper Supply",
			Amount:       decimal.NewFromInt(1000),
			Method:       "BANK_TRANSFER",
		})
		require.NoError(t, err)

		types := f.env.outbox.eventTypes()
		assert.Contains(t, types, "PaymentRecorded")
		assert.Contains(t, types, "InvoicePaid")
		assert.Contains(t, types, "CreditIssued")
	})

	t.Run("invalidates the summary cache", func(t *testing.T) {
		f := newServiceFixture()
		f.seedInvoice(t, "INV-A", 400, daysFromNow(5))
		require.NoError(t, f.env.cache.Set(ctx, f.tenantID, f.customerID, &CustomerLedgerSummary{CustomerID: f.customerID}, time.Minute))

		_, err := f.paymentService().RecordPayment(ctx, f.tenantID, f.userID, RecordPaymentRequest{
			CustomerID:   f.customerID,
			CustomerName: "Dunmore Paper Supply",
			Amount:       decimal.NewFromInt(100),
			Method:       "CASH",
		})
		require.NoError(t, err)

		cached, err := f.env.cache.Get(ctx, f.tenantID, f.customerID)
		require.NoError(t, err)
		assert.Nil(t, cached)
	})
}

func TestPaymentService_GetPayment(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()
	f.seedInvoice(t, "INV-A", 100, daysFromNow(5))

	result, err := f.paymentService().RecordPayment(ctx, f.tenantID, f.userID, RecordPaymentRequest{
		CustomerID:   f.customerID,
		CustomerName: "Dunmore Paper Supply",
		Amount:       decimal.NewFromInt(100),
		Method:       "CASH",
	})
	require.NoError(t, err)

	t.Run("found", func(t *testing.T) {
		got, err := f.paymentService().GetPayment(ctx, f.tenantID, result.Payment.ID)
		require.NoError(t, err)
		assert.Equal(t, result.Payment.PaymentNumber, got.PaymentNumber)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := f.paymentService().GetPayment(ctx, f.tenantID, uuid.New())
		assertServiceError(t, err, "NOT_FOUND")
	})

	t.Run("wrong tenant", func(t *testing.T) {
		_, err := f.paymentService().GetPayment(ctx, uuid.New(), result.Payment.ID)
		assertServiceError(t, err, "NOT_FOUND")
	})
}
