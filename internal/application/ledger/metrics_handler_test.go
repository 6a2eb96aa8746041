package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/papererp/backend/internal/domain/ledger"
	"github.com/papererp/backend/internal/domain/shared"
	"github.com/papererp/backend/internal/infrastructure/telemetry"
)

func newTestBusinessMetrics(t *testing.T) *telemetry.BusinessMetrics {
	t.Helper()
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  noop.NewMeterProvider().Meter("test"),
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)
	return bm
}

func TestBusinessMetricsHandler_EventTypes(t *testing.T) {
	handler := NewBusinessMetricsHandler(newTestBusinessMetrics(t), zap.NewNop())

	assert.ElementsMatch(t, []string{
		ledger.EventTypePaymentRecorded,
		ledger.EventTypeCreditIssued,
		ledger.EventTypeCreditApplied,
		ledger.EventTypeInvoiceOverdue,
	}, handler.EventTypes())
}

func TestBusinessMetricsHandler_Handle(t *testing.T) {
	handler := NewBusinessMetricsHandler(newTestBusinessMetrics(t), zap.NewNop())
	ctx := context.Background()
	tenantID := uuid.New()

	events := []shared.DomainEvent{
		&ledger.PaymentRecordedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(ledger.EventTypePaymentRecorded, "Payment", uuid.New(), tenantID),
			Amount:          decimal.NewFromInt(500),
			Method:          ledger.PaymentMethodCash,
		},
		&ledger.CreditIssuedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(ledger.EventTypeCreditIssued, "Credit", uuid.New(), tenantID),
			Amount:          decimal.NewFromInt(100),
			Reason:          ledger.CreditReasonOverpayment,
		},
		&ledger.CreditAppliedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(ledger.EventTypeCreditApplied, "Credit", uuid.New(), tenantID),
			AppliedAmount:   decimal.NewFromInt(40),
		},
		&ledger.InvoiceOverdueEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(ledger.EventTypeInvoiceOverdue, "Invoice", uuid.New(), tenantID),
			Balance:         decimal.NewFromInt(250),
		},
	}

	for _, e := range events {
		require.NoError(t, handler.Handle(ctx, e))
	}
}

func TestBusinessMetricsHandler_IgnoresUnmatchedEvent(t *testing.T) {
	handler := NewBusinessMetricsHandler(newTestBusinessMetrics(t), zap.NewNop())

	e := &ledger.InvoiceIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(ledger.EventTypeInvoiceIssued, "Invoice", uuid.New(), uuid.New()),
		TotalAmount:     decimal.NewFromInt(300),
	}
	require.NoError(t, handler.Handle(context.Background(), e))
}
