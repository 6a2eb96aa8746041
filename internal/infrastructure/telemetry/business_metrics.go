package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when a nil meter is passed to a metrics constructor
var ErrMeterNil = errors.New("meter cannot be nil")

// LedgerMetricsProvider provides ledger data for periodic metrics
// collection. The interface keeps the telemetry layer from depending on
// the ledger domain directly.
type LedgerMetricsProvider interface {
	// GetOverdueInvoiceCount returns the number of overdue invoices across all tenants
	GetOverdueInvoiceCount(ctx context.Context) (int64, error)
	// GetPendingOutboxCount returns the number of unsent outbox entries
	GetPendingOutboxCount(ctx context.Context) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	LedgerProvider  LedgerMetricsProvider
}

// BusinessMetrics provides business metrics for the ledger service.
// It tracks payment activity, credit movement, and overdue exposure.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	paymentRecordedTotal *Counter
	paymentAmountTotal   *Counter
	creditIssuedTotal    *Counter
	creditAppliedTotal   *Counter
	invoiceOverdueTotal  *Counter

	overdueInvoiceGauge *Gauge
	pendingOutboxGauge  *Gauge

	stopChan chan struct{}
	stopOnce sync.Once

	ledgerProvider LedgerMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:          cfg.Meter,
		logger:         logger,
		stopChan:       make(chan struct{}),
		ledgerProvider: cfg.LedgerProvider,
	}

	var err error

	bm.paymentRecordedTotal, err = NewCounter(
		cfg.Meter,
		"ledger_payment_recorded_total",
		"Total number of payments recorded",
		"{payments}",
	)
	if err != nil {
		return nil, err
	}

	bm.paymentAmountTotal, err = NewCounter(
		cfg.Meter,
		"ledger_payment_amount_total",
		"Total payment amount in cents",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	bm.creditIssuedTotal, err = NewCounter(
		cfg.Meter,
		"ledger_credit_issued_total",
		"Total number of credits issued",
		"{credits}",
	)
	if err != nil {
		return nil, err
	}

	bm.creditAppliedTotal, err = NewCounter(
		cfg.Meter,
		"ledger_credit_applied_total",
		"Total number of credit applications",
		"{applications}",
	)
	if err != nil {
		return nil, err
	}

	bm.invoiceOverdueTotal, err = NewCounter(
		cfg.Meter,
		"ledger_invoice_overdue_total",
		"Total number of invoices marked overdue",
		"{invoices}",
	)
	if err != nil {
		return nil, err
	}

	bm.overdueInvoiceGauge, err = NewGauge(
		cfg.Meter,
		"ledger_overdue_invoices",
		"Current number of overdue invoices",
		"{invoices}",
	)
	if err != nil {
		return nil, err
	}

	bm.pendingOutboxGauge, err = NewGauge(
		cfg.Meter,
		"ledger_outbox_pending",
		"Current number of unsent outbox entries",
		"{entries}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// RecordPayment records a payment with its method and amount
func (bm *BusinessMetrics) RecordPayment(ctx context.Context, tenantID, method string, amount decimal.Decimal) {
	bm.paymentRecordedTotal.Inc(ctx,
		AttrTenantID.String(tenantID),
		AttrPaymentMethod.String(method),
	)
	bm.paymentAmountTotal.Add(ctx, amount.Mul(decimal.NewFromInt(100)).IntPart(),
		AttrTenantID.String(tenantID),
		AttrPaymentMethod.String(method),
	)
}

// RecordCreditIssued records a credit issuance with its reason
func (bm *BusinessMetrics) RecordCreditIssued(ctx context.Context, tenantID, reason string) {
	bm.creditIssuedTotal.Inc(ctx,
		AttrTenantID.String(tenantID),
		AttrCreditReason.String(reason),
	)
}

// RecordCreditApplied records a credit application to an invoice
func (bm *BusinessMetrics) RecordCreditApplied(ctx context.Context, tenantID string) {
	bm.creditAppliedTotal.Inc(ctx, AttrTenantID.String(tenantID))
}

// RecordInvoiceOverdue records an invoice being marked overdue
func (bm *BusinessMetrics) RecordInvoiceOverdue(ctx context.Context, count int64) {
	bm.invoiceOverdueTotal.Add(ctx, count)
}

// StartPeriodicCollection starts a background goroutine that periodically
// records gauge metrics from the ledger provider. Call Stop to halt it.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	if bm.ledgerProvider == nil {
		bm.logger.Debug("no ledger metrics provider configured, skipping periodic collection")
		return
	}
	if interval == 0 {
		interval = 5 * time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-bm.stopChan:
				return
			case <-ticker.C:
				bm.collect(ctx)
			}
		}
	}()
}

// Stop halts periodic collection
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

func (bm *BusinessMetrics) collect(ctx context.Context) {
	overdue, err := bm.ledgerProvider.GetOverdueInvoiceCount(ctx)
	if err != nil {
		bm.logger.Warn("failed to collect overdue invoice count", zap.Error(err))
	} else {
		bm.overdueInvoiceGauge.Record(ctx, overdue)
	}

	pending, err := bm.ledgerProvider.GetPendingOutboxCount(ctx)
	if err != nil {
		bm.logger.Warn("failed to collect pending outbox count", zap.Error(err))
	} else {
		bm.pendingOutboxGauge.Record(ctx, pending)
	}
}
