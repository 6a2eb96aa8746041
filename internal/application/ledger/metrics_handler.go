package ledger

import (
	"context"

	"go.uber.org/zap"

	"github.com/papererp/backend/internal/domain/ledger"
	"github.com/papererp/backend/internal/domain/shared"
	"github.com/papererp/backend/internal/infrastructure/telemetry"
)

// BusinessMetricsHandler increments allocation counters as ledger
// events come off the outbox, keeping metric collection out of the
// write path.
type BusinessMetricsHandler struct {
	metrics *telemetry.BusinessMetrics
	logger  *zap.Logger
}

// NewBusinessMetricsHandler creates a new BusinessMetricsHandler
func NewBusinessMetricsHandler(metrics *telemetry.BusinessMetrics, logger *zap.Logger) *BusinessMetricsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BusinessMetricsHandler{
		metrics: metrics,
		logger:  logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *BusinessMetricsHandler) EventTypes() []string {
	return []string{
		ledger.EventTypePaymentRecorded,
		ledger.EventTypeCreditIssued,
		ledger.EventTypeCreditApplied,
		ledger.EventTypeInvoiceOverdue,
	}
}

// Handle records the counter matching the event type
func (h *BusinessMetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *ledger.PaymentRecordedEvent:
		h.metrics.RecordPayment(ctx, e.TenantID().String(), string(e.Method), e.Amount)
	case *ledger.CreditIssuedEvent:
		h.metrics.RecordCreditIssued(ctx, e.TenantID().String(), string(e.Reason))
	case *ledger.CreditAppliedEvent:
		h.metrics.RecordCreditApplied(ctx, e.TenantID().String())
	case *ledger.InvoiceOverdueEvent:
		h.metrics.RecordInvoiceOverdue(ctx, 1)
	default:
		h.logger.Debug("no counter for event type",
			zap.String("event_type", event.EventType()),
		)
	}
	return nil
}

// Ensure BusinessMetricsHandler implements shared.EventHandler
var _ shared.EventHandler = (*BusinessMetricsHandler)(nil)
