package ledger

import (
	"context"

	"go.uber.org/zap"

	"github.com/papererp/backend/internal/domain/ledger"
	"github.com/papererp/backend/internal/domain/shared"
)

// AuditLogHandler writes a structured audit record for every ledger
// event dispatched from the outbox. Money movements carry the amounts
// before and after the change so the log alone reconstructs what
// happened to a balance.
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates a new AuditLogHandler
func NewAuditLogHandler(logger *zap.Logger) *AuditLogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditLogHandler{logger: logger}
}

// EventTypes returns an empty slice so the handler receives all events
func (h *AuditLogHandler) EventTypes() []string {
	return nil
}

// Handle writes one audit record for the event
func (h *AuditLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.String("tenant_id", event.TenantID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}

	switch e := event.(type) {
	case *ledger.PaymentRecordedEvent:
		fields = append(fields,
			zap.String("payment_number", e.PaymentNumber),
			zap.String("customer_id", e.CustomerID.String()),
			zap.String("method", string(e.Method)),
			zap.String("amount", e.Amount.StringFixed(2)),
			zap.String("allocated_amount", e.AllocatedAmount.StringFixed(2)),
			zap.String("credit_amount", e.CreditAmount.StringFixed(2)),
			zap.Int("application_count", len(e.Applications)),
		)
	case *ledger.InvoiceAmountAppliedEvent:
		fields = append(fields,
			zap.String("invoice_number", e.InvoiceNumber),
			zap.String("customer_id", e.CustomerID.String()),
			zap.String("kind", string(e.Kind)),
			zap.String("applied_amount", e.AppliedAmount.StringFixed(2)),
			zap.String("balance_before", e.Balance.Add(e.AppliedAmount).StringFixed(2)),
			zap.String("balance_after", e.Balance.StringFixed(2)),
			zap.String("status", string(e.Status)),
		)
	case *ledger.InvoiceIssuedEvent:
		fields = append(fields,
			zap.String("invoice_number", e.InvoiceNumber),
			zap.String("customer_id", e.CustomerID.String()),
			zap.String("total_amount", e.TotalAmount.StringFixed(2)),
		)
	case *ledger.InvoicePaidEvent:
		fields = append(fields,
			zap.String("invoice_number", e.InvoiceNumber),
			zap.String("customer_id", e.CustomerID.String()),
			zap.String("total_amount", e.TotalAmount.StringFixed(2)),
			zap.String("paid_amount", e.PaidAmount.StringFixed(2)),
			zap.String("credited_amount", e.CreditedAmount.StringFixed(2)),
		)
	case *ledger.InvoiceOverdueEvent:
		fields = append(fields,
			zap.String("invoice_number", e.InvoiceNumber),
			zap.String("customer_id", e.CustomerID.String()),
			zap.String("balance", e.Balance.StringFixed(2)),
			zap.Time("overdue_at", e.OverdueAt),
		)
	case *ledger.InvoiceCancelledEvent:
		fields = append(fields,
			zap.String("invoice_number", e.InvoiceNumber),
			zap.String("customer_id", e.CustomerID.String()),
			zap.String("total_amount", e.TotalAmount.StringFixed(2)),
			zap.String("cancel_reason", e.CancelReason),
		)
	case *ledger.CreditIssuedEvent:
		fields = append(fields,
			zap.String("credit_number", e.CreditNumber),
			zap.String("customer_id", e.CustomerID.String()),
			zap.String("amount", e.Amount.StringFixed(2)),
			zap.String("reason", string(e.Reason)),
		)
	case *ledger.CreditAppliedEvent:
		fields = append(fields,
			zap.String("credit_number", e.CreditNumber),
			zap.String("customer_id", e.CustomerID.String()),
			zap.String("invoice_number", e.InvoiceNumber),
			zap.String("applied_amount", e.AppliedAmount.StringFixed(2)),
			zap.String("available_before", e.AvailableAmount.Add(e.AppliedAmount).StringFixed(2)),
			zap.String("available_after", e.AvailableAmount.StringFixed(2)),
			zap.String("applied_by", e.AppliedBy.String()),
		)
	case *ledger.CreditVoidedEvent:
		fields = append(fields,
			zap.String("credit_number", e.CreditNumber),
			zap.String("customer_id", e.CustomerID.String()),
			zap.String("voided_amount", e.VoidedAmount.StringFixed(2)),
			zap.String("void_reason", e.VoidReason),
		)
	}

	h.logger.Info("ledger audit", fields...)
	return nil
}

// Ensure AuditLogHandler implements shared.EventHandler
var _ shared.EventHandler = (*AuditLogHandler)(nil)
