package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Batch size for one sweep pass. Bounded so a backlog of overdue
// invoices never holds a long transaction.
const overdueSweepBatchSize = 500

// OverdueSweepService flags open invoices whose due date has passed.
// Reads never mutate invoice status; this sweep is the only writer of
// the OVERDUE transition.
type OverdueSweepService struct {
	scope  TransactionScope
	cache  SummaryCache
	logger *zap.Logger
}

// NewOverdueSweepService creates a new OverdueSweepService
func NewOverdueSweepService(scope TransactionScope, cache SummaryCache, logger *zap.Logger) *OverdueSweepService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OverdueSweepService{
		scope:  scope,
		cache:  cache,
		logger: logger,
	}
}

// OverdueSweepStats contains statistics about one sweep pass
type OverdueSweepStats struct {
	TotalPastDue int       `json:"total_past_due"`
	Marked       int       `json:"marked"`
	Failed       int       `json:"failed"`
	ProcessedAt  time.Time `json:"processed_at"`
}

// MarkOverdueInvoices finds open invoices past their due date and
// marks them overdue, one transaction per invoice so a single conflict
// does not fail the whole pass
func (s *OverdueSweepService) MarkOverdueInvoices(ctx context.Context) (*OverdueSweepStats, error) {
	now := time.Now()
	stats := &OverdueSweepStats{
		ProcessedAt: now,
	}

	type pastDueRef struct {
		tenantID   uuid.UUID
		invoiceID  uuid.UUID
		customerID uuid.UUID
		number     string
	}
	var pastDue []pastDueRef
	err := s.scope.ExecuteReadOnly(ctx, func(repos TransactionalRepositories) error {
		invoices, err := repos.InvoiceRepo().FindDueBefore(ctx, now, overdueSweepBatchSize)
		if err != nil {
			return err
		}
		for _, inv := range invoices {
			pastDue = append(pastDue, pastDueRef{
				tenantID:   inv.TenantID,
				invoiceID:  inv.ID,
				customerID: inv.CustomerID,
				number:     inv.InvoiceNumber,
			})
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to find past-due invoices", zap.Error(err))
		return nil, err
	}

	stats.TotalPastDue = len(pastDue)
	if stats.TotalPastDue == 0 {
		s.logger.Debug("No past-due invoices found")
		return stats, nil
	}

	s.logger.Info("Found past-due invoices",
		zap.Int("count", stats.TotalPastDue),
	)

	touchedCustomers := make(map[uuid.UUID]uuid.UUID)
	for _, ref := range pastDue {
		if err := s.markOverdue(ctx, ref.tenantID, ref.invoiceID, now); err != nil {
			s.logger.Error("Failed to mark invoice overdue",
				zap.String("invoice_number", ref.number),
				zap.String("invoice_id", ref.invoiceID.String()),
				zap.Error(err),
			)
			stats.Failed++
			continue
		}
		touchedCustomers[ref.customerID] = ref.tenantID
		stats.Marked++
	}

	if s.cache != nil {
		for customerID, tenantID := range touchedCustomers {
			if err := s.cache.Invalidate(ctx, tenantID, customerID); err != nil {
				s.logger.Warn("summary cache invalidation failed",
					zap.String("customer_id", customerID.String()),
					zap.Error(err),
				)
			}
		}
	}

	s.logger.Info("Completed overdue sweep",
		zap.Int("total", stats.TotalPastDue),
		zap.Int("marked", stats.Marked),
		zap.Int("failed", stats.Failed),
	)

	return stats, nil
}

// markOverdue transitions a single invoice in its own transaction.
// The invoice is re-read under a row lock; a payment that settled it
// in the meantime makes the transition a no-op.
func (s *OverdueSweepService) markOverdue(ctx context.Context, tenantID, invoiceID uuid.UUID, now time.Time) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoice, err := repos.InvoiceRepo().FindByIDForUpdate(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return nil
		}
		if !invoice.IsPastDue(now) {
			// Settled or cancelled between the scan and this lock
			return nil
		}
		if err := invoice.MarkOverdue(now); err != nil {
			return err
		}
		if err := repos.InvoiceRepo().SaveWithLock(ctx, invoice); err != nil {
			return err
		}
		return drainEventsToOutbox(ctx, repos.OutboxRepo(), invoice)
	})
}

// Run runs the sweep on a fixed interval until the context is
// cancelled. A pass runs immediately on start.
func (s *OverdueSweepService) Run(ctx context.Context, interval time.Duration) {
	s.logger.Info("Starting overdue sweep loop",
		zap.Duration("interval", interval),
	)

	if _, err := s.MarkOverdueInvoices(ctx); err != nil {
		s.logger.Error("Overdue sweep failed", zap.Error(err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Stopping overdue sweep loop")
			return
		case <-ticker.C:
			if _, err := s.MarkOverdueInvoices(ctx); err != nil {
				s.logger.Error("Overdue sweep failed", zap.Error(err))
			}
		}
	}
}
