package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/papererp/backend/internal/domain/shared"
)

// drainEventsToOutbox serializes the pending domain events of each
// aggregate into outbox entries and saves them through the given
// repository. Events are cleared from the aggregates afterwards so a
// retried transaction does not write them twice.
//
// Must be called inside the same transaction that persists the
// aggregates, otherwise the audit trail can diverge from state.
func drainEventsToOutbox(ctx context.Context, outboxRepo shared.OutboxRepository, aggregates ...shared.AggregateRoot) error {
	var entries []*shared.OutboxEntry
	for _, agg := range aggregates {
		if agg == nil {
			continue
		}
		for _, event := range agg.GetDomainEvents() {
			payload, err := json.Marshal(event)
			if err != nil {
				return fmt.Errorf("marshal event %s: %w", event.EventType(), err)
			}
			entries = append(entries, shared.NewOutboxEntry(event.TenantID(), event, payload))
		}
	}
	if len(entries) == 0 {
		return nil
	}
	if err := outboxRepo.Save(ctx, entries...); err != nil {
		return err
	}
	for _, agg := range aggregates {
		if agg != nil {
			agg.ClearDomainEvents()
		}
	}
	return nil
}
