package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/papererp/backend/internal/domain/ledger"
	"github.com/papererp/backend/internal/domain/shared"
	"github.com/papererp/backend/internal/infrastructure/persistence/models"
)

// LedgerMetricsProvider answers the counting queries behind periodic
// gauge collection. Counts are cross-tenant.
type LedgerMetricsProvider struct {
	db *gorm.DB
}

// NewLedgerMetricsProvider creates a new LedgerMetricsProvider
func NewLedgerMetricsProvider(db *gorm.DB) *LedgerMetricsProvider {
	return &LedgerMetricsProvider{db: db}
}

// GetOverdueInvoiceCount returns the number of overdue invoices across all tenants
func (p *LedgerMetricsProvider) GetOverdueInvoiceCount(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("status = ?", ledger.InvoiceStatusOverdue).
		Count(&count).Error
	return count, err
}

// GetPendingOutboxCount returns the number of unsent outbox entries
func (p *LedgerMetricsProvider) GetPendingOutboxCount(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Model(&models.OutboxEntryModel{}).
		Where("status IN ?", []shared.OutboxStatus{shared.OutboxStatusPending, shared.OutboxStatusProcessing}).
		Count(&count).Error
	return count, err
}
