package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/papererp/backend/internal/domain/ledger"
	"github.com/papererp/backend/internal/infrastructure/persistence/models"
)

// GormLedgerAccountRepository implements LedgerAccountRepository using GORM
type GormLedgerAccountRepository struct {
	db *gorm.DB
}

// NewGormLedgerAccountRepository creates a new GormLedgerAccountRepository
func NewGormLedgerAccountRepository(db *gorm.DB) *GormLedgerAccountRepository {
	return &GormLedgerAccountRepository{db: db}
}

// Save persists a ledger account
func (r *GormLedgerAccountRepository) Save(ctx context.Context, account *ledger.LedgerAccount) error {
	model := models.LedgerAccountModelFromDomain(account)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByCustomer finds the ledger account for a customer
func (r *GormLedgerAccountRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*ledger.LedgerAccount, error) {
	var model models.LedgerAccountModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Ensure GormLedgerAccountRepository implements LedgerAccountRepository
var _ ledger.LedgerAccountRepository = (*GormLedgerAccountRepository)(nil)
