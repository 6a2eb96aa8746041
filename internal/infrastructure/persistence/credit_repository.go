package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/papererp/backend/internal/domain/ledger"
	"github.com/papererp/backend/internal/domain/shared"
	"github.com/papererp/backend/internal/infrastructure/persistence/models"
)

// GormCreditRepository implements CreditRepository using GORM
type GormCreditRepository struct {
	db *gorm.DB
}

// NewGormCreditRepository creates a new GormCreditRepository
func NewGormCreditRepository(db *gorm.DB) *GormCreditRepository {
	return &GormCreditRepository{db: db}
}

// Save persists a new credit
func (r *GormCreditRepository) Save(ctx context.Context, credit *ledger.Credit) error {
	model := models.CreditModelFromDomain(credit)
	return r.db.WithContext(ctx).Create(model).Error
}

// SaveWithLock saves an existing credit with optimistic locking.
// Applications added during the transaction are upserted alongside the root.
func (r *GormCreditRepository) SaveWithLock(ctx context.Context, credit *ledger.Credit) error {
	model := models.CreditModelFromDomain(credit)
	result := r.db.WithContext(ctx).
		Model(&models.CreditModel{}).
		Where("id = ? AND version = ?", credit.ID, credit.Version-1).
		Select("*").Omit("id", "created_at", "created_by", "tenant_id").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENCY_CONFLICT", "The credit has been modified by another transaction")
	}

	if len(model.Applications) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Applications).Error
}

// FindByIDForTenant finds a credit by ID for a specific tenant
func (r *GormCreditRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Credit, error) {
	return r.findByID(ctx, tenantID, id, false)
}

// FindByIDForUpdate finds a credit by ID holding a row lock
func (r *GormCreditRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Credit, error) {
	return r.findByID(ctx, tenantID, id, true)
}

func (r *GormCreditRepository) findByID(ctx context.Context, tenantID, id uuid.UUID, forUpdate bool) (*ledger.Credit, error) {
	query := r.db.WithContext(ctx).
		Preload("Applications").
		Where("tenant_id = ? AND id = ?", tenantID, id)
	if forUpdate {
		// The lock applies to the credits row; applications are only
		// ever mutated through their root
		query = query.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "credits"}})
	}

	var model models.CreditModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCustomer finds a customer's credits with pagination
func (r *GormCreditRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, filter shared.Filter) ([]*ledger.Credit, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CreditModel{}).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID)
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var creditModels []models.CreditModel
	if err := query.
		Preload("Applications").
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&creditModels).Error; err != nil {
		return nil, 0, err
	}
	return toDomainCredits(creditModels), total, nil
}

// FindActiveByCustomer finds the customer's credits with a usable balance
func (r *GormCreditRepository) FindActiveByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]*ledger.Credit, error) {
	var creditModels []models.CreditModel
	if err := r.db.WithContext(ctx).
		Preload("Applications").
		Where("tenant_id = ? AND customer_id = ? AND status = ? AND available_amount > 0",
			tenantID, customerID, ledger.CreditStatusActive).
		Order("created_at ASC").
		Find(&creditModels).Error; err != nil {
		return nil, err
	}
	return toDomainCredits(creditModels), nil
}

// FindApplicationsByInvoice returns the credit applications recorded
// against an invoice, oldest first. Tenant scoping goes through the
// owning credit since application rows carry no tenant column.
func (r *GormCreditRepository) FindApplicationsByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]ledger.CreditApplication, error) {
	var appModels []models.CreditApplicationModel
	if err := r.db.WithContext(ctx).Model(&models.CreditApplicationModel{}).
		Joins("JOIN credits ON credits.id = credit_applications.credit_id").
		Where("credits.tenant_id = ? AND credit_applications.invoice_id = ?", tenantID, invoiceID).
		Order("credit_applications.applied_at ASC").
		Find(&appModels).Error; err != nil {
		return nil, err
	}

	applications := make([]ledger.CreditApplication, len(appModels))
	for i := range appModels {
		applications[i] = *appModels[i].ToDomain()
	}
	return applications, nil
}

func toDomainCredits(creditModels []models.CreditModel) []*ledger.Credit {
	credits := make([]*ledger.Credit, len(creditModels))
	for i := range creditModels {
		credits[i] = creditModels[i].ToDomain()
	}
	return credits
}

// Ensure GormCreditRepository implements CreditRepository
var _ ledger.CreditRepository = (*GormCreditRepository)(nil)
