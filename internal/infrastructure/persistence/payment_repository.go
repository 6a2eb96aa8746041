package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/papererp/backend/internal/domain/ledger"
	"github.com/papererp/backend/internal/domain/shared"
	"github.com/papererp/backend/internal/infrastructure/persistence/models"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Save persists a payment together with its applications
func (r *GormPaymentRepository) Save(ctx context.Context, payment *ledger.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByIDForTenant finds a payment by ID for a specific tenant
func (r *GormPaymentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).
		Preload("Applications").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCustomer finds a customer's payments with pagination
func (r *GormPaymentRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, filter shared.Filter) ([]*ledger.Payment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PaymentModel{}).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var paymentModels []models.PaymentModel
	if err := query.
		Preload("Applications").
		Order("payment_date DESC, payment_number DESC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&paymentModels).Error; err != nil {
		return nil, 0, err
	}

	payments := make([]*ledger.Payment, len(paymentModels))
	for i := range paymentModels {
		payments[i] = paymentModels[i].ToDomain()
	}
	return payments, total, nil
}

// SumAllocatedByCustomer returns the lifetime sum of amounts applied to
// the customer's invoices
func (r *GormPaymentRepository) SumAllocatedByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(&models.PaymentModel{}).
		Select("COALESCE(SUM(allocated_amount), 0)").
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		Scan(&total).Error
	return total, err
}

// FindApplicationsByInvoice returns the payment applications recorded
// against an invoice, oldest first. Tenant scoping goes through the
// owning payment since application rows carry no tenant column.
func (r *GormPaymentRepository) FindApplicationsByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]ledger.PaymentApplication, error) {
	var appModels []models.PaymentApplicationModel
	if err := r.db.WithContext(ctx).Model(&models.PaymentApplicationModel{}).
		Joins("JOIN payments ON payments.id = payment_applications.payment_id").
		Where("payments.tenant_id = ? AND payment_applications.invoice_id = ?", tenantID, invoiceID).
		Order("payment_applications.applied_at ASC").
		Find(&appModels).Error; err != nil {
		return nil, err
	}

	applications := make([]ledger.PaymentApplication, len(appModels))
	for i := range appModels {
		applications[i] = *appModels[i].ToDomain()
	}
	return applications, nil
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ ledger.PaymentRepository = (*GormPaymentRepository)(nil)
