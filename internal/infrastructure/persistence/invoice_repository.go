package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/papererp/backend/internal/domain/ledger"
	"github.com/papererp/backend/internal/domain/shared"
	"github.com/papererp/backend/internal/infrastructure/persistence/models"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// Save persists a new invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *ledger.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	return r.db.WithContext(ctx).Create(model).Error
}

// SaveWithLock saves an existing invoice with optimistic locking
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *ledger.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	result := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("id = ? AND version = ?", invoice.ID, invoice.Version-1).
		Select("*").Omit("id", "created_at", "created_by", "tenant_id").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENCY_CONFLICT", "The invoice has been modified by another transaction")
	}
	return nil
}

// FindByIDForTenant finds an invoice by ID for a specific tenant
func (r *GormInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds an invoice by ID holding a row lock
func (r *GormInvoiceRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindOpenByCustomer finds the customer's invoices with an outstanding balance
func (r *GormInvoiceRepository) FindOpenByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]*ledger.Invoice, error) {
	return r.findOpenByCustomer(ctx, tenantID, customerID, false)
}

// FindOpenByCustomerForUpdate finds open invoices holding row locks
func (r *GormInvoiceRepository) FindOpenByCustomerForUpdate(ctx context.Context, tenantID, customerID uuid.UUID) ([]*ledger.Invoice, error) {
	return r.findOpenByCustomer(ctx, tenantID, customerID, true)
}

func (r *GormInvoiceRepository) findOpenByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, forUpdate bool) ([]*ledger.Invoice, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND customer_id = ? AND status IN ?", tenantID, customerID, openInvoiceStatuses()).
		Order("due_date ASC NULLS LAST, issue_date ASC, invoice_number ASC")
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var invoiceModels []models.InvoiceModel
	if err := query.Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return toDomainInvoices(invoiceModels), nil
}

// FindByCustomer finds all of a customer's invoices with pagination
func (r *GormInvoiceRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, filter shared.Filter) ([]*ledger.Invoice, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID)
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoiceModels []models.InvoiceModel
	if err := query.
		Order("issue_date DESC, invoice_number DESC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&invoiceModels).Error; err != nil {
		return nil, 0, err
	}
	return toDomainInvoices(invoiceModels), total, nil
}

// FindDueBefore finds open invoices past their due date across all tenants
func (r *GormInvoiceRepository) FindDueBefore(ctx context.Context, cutoff time.Time, limit int) ([]*ledger.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("status IN ? AND due_date IS NOT NULL AND due_date < ?",
			[]ledger.InvoiceStatus{ledger.InvoiceStatusOpen, ledger.InvoiceStatusPartial}, cutoff).
		Order("due_date ASC").
		Limit(limit).
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return toDomainInvoices(invoiceModels), nil
}

// ExistsByNumber reports whether an invoice number is taken within a tenant
func (r *GormInvoiceRepository) ExistsByNumber(ctx context.Context, tenantID uuid.UUID, invoiceNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("tenant_id = ? AND invoice_number = ?", tenantID, invoiceNumber).
		Count(&count).Error
	return count > 0, err
}

// SumInvoicedByCustomer returns the customer's lifetime invoiced total,
// cancelled invoices excluded
func (r *GormInvoiceRepository) SumInvoicedByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("tenant_id = ? AND customer_id = ? AND status <> ?", tenantID, customerID, ledger.InvoiceStatusCancelled).
		Scan(&total).Error
	return total, err
}

func openInvoiceStatuses() []ledger.InvoiceStatus {
	return []ledger.InvoiceStatus{
		ledger.InvoiceStatusOpen,
		ledger.InvoiceStatusPartial,
		ledger.InvoiceStatusOverdue,
	}
}

func toDomainInvoices(invoiceModels []models.InvoiceModel) []*ledger.Invoice {
	invoices := make([]*ledger.Invoice, len(invoiceModels))
	for i := range invoiceModels {
		invoices[i] = invoiceModels[i].ToDomain()
	}
	return invoices
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ ledger.InvoiceRepository = (*GormInvoiceRepository)(nil)
