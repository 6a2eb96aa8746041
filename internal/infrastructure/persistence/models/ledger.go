package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/papererp/backend/internal/domain/ledger"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
type InvoiceModel struct {
	TenantAggregateModel
	InvoiceNumber  string               `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_tenant_number,priority:2"`
	CustomerID     uuid.UUID            `gorm:"type:uuid;not null;index:idx_invoice_customer"`
	CustomerName   string               `gorm:"type:varchar(200);not null"`
	TotalAmount    decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Balance        decimal.Decimal      `gorm:"type:decimal(18,4);not null;index"`
	PaidAmount     decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	CreditedAmount decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Status         ledger.InvoiceStatus `gorm:"type:varchar(20);not null;default:'OPEN';index"`
	IssueDate      time.Time            `gorm:"not null"`
	DueDate        *time.Time           `gorm:"index"`
	Remark         string               `gorm:"type:text"`
	PaidAt         *time.Time
	OverdueAt      *time.Time
	CancelledAt    *time.Time
	CancelReason   string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice entity.
func (m *InvoiceModel) ToDomain() *ledger.Invoice {
	return &ledger.Invoice{
		TenantAggregateRoot: m.ToDomainRoot(),
		InvoiceNumber:       m.InvoiceNumber,
		CustomerID:          m.CustomerID,
		CustomerName:        m.CustomerName,
		TotalAmount:         m.TotalAmount,
		Balance:             m.Balance,
		PaidAmount:          m.PaidAmount,
		CreditedAmount:      m.CreditedAmount,
		Status:              m.Status,
		IssueDate:           m.IssueDate,
		DueDate:             m.DueDate,
		Remark:              m.Remark,
		PaidAt:              m.PaidAt,
		OverdueAt:           m.OverdueAt,
		CancelledAt:         m.CancelledAt,
		CancelReason:        m.CancelReason,
	}
}

// FromDomain populates the persistence model from a domain Invoice entity.
func (m *InvoiceModel) FromDomain(inv *ledger.Invoice) {
	m.FromDomainRoot(inv.TenantAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.CustomerID = inv.CustomerID
	m.CustomerName = inv.CustomerName
	m.TotalAmount = inv.TotalAmount
	m.Balance = inv.Balance
	m.PaidAmount = inv.PaidAmount
	m.CreditedAmount = inv.CreditedAmount
	m.Status = inv.Status
	m.IssueDate = inv.IssueDate
	m.DueDate = inv.DueDate
	m.Remark = inv.Remark
	m.PaidAt = inv.PaidAt
	m.OverdueAt = inv.OverdueAt
	m.CancelledAt = inv.CancelledAt
	m.CancelReason = inv.CancelReason
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *ledger.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// PaymentModel is the persistence model for the Payment aggregate root.
// Applications are stored in their own table and persisted with the root.
type PaymentModel struct {
	TenantAggregateModel
	PaymentNumber   string                    `gorm:"type:varchar(50);not null;uniqueIndex:idx_payment_tenant_number,priority:2"`
	CustomerID      uuid.UUID                 `gorm:"type:uuid;not null;index:idx_payment_customer"`
	CustomerName    string                    `gorm:"type:varchar(200);not null"`
	Amount          decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	AllocatedAmount decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	CreditAmount    decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	Method          ledger.PaymentMethod      `gorm:"type:varchar(20);not null"`
	PaymentDate     time.Time                 `gorm:"not null;index"`
	Reference       string                    `gorm:"type:varchar(100)"`
	Remark          string                    `gorm:"type:text"`
	Applications    []PaymentApplicationModel `gorm:"foreignKey:PaymentID;references:ID"`
	CreditID        *uuid.UUID                `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *ledger.Payment {
	p := &ledger.Payment{
		TenantAggregateRoot: m.ToDomainRoot(),
		PaymentNumber:       m.PaymentNumber,
		CustomerID:          m.CustomerID,
		CustomerName:        m.CustomerName,
		Amount:              m.Amount,
		AllocatedAmount:     m.AllocatedAmount,
		CreditAmount:        m.CreditAmount,
		Method:              m.Method,
		PaymentDate:         m.PaymentDate,
		Reference:           m.Reference,
		Remark:              m.Remark,
		Applications:        make([]ledger.PaymentApplication, len(m.Applications)),
		CreditID:            m.CreditID,
	}
	for i, app := range m.Applications {
		p.Applications[i] = *app.ToDomain()
	}
	return p
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *ledger.Payment) {
	m.FromDomainRoot(p.TenantAggregateRoot)
	m.PaymentNumber = p.PaymentNumber
	m.CustomerID = p.CustomerID
	m.CustomerName = p.CustomerName
	m.Amount = p.Amount
	m.AllocatedAmount = p.AllocatedAmount
	m.CreditAmount = p.CreditAmount
	m.Method = p.Method
	m.PaymentDate = p.PaymentDate
	m.Reference = p.Reference
	m.Remark = p.Remark
	m.CreditID = p.CreditID
	m.Applications = make([]PaymentApplicationModel, len(p.Applications))
	for i, app := range p.Applications {
		m.Applications[i] = *PaymentApplicationModelFromDomain(&app)
	}
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *ledger.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}

// PaymentApplicationModel is the persistence model for PaymentApplication.
type PaymentApplicationModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	PaymentID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceNumber string          `gorm:"type:varchar(50);not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AppliedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentApplicationModel) TableName() string {
	return "payment_applications"
}

// ToDomain converts the persistence model to a domain PaymentApplication.
func (m *PaymentApplicationModel) ToDomain() *ledger.PaymentApplication {
	return &ledger.PaymentApplication{
		ID:            m.ID,
		PaymentID:     m.PaymentID,
		InvoiceID:     m.InvoiceID,
		InvoiceNumber: m.InvoiceNumber,
		Amount:        m.Amount,
		AppliedAt:     m.AppliedAt,
	}
}

// PaymentApplicationModelFromDomain creates a new persistence model from domain.
func PaymentApplicationModelFromDomain(app *ledger.PaymentApplication) *PaymentApplicationModel {
	return &PaymentApplicationModel{
		ID:            app.ID,
		PaymentID:     app.PaymentID,
		InvoiceID:     app.InvoiceID,
		InvoiceNumber: app.InvoiceNumber,
		Amount:        app.Amount,
		AppliedAt:     app.AppliedAt,
	}
}

// CreditModel is the persistence model for the Credit aggregate root.
type CreditModel struct {
	TenantAggregateModel
	CreditNumber    string                   `gorm:"type:varchar(50);not null;uniqueIndex:idx_credit_tenant_number,priority:2"`
	CustomerID      uuid.UUID                `gorm:"type:uuid;not null;index:idx_credit_customer"`
	CustomerName    string                   `gorm:"type:varchar(200);not null"`
	Amount          decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	AvailableAmount decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	Reason          ledger.CreditReason      `gorm:"type:varchar(20);not null"`
	Description     string                   `gorm:"type:varchar(500)"`
	Status          ledger.CreditStatus      `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	SourcePaymentID *uuid.UUID               `gorm:"type:uuid"`
	Applications    []CreditApplicationModel `gorm:"foreignKey:CreditID;references:ID"`
	VoidedAt        *time.Time
	VoidedBy        *uuid.UUID `gorm:"type:uuid"`
	VoidReason      string     `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (CreditModel) TableName() string {
	return "credits"
}

// ToDomain converts the persistence model to a domain Credit entity.
func (m *CreditModel) ToDomain() *ledger.Credit {
	c := &ledger.Credit{
		TenantAggregateRoot: m.ToDomainRoot(),
		CreditNumber:        m.CreditNumber,
		CustomerID:          m.CustomerID,
		CustomerName:        m.CustomerName,
		Amount:              m.Amount,
		AvailableAmount:     m.AvailableAmount,
		Reason:              m.Reason,
		Description:         m.Description,
		Status:              m.Status,
		SourcePaymentID:     m.SourcePaymentID,
		Applications:        make([]ledger.CreditApplication, len(m.Applications)),
		VoidedAt:            m.VoidedAt,
		VoidedBy:            m.VoidedBy,
		VoidReason:          m.VoidReason,
	}
	for i, app := range m.Applications {
		c.Applications[i] = *app.ToDomain()
	}
	return c
}

// FromDomain populates the persistence model from a domain Credit entity.
func (m *CreditModel) FromDomain(c *ledger.Credit) {
	m.FromDomainRoot(c.TenantAggregateRoot)
	m.CreditNumber = c.CreditNumber
	m.CustomerID = c.CustomerID
	m.CustomerName = c.CustomerName
	m.Amount = c.Amount
	m.AvailableAmount = c.AvailableAmount
	m.Reason = c.Reason
	m.Description = c.Description
	m.Status = c.Status
	m.SourcePaymentID = c.SourcePaymentID
	m.VoidedAt = c.VoidedAt
	m.VoidedBy = c.VoidedBy
	m.VoidReason = c.VoidReason
	m.Applications = make([]CreditApplicationModel, len(c.Applications))
	for i, app := range c.Applications {
		m.Applications[i] = *CreditApplicationModelFromDomain(&app)
	}
}

// CreditModelFromDomain creates a new persistence model from a domain Credit.
func CreditModelFromDomain(c *ledger.Credit) *CreditModel {
	m := &CreditModel{}
	m.FromDomain(c)
	return m
}

// CreditApplicationModel is the persistence model for CreditApplication.
type CreditApplicationModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	CreditID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceNumber string          `gorm:"type:varchar(50);not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AppliedAt     time.Time       `gorm:"not null"`
	AppliedBy     uuid.UUID       `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (CreditApplicationModel) TableName() string {
	return "credit_applications"
}

// ToDomain converts the persistence model to a domain CreditApplication.
func (m *CreditApplicationModel) ToDomain() *ledger.CreditApplication {
	return &ledger.CreditApplication{
		ID:            m.ID,
		CreditID:      m.CreditID,
		InvoiceID:     m.InvoiceID,
		InvoiceNumber: m.InvoiceNumber,
		Amount:        m.Amount,
		AppliedAt:     m.AppliedAt,
		AppliedBy:     m.AppliedBy,
	}
}

// CreditApplicationModelFromDomain creates a new persistence model from domain.
func CreditApplicationModelFromDomain(app *ledger.CreditApplication) *CreditApplicationModel {
	return &CreditApplicationModel{
		ID:            app.ID,
		CreditID:      app.CreditID,
		InvoiceID:     app.InvoiceID,
		InvoiceNumber: app.InvoiceNumber,
		Amount:        app.Amount,
		AppliedAt:     app.AppliedAt,
		AppliedBy:     app.AppliedBy,
	}
}

// LedgerAccountModel is the persistence model for LedgerAccount.
type LedgerAccountModel struct {
	TenantAggregateModel
	CustomerID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_ledger_account_tenant_customer,priority:2"`
	CustomerName       string          `gorm:"type:varchar(200);not null"`
	OpeningBalance     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	OpeningBalanceDate time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LedgerAccountModel) TableName() string {
	return "ledger_accounts"
}

// ToDomain converts the persistence model to a domain LedgerAccount.
func (m *LedgerAccountModel) ToDomain() *ledger.LedgerAccount {
	return &ledger.LedgerAccount{
		TenantAggregateRoot: m.ToDomainRoot(),
		CustomerID:          m.CustomerID,
		CustomerName:        m.CustomerName,
		OpeningBalance:      m.OpeningBalance,
		OpeningBalanceDate:  m.OpeningBalanceDate,
	}
}

// LedgerAccountModelFromDomain creates a new persistence model from domain.
func LedgerAccountModelFromDomain(a *ledger.LedgerAccount) *LedgerAccountModel {
	m := &LedgerAccountModel{}
	m.FromDomainRoot(a.TenantAggregateRoot)
	m.CustomerID = a.CustomerID
	m.CustomerName = a.CustomerName
	m.OpeningBalance = a.OpeningBalance
	m.OpeningBalanceDate = a.OpeningBalanceDate
	return m
}
