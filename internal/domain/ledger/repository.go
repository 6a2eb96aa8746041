package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/papererp/backend/internal/domain/shared"
)

// InvoiceRepository defines persistence for invoices
type InvoiceRepository interface {
	// Save persists a new invoice
	Save(ctx context.Context, invoice *Invoice) error
	// SaveWithLock persists an existing invoice with an optimistic
	// version check, returning CONCURRENCY_CONFLICT on a stale version
	SaveWithLock(ctx context.Context, invoice *Invoice) error
	// FindByIDForTenant retrieves an invoice scoped to a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	// FindByIDForUpdate retrieves an invoice holding a row lock for the
	// duration of the surrounding transaction
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	// FindOpenByCustomer retrieves the customer's invoices with an
	// outstanding balance, ordered oldest due date first (undated last),
	// then issue date, then invoice number
	FindOpenByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]*Invoice, error)
	// FindOpenByCustomerForUpdate is FindOpenByCustomer holding row
	// locks, for use inside allocation transactions
	FindOpenByCustomerForUpdate(ctx context.Context, tenantID, customerID uuid.UUID) ([]*Invoice, error)
	// FindByCustomer retrieves all of a customer's invoices with pagination
	FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, filter shared.Filter) ([]*Invoice, int64, error)
	// FindDueBefore retrieves open invoices whose due date has passed,
	// across all tenants, for the overdue sweep
	FindDueBefore(ctx context.Context, cutoff time.Time, limit int) ([]*Invoice, error)
	// ExistsByNumber reports whether an invoice number is taken within a tenant
	ExistsByNumber(ctx context.Context, tenantID uuid.UUID, invoiceNumber string) (bool, error)
	// SumInvoicedByCustomer returns the lifetime invoiced total for a
	// customer, cancelled invoices excluded
	SumInvoicedByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (decimal.Decimal, error)
}

// PaymentRepository defines persistence for payments
type PaymentRepository interface {
	// Save persists a payment together with its applications
	Save(ctx context.Context, payment *Payment) error
	// FindByIDForTenant retrieves a payment scoped to a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Payment, error)
	// FindByCustomer retrieves a customer's payments with pagination
	FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, filter shared.Filter) ([]*Payment, int64, error)
	// SumAllocatedByCustomer returns the lifetime sum of payment
	// amounts applied to the customer's invoices
	SumAllocatedByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (decimal.Decimal, error)
	// FindApplicationsByInvoice retrieves the payment applications that
	// settled amounts against an invoice, oldest first
	FindApplicationsByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]PaymentApplication, error)
}

// CreditRepository defines persistence for customer credits
type CreditRepository interface {
	// Save persists a new credit
	Save(ctx context.Context, credit *Credit) error
	// SaveWithLock persists an existing credit with an optimistic
	// version check, returning CONCURRENCY_CONFLICT on a stale version
	SaveWithLock(ctx context.Context, credit *Credit) error
	// FindByIDForTenant retrieves a credit scoped to a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Credit, error)
	// FindByIDForUpdate retrieves a credit holding a row lock for the
	// duration of the surrounding transaction
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Credit, error)
	// FindByCustomer retrieves a customer's credits with pagination
	FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, filter shared.Filter) ([]*Credit, int64, error)
	// FindActiveByCustomer retrieves the customer's credits with a
	// usable balance
	FindActiveByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]*Credit, error)
	// FindApplicationsByInvoice retrieves the credit applications that
	// settled amounts against an invoice, oldest first
	FindApplicationsByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]CreditApplication, error)
}

// LedgerAccountRepository defines persistence for per-customer ledger accounts
type LedgerAccountRepository interface {
	// Save persists a ledger account
	Save(ctx context.Context, account *LedgerAccount) error
	// FindByCustomer retrieves the ledger account for a customer, or
	// nil when no opening balance was imported
	FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*LedgerAccount, error)
}
