package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/papererp/backend/internal/domain/shared"
	"github.com/papererp/backend/internal/domain/shared/valueobject"
)

// LedgerAccount holds per-customer ledger state that predates the
// engine: the opening balance imported at cutover. One row per
// customer per tenant.
type LedgerAccount struct {
	shared.TenantAggregateRoot
	CustomerID         uuid.UUID       `json:"customer_id"`
	CustomerName       string          `json:"customer_name"`
	OpeningBalance     decimal.Decimal `json:"opening_balance"`
	OpeningBalanceDate time.Time       `json:"opening_balance_date"`
}

// NewLedgerAccount creates a ledger account with an imported opening balance
func NewLedgerAccount(
	tenantID uuid.UUID,
	customerID uuid.UUID,
	customerName string,
	openingBalance valueobject.Money,
	openingBalanceDate time.Time,
) (*LedgerAccount, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if openingBalanceDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Opening balance date is required")
	}

	return &LedgerAccount{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CustomerID:          customerID,
		CustomerName:        customerName,
		OpeningBalance:      openingBalance.Amount(),
		OpeningBalanceDate:  openingBalanceDate,
	}, nil
}

// GetOpeningBalanceMoney returns the opening balance as Money
func (a *LedgerAccount) GetOpeningBalanceMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(a.OpeningBalance)
}
