package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/papererp/backend/internal/domain/ledger"
	"github.com/papererp/backend/internal/domain/shared"
	"github.com/papererp/backend/internal/domain/shared/valueobject"
)

// AccountService imports per-customer opening balances at cutover
type AccountService struct {
	scope  TransactionScope
	cache  SummaryCache
	logger *zap.Logger
}

// NewAccountService creates a new AccountService
func NewAccountService(scope TransactionScope, cache SummaryCache, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		scope:  scope,
		cache:  cache,
		logger: logger,
	}
}

// ImportOpeningBalanceRequest represents a request to import an
// opening balance for one customer
type ImportOpeningBalanceRequest struct {
	CustomerID         uuid.UUID       `json:"customer_id" binding:"required"`
	CustomerName       string          `json:"customer_name" binding:"required"`
	OpeningBalance     decimal.Decimal `json:"opening_balance"`
	OpeningBalanceDate *time.Time      `json:"opening_balance_date,omitempty"` // Defaults to now
}

// LedgerAccountResponse represents a ledger account in API responses
type LedgerAccountResponse struct {
	ID                 uuid.UUID       `json:"id"`
	TenantID           uuid.UUID       `json:"tenant_id"`
	CustomerID         uuid.UUID       `json:"customer_id"`
	CustomerName       string          `json:"customer_name"`
	OpeningBalance     decimal.Decimal `json:"opening_balance"`
	OpeningBalanceDate time.Time       `json:"opening_balance_date"`
	CreatedAt          time.Time       `json:"created_at"`
}

// ImportOpeningBalance records the balance a customer carried into the
// system. One account per customer; a second import is rejected so
// cutover numbers cannot silently change.
func (s *AccountService) ImportOpeningBalance(ctx context.Context, tenantID uuid.UUID, req ImportOpeningBalanceRequest) (*LedgerAccountResponse, error) {
	balanceDate := time.Now()
	if req.OpeningBalanceDate != nil {
		balanceDate = *req.OpeningBalanceDate
	}

	var response *LedgerAccountResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		existing, err := repos.AccountRepo().FindByCustomer(ctx, tenantID, req.CustomerID)
		if err != nil {
			return err
		}
		if existing != nil {
			return shared.NewDomainError("ALREADY_IMPORTED", "Customer already has an opening balance")
		}

		account, err := ledger.NewLedgerAccount(
			tenantID,
			req.CustomerID,
			req.CustomerName,
			valueobject.NewMoneyUSD(req.OpeningBalance),
			balanceDate,
		)
		if err != nil {
			return err
		}
		if err := repos.AccountRepo().Save(ctx, account); err != nil {
			return err
		}

		response = toLedgerAccountResponse(account)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, tenantID, req.CustomerID); err != nil {
			s.logger.Warn("summary cache invalidation failed",
				zap.String("customer_id", req.CustomerID.String()),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("opening balance imported",
		zap.String("customer_id", req.CustomerID.String()),
		zap.String("opening_balance", response.OpeningBalance.StringFixed(2)),
	)

	return response, nil
}

// GetAccount gets the ledger account for a customer
func (s *AccountService) GetAccount(ctx context.Context, tenantID, customerID uuid.UUID) (*LedgerAccountResponse, error) {
	var response *LedgerAccountResponse
	err := s.scope.ExecuteReadOnly(ctx, func(repos TransactionalRepositories) error {
		account, err := repos.AccountRepo().FindByCustomer(ctx, tenantID, customerID)
		if err != nil {
			return err
		}
		if account == nil {
			return shared.NewDomainError("NOT_FOUND", "Ledger account not found")
		}
		response = toLedgerAccountResponse(account)
		return nil
	})
	return response, err
}

func toLedgerAccountResponse(a *ledger.LedgerAccount) *LedgerAccountResponse {
	return &LedgerAccountResponse{
		ID:                 a.ID,
		TenantID:           a.TenantID,
		CustomerID:         a.CustomerID,
		CustomerName:       a.CustomerName,
		OpeningBalance:     a.OpeningBalance,
		OpeningBalanceDate: a.OpeningBalanceDate,
		CreatedAt:          a.CreatedAt,
	}
}
