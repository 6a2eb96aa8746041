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

// CreditService manages customer credits: manual issuance, explicit
// application against invoices, and voiding. Overpayment credits are
// issued by PaymentService as part of allocation.
type CreditService struct {
	scope         TransactionScope
	allocationSvc *ledger.AllocationService
	numbers       DocumentNumberGenerator
	cache         SummaryCache
	logger        *zap.Logger
}

// CreditServiceOption is a functional option for configuring CreditService
type CreditServiceOption func(*CreditService)

// WithCreditNumberGenerator overrides the document number generator
func WithCreditNumberGenerator(gen DocumentNumberGenerator) CreditServiceOption {
	return func(s *CreditService) {
		s.numbers = gen
	}
}

// WithCreditSummaryCache wires a summary cache invalidated after each
// credit mutation
func WithCreditSummaryCache(cache SummaryCache) CreditServiceOption {
	return func(s *CreditService) {
		s.cache = cache
	}
}

// NewCreditService creates a new CreditService
func NewCreditService(scope TransactionScope, logger *zap.Logger, opts ...CreditServiceOption) *CreditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &CreditService{
		scope:         scope,
		allocationSvc: ledger.NewAllocationService(),
		numbers:       NewUUIDNumberGenerator(),
		logger:        logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCreditRequest represents a request to issue a credit manually
type CreateCreditRequest struct {
	CustomerID   uuid.UUID       `json:"customer_id" binding:"required"`
	CustomerName string          `json:"customer_name" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	Reason       string          `json:"reason" binding:"required"` // RETURN, GOODWILL, ADJUSTMENT
	Description  string          `json:"description,omitempty"`
}

// ApplyCreditRequest represents a request to apply credit to an invoice
type ApplyCreditRequest struct {
	InvoiceID uuid.UUID       `json:"invoice_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
}

// VoidCreditRequest represents a request to void a credit
type VoidCreditRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CreditApplicationResponse represents one credit-to-invoice application
type CreditApplicationResponse struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Amount        decimal.Decimal `json:"amount"`
	AppliedAt     time.Time       `json:"applied_at"`
	AppliedBy     uuid.UUID       `json:"applied_by"`
}

// CreditResponse represents a customer credit in API responses
type CreditResponse struct {
	ID              uuid.UUID                   `json:"id"`
	TenantID        uuid.UUID                   `json:"tenant_id"`
	CreditNumber    string                      `json:"credit_number"`
	CustomerID      uuid.UUID                   `json:"customer_id"`
	CustomerName    string                      `json:"customer_name"`
	Amount          decimal.Decimal             `json:"amount"`
	AvailableAmount decimal.Decimal             `json:"available_amount"`
	Reason          string                      `json:"reason"`
	Description     string                      `json:"description,omitempty"`
	Status          string                      `json:"status"`
	SourcePaymentID *uuid.UUID                  `json:"source_payment_id,omitempty"`
	Applications    []CreditApplicationResponse `json:"applications"`
	VoidedAt        *time.Time                  `json:"voided_at,omitempty"`
	VoidReason      string                      `json:"void_reason,omitempty"`
	CreatedAt       time.Time                   `json:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at"`
	Version         int                         `json:"version"`
}

// ApplyCreditResult represents the outcome of applying credit to an invoice
type ApplyCreditResult struct {
	Credit  *CreditResponse  `json:"credit"`
	Invoice *InvoiceResponse `json:"invoice"`
}

// CreateCredit issues a credit manually. Overpayment is not a valid
// manual reason; those credits only come out of payment allocation.
func (s *CreditService) CreateCredit(ctx context.Context, tenantID, createdBy uuid.UUID, req CreateCreditRequest) (*CreditResponse, error) {
	reason := ledger.CreditReason(req.Reason)
	if reason == ledger.CreditReasonOverpayment {
		return nil, shared.NewDomainError("INVALID_CREDIT_REASON", "Overpayment credits are issued by payment allocation")
	}

	var response *CreditResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		credit, err := ledger.NewCredit(
			tenantID,
			s.numbers.Next(CreditNumberPrefix),
			req.CustomerID,
			req.CustomerName,
			valueobject.NewMoneyUSD(req.Amount),
			reason,
			req.Description,
			createdBy,
		)
		if err != nil {
			return err
		}

		if err := repos.CreditRepo().Save(ctx, credit); err != nil {
			return err
		}
		if err := drainEventsToOutbox(ctx, repos.OutboxRepo(), credit); err != nil {
			return err
		}

		response = toCreditResponse(credit)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSummary(ctx, tenantID, req.CustomerID)

	s.logger.Info("credit issued",
		zap.String("credit_number", response.CreditNumber),
		zap.String("customer_id", req.CustomerID.String()),
		zap.String("amount", response.Amount.StringFixed(2)),
		zap.String("reason", response.Reason),
	)

	return response, nil
}

// ApplyCredit consumes part of a credit against one invoice. Both
// aggregates are locked and updated in the same transaction; the
// operation retries on version conflicts.
func (s *CreditService) ApplyCredit(ctx context.Context, tenantID, creditID, appliedBy uuid.UUID, req ApplyCreditRequest) (*ApplyCreditResult, error) {
	var result *ApplyCreditResult
	var customerID uuid.UUID
	var err error
	for attempt := 1; attempt <= maxAllocationAttempts; attempt++ {
		err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			credit, err := repos.CreditRepo().FindByIDForUpdate(ctx, tenantID, creditID)
			if err != nil {
				return err
			}
			if credit == nil {
				return shared.NewDomainError("NOT_FOUND", "Credit not found")
			}
			invoice, err := repos.InvoiceRepo().FindByIDForUpdate(ctx, tenantID, req.InvoiceID)
			if err != nil {
				return err
			}
			if invoice == nil {
				return shared.NewDomainError("NOT_FOUND", "Invoice not found")
			}

			if err := s.allocationSvc.ApplyCredit(credit, invoice, valueobject.NewMoneyUSD(req.Amount), appliedBy); err != nil {
				return err
			}

			if err := repos.CreditRepo().SaveWithLock(ctx, credit); err != nil {
				return err
			}
			if err := repos.InvoiceRepo().SaveWithLock(ctx, invoice); err != nil {
				return err
			}
			if err := drainEventsToOutbox(ctx, repos.OutboxRepo(), credit, invoice); err != nil {
				return err
			}

			customerID = credit.CustomerID
			result = &ApplyCreditResult{
				Credit:  toCreditResponse(credit),
				Invoice: toInvoiceResponse(invoice),
			}
			return nil
		})
		if err == nil {
			break
		}
		if !isConcurrencyConflict(err) || attempt == maxAllocationAttempts {
			return nil, err
		}
		s.logger.Warn("credit application conflicted, retrying",
			zap.String("credit_id", creditID.String()),
			zap.Int("attempt", attempt),
		)
	}
	if err != nil {
		return nil, err
	}

	s.invalidateSummary(ctx, tenantID, customerID)

	return result, nil
}

// VoidCredit voids a credit, making its remaining balance unusable.
// Applications already made stay in effect.
func (s *CreditService) VoidCredit(ctx context.Context, tenantID, creditID, voidedBy uuid.UUID, req VoidCreditRequest) (*CreditResponse, error) {
	var response *CreditResponse
	var customerID uuid.UUID
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		credit, err := repos.CreditRepo().FindByIDForUpdate(ctx, tenantID, creditID)
		if err != nil {
			return err
		}
		if credit == nil {
			return shared.NewDomainError("NOT_FOUND", "Credit not found")
		}

		if err := credit.Void(req.Reason, voidedBy); err != nil {
			return err
		}
		if err := repos.CreditRepo().SaveWithLock(ctx, credit); err != nil {
			return err
		}
		if err := drainEventsToOutbox(ctx, repos.OutboxRepo(), credit); err != nil {
			return err
		}

		customerID = credit.CustomerID
		response = toCreditResponse(credit)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSummary(ctx, tenantID, customerID)

	s.logger.Info("credit voided",
		zap.String("credit_number", response.CreditNumber),
		zap.String("customer_id", customerID.String()),
	)

	return response, nil
}

// GetCredit gets a credit by ID
func (s *CreditService) GetCredit(ctx context.Context, tenantID, id uuid.UUID) (*CreditResponse, error) {
	var response *CreditResponse
	err := s.scope.ExecuteReadOnly(ctx, func(repos TransactionalRepositories) error {
		credit, err := repos.CreditRepo().FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if credit == nil {
			return shared.NewDomainError("NOT_FOUND", "Credit not found")
		}
		response = toCreditResponse(credit)
		return nil
	})
	return response, err
}

// ListCredits lists a customer's credits with pagination
func (s *CreditService) ListCredits(ctx context.Context, tenantID, customerID uuid.UUID, filter shared.Filter) ([]CreditResponse, int64, error) {
	var responses []CreditResponse
	var total int64
	err := s.scope.ExecuteReadOnly(ctx, func(repos TransactionalRepositories) error {
		credits, count, err := repos.CreditRepo().FindByCustomer(ctx, tenantID, customerID, filter)
		if err != nil {
			return err
		}
		responses = make([]CreditResponse, len(credits))
		for i, c := range credits {
			responses[i] = *toCreditResponse(c)
		}
		total = count
		return nil
	})
	return responses, total, err
}

func (s *CreditService) invalidateSummary(ctx context.Context, tenantID, customerID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, tenantID, customerID); err != nil {
		s.logger.Warn("summary cache invalidation failed",
			zap.String("customer_id", customerID.String()),
			zap.Error(err),
		)
	}
}

func toCreditResponse(c *ledger.Credit) *CreditResponse {
	applications := make([]CreditApplicationResponse, len(c.Applications))
	for i, app := range c.Applications {
		applications[i] = CreditApplicationResponse{
			ID:            app.ID,
			InvoiceID:     app.InvoiceID,
			InvoiceNumber: app.InvoiceNumber,
			Amount:        app.Amount,
			AppliedAt:     app.AppliedAt,
			AppliedBy:     app.AppliedBy,
		}
	}
	return &CreditResponse{
		ID:              c.ID,
		TenantID:        c.TenantID,
		CreditNumber:    c.CreditNumber,
		CustomerID:      c.CustomerID,
		CustomerName:    c.CustomerName,
		Amount:          c.Amount,
		AvailableAmount: c.AvailableAmount,
		Reason:          c.Reason.String(),
		Description:     c.Description,
		Status:          c.Status.String(),
		SourcePaymentID: c.SourcePaymentID,
		Applications:    applications,
		VoidedAt:        c.VoidedAt,
		VoidReason:      c.VoidReason,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
		Version:         c.Version,
	}
}
