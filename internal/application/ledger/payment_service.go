package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/papererp/backend/internal/domain/ledger"
	"github.com/papererp/backend/internal/domain/shared"
	"github.com/papererp/backend/internal/domain/shared/valueobject"
)

// Allocation transactions retry a bounded number of times when two
// writers race on the same customer's invoices.
const maxAllocationAttempts = 3

// PaymentService records customer payments and spreads them across
// open invoices
type PaymentService struct {
	scope         TransactionScope
	allocationSvc *ledger.AllocationService
	numbers       DocumentNumberGenerator
	cache         SummaryCache
	logger        *zap.Logger
}

// PaymentServiceOption is a functional option for configuring PaymentService
type PaymentServiceOption func(*PaymentService)

// WithPaymentNumberGenerator overrides the document number generator
func WithPaymentNumberGenerator(gen DocumentNumberGenerator) PaymentServiceOption {
	return func(s *PaymentService) {
		s.numbers = gen
	}
}

// WithPaymentSummaryCache wires a summary cache invalidated after each
// successful allocation
func WithPaymentSummaryCache(cache SummaryCache) PaymentServiceOption {
	return func(s *PaymentService) {
		s.cache = cache
	}
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(scope TransactionScope, logger *zap.Logger, opts ...PaymentServiceOption) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &PaymentService{
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

// RecordPaymentRequest represents a request to record a customer payment
type RecordPaymentRequest struct {
	CustomerID      uuid.UUID       `json:"customer_id" binding:"required"`
	CustomerName    string          `json:"customer_name" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Method          string          `json:"method" binding:"required"`
	PaymentDate     *time.Time      `json:"payment_date,omitempty"`
	Reference       string          `json:"reference,omitempty"`
	Remark          string          `json:"remark,omitempty"`
	TargetInvoiceID *uuid.UUID      `json:"target_invoice_id,omitempty"`
}

// PaymentApplicationResponse represents one payment-to-invoice application
type PaymentApplicationResponse struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Amount        decimal.Decimal `json:"amount"`
	AppliedAt     time.Time       `json:"applied_at"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID              uuid.UUID                    `json:"id"`
	TenantID        uuid.UUID                    `json:"tenant_id"`
	PaymentNumber   string                       `json:"payment_number"`
	CustomerID      uuid.UUID                    `json:"customer_id"`
	CustomerName    string                       `json:"customer_name"`
	Amount          decimal.Decimal              `json:"amount"`
	AllocatedAmount decimal.Decimal              `json:"allocated_amount"`
	CreditAmount    decimal.Decimal              `json:"credit_amount"`
	Method          string                       `json:"method"`
	PaymentDate     time.Time                    `json:"payment_date"`
	Reference       string                       `json:"reference,omitempty"`
	Remark          string                       `json:"remark,omitempty"`
	Applications    []PaymentApplicationResponse `json:"applications"`
	CreditID        *uuid.UUID                   `json:"credit_id,omitempty"`
	CreatedAt       time.Time                    `json:"created_at"`
	Version         int                          `json:"version"`
}

// RecordPaymentResult represents the outcome of recording a payment:
// the payment itself, every invoice it settled or reduced, and the
// overpayment credit when one was issued
type RecordPaymentResult struct {
	Payment         *PaymentResponse  `json:"payment"`
	UpdatedInvoices []InvoiceResponse `json:"updated_invoices"`
	Credit          *CreditResponse   `json:"credit,omitempty"`
}

// RecordPayment records a payment and allocates it across the
// customer's open invoices, oldest due date first, in a single
// transaction. When req.TargetInvoiceID is set only that invoice
// receives money. Any remainder is issued as an overpayment credit.
//
// Concurrent payments for the same customer serialize on invoice row
// locks; the operation retries on version conflicts before giving up.
func (s *PaymentService) RecordPayment(ctx context.Context, tenantID, recordedBy uuid.UUID, req RecordPaymentRequest) (*RecordPaymentResult, error) {
	paymentDate := time.Now()
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_PAYMENT_AMOUNT", "Payment amount must be positive")
	}
	amount := valueobject.NewMoneyUSD(req.Amount)

	var result *RecordPaymentResult
	var err error
	for attempt := 1; attempt <= maxAllocationAttempts; attempt++ {
		// Aggregates are rebuilt every attempt so a retry starts from
		// the freshly loaded invoice state, not the conflicted one.
		err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			payment, err := ledger.NewPayment(
				tenantID,
				s.numbers.Next(PaymentNumberPrefix),
				req.CustomerID,
				req.CustomerName,
				amount,
				ledger.PaymentMethod(req.Method),
				paymentDate,
				recordedBy,
			)
			if err != nil {
				return err
			}
			if err := payment.SetReference(req.Reference); err != nil {
				return err
			}
			payment.SetRemark(req.Remark)

			openInvoices, err := repos.InvoiceRepo().FindOpenByCustomerForUpdate(ctx, tenantID, req.CustomerID)
			if err != nil {
				return err
			}

			allocation, err := s.allocationSvc.AllocatePayment(payment, openInvoices, req.TargetInvoiceID, s.numbers.Next(CreditNumberPrefix))
			if err != nil {
				return err
			}

			if err := repos.PaymentRepo().Save(ctx, allocation.Payment); err != nil {
				return err
			}
			for _, inv := range allocation.Invoices {
				if err := repos.InvoiceRepo().SaveWithLock(ctx, inv); err != nil {
					return err
				}
			}
			if allocation.Credit != nil {
				if err := repos.CreditRepo().Save(ctx, allocation.Credit); err != nil {
					return err
				}
			}

			aggregates := make([]shared.AggregateRoot, 0, len(allocation.Invoices)+2)
			aggregates = append(aggregates, allocation.Payment)
			for _, inv := range allocation.Invoices {
				aggregates = append(aggregates, inv)
			}
			if allocation.Credit != nil {
				aggregates = append(aggregates, allocation.Credit)
			}
			if err := drainEventsToOutbox(ctx, repos.OutboxRepo(), aggregates...); err != nil {
				return err
			}

			result = toRecordPaymentResult(allocation)
			return nil
		})
		if err == nil {
			break
		}
		if !isConcurrencyConflict(err) || attempt == maxAllocationAttempts {
			return nil, err
		}
		s.logger.Warn("payment allocation conflicted, retrying",
			zap.String("customer_id", req.CustomerID.String()),
			zap.Int("attempt", attempt),
		)
	}
	if err != nil {
		return nil, err
	}

	s.invalidateSummary(ctx, tenantID, req.CustomerID)

	s.logger.Info("payment recorded",
		zap.String("payment_number", result.Payment.PaymentNumber),
		zap.String("customer_id", req.CustomerID.String()),
		zap.String("amount", result.Payment.Amount.StringFixed(2)),
		zap.Int("invoices_touched", len(result.UpdatedInvoices)),
		zap.Bool("credit_issued", result.Credit != nil),
	)

	return result, nil
}

// GetPayment gets a payment by ID
func (s *PaymentService) GetPayment(ctx context.Context, tenantID, id uuid.UUID) (*PaymentResponse, error) {
	var response *PaymentResponse
	err := s.scope.ExecuteReadOnly(ctx, func(repos TransactionalRepositories) error {
		payment, err := repos.PaymentRepo().FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if payment == nil {
			return shared.NewDomainError("NOT_FOUND", "Payment not found")
		}
		response = toPaymentResponse(payment)
		return nil
	})
	return response, err
}

// ListPayments lists a customer's payments with pagination
func (s *PaymentService) ListPayments(ctx context.Context, tenantID, customerID uuid.UUID, filter shared.Filter) ([]PaymentResponse, int64, error) {
	var responses []PaymentResponse
	var total int64
	err := s.scope.ExecuteReadOnly(ctx, func(repos TransactionalRepositories) error {
		payments, count, err := repos.PaymentRepo().FindByCustomer(ctx, tenantID, customerID, filter)
		if err != nil {
			return err
		}
		responses = make([]PaymentResponse, len(payments))
		for i, p := range payments {
			responses[i] = *toPaymentResponse(p)
		}
		total = count
		return nil
	})
	return responses, total, err
}

func (s *PaymentService) invalidateSummary(ctx context.Context, tenantID, customerID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, tenantID, customerID); err != nil {
		// Stale summaries expire on their own; a failed invalidation
		// is worth a log line, not a failed payment
		s.logger.Warn("summary cache invalidation failed",
			zap.String("customer_id", customerID.String()),
			zap.Error(err),
		)
	}
}

// isConcurrencyConflict reports whether err is an optimistic lock
// version conflict
func isConcurrencyConflict(err error) bool {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == "CONCURRENCY_CONFLICT"
	}
	return false
}

func toRecordPaymentResult(allocation *ledger.PaymentAllocation) *RecordPaymentResult {
	invoices := make([]InvoiceResponse, len(allocation.Invoices))
	for i, inv := range allocation.Invoices {
		invoices[i] = *toInvoiceResponse(inv)
	}
	result := &RecordPaymentResult{
		Payment:         toPaymentResponse(allocation.Payment),
		UpdatedInvoices: invoices,
	}
	if allocation.Credit != nil {
		result.Credit = toCreditResponse(allocation.Credit)
	}
	return result
}

func toPaymentResponse(p *ledger.Payment) *PaymentResponse {
	applications := make([]PaymentApplicationResponse, len(p.Applications))
	for i, app := range p.Applications {
		applications[i] = PaymentApplicationResponse{
			ID:            app.ID,
			InvoiceID:     app.InvoiceID,
			InvoiceNumber: app.InvoiceNumber,
			Amount:        app.Amount,
			AppliedAt:     app.AppliedAt,
		}
	}
	return &PaymentResponse{
		ID:              p.ID,
		TenantID:        p.TenantID,
		PaymentNumber:   p.PaymentNumber,
		CustomerID:      p.CustomerID,
		CustomerName:    p.CustomerName,
		Amount:          p.Amount,
		AllocatedAmount: p.AllocatedAmount,
		CreditAmount:    p.CreditAmount,
		Method:          p.Method.String(),
		PaymentDate:     p.PaymentDate,
		Reference:       p.Reference,
		Remark:          p.Remark,
		Applications:    applications,
		CreditID:        p.CreditID,
		CreatedAt:       p.CreatedAt,
		Version:         p.Version,
	}
}
