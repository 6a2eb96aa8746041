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

// InvoiceService provides application-level invoice operations
type InvoiceService struct {
	scope   TransactionScope
	numbers DocumentNumberGenerator
	cache   SummaryCache
	logger  *zap.Logger
}

// InvoiceServiceOption is a functional option for configuring InvoiceService
type InvoiceServiceOption func(*InvoiceService)

// WithInvoiceNumberGenerator overrides the document number generator
func WithInvoiceNumberGenerator(gen DocumentNumberGenerator) InvoiceServiceOption {
	return func(s *InvoiceService) {
		s.numbers = gen
	}
}

// WithInvoiceSummaryCache wires a summary cache invalidated when
// invoices are created or cancelled
func WithInvoiceSummaryCache(cache SummaryCache) InvoiceServiceOption {
	return func(s *InvoiceService) {
		s.cache = cache
	}
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(scope TransactionScope, logger *zap.Logger, opts ...InvoiceServiceOption) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &InvoiceService{
		scope:   scope,
		numbers: NewUUIDNumberGenerator(),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInvoiceRequest represents a request to create an invoice
type CreateInvoiceRequest struct {
	InvoiceNumber string          `json:"invoice_number,omitempty"` // Generated when empty
	CustomerID    uuid.UUID       `json:"customer_id" binding:"required"`
	CustomerName  string          `json:"customer_name" binding:"required"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	IssueDate     *time.Time      `json:"issue_date,omitempty"` // Defaults to now
	DueDate       *time.Time      `json:"due_date,omitempty"`
	Remark        string          `json:"remark,omitempty"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID             uuid.UUID       `json:"id"`
	TenantID       uuid.UUID       `json:"tenant_id"`
	InvoiceNumber  string          `json:"invoice_number"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	CustomerName   string          `json:"customer_name"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Balance        decimal.Decimal `json:"balance"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	CreditedAmount decimal.Decimal `json:"credited_amount"`
	Status         string          `json:"status"`
	IssueDate      time.Time       `json:"issue_date"`
	DueDate        *time.Time      `json:"due_date,omitempty"`
	Remark         string          `json:"remark,omitempty"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
	OverdueAt      *time.Time      `json:"overdue_at,omitempty"`
	CancelledAt    *time.Time      `json:"cancelled_at,omitempty"`
	CancelReason   string          `json:"cancel_reason,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
	// Populated on detail reads only; list responses stay aggregate-level
	PaymentApplications []ledger.PaymentApplication `json:"payment_applications,omitempty"`
	CreditApplications  []ledger.CreditApplication  `json:"credit_applications,omitempty"`
}

// InvoiceListFilter defines filtering options for invoice list queries
type InvoiceListFilter struct {
	Status   string `form:"status"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// CreateInvoice creates a new invoice with its full amount outstanding.
// Invoice numbers must be unique within a tenant; one is generated when
// the request leaves it empty.
func (s *InvoiceService) CreateInvoice(ctx context.Context, tenantID uuid.UUID, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	number := req.InvoiceNumber
	if number == "" {
		number = s.numbers.Next(InvoiceNumberPrefix)
	}
	issueDate := time.Now()
	if req.IssueDate != nil {
		issueDate = *req.IssueDate
	}

	var response *InvoiceResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		taken, err := repos.InvoiceRepo().ExistsByNumber(ctx, tenantID, number)
		if err != nil {
			return err
		}
		if taken {
			return shared.NewDomainError("DUPLICATE_INVOICE_NUMBER", "Invoice number is already in use")
		}

		invoice, err := ledger.NewInvoice(
			tenantID,
			number,
			req.CustomerID,
			req.CustomerName,
			valueobject.NewMoneyUSD(req.TotalAmount),
			issueDate,
			req.DueDate,
		)
		if err != nil {
			return err
		}
		invoice.Remark = req.Remark

		if err := repos.InvoiceRepo().Save(ctx, invoice); err != nil {
			return err
		}
		if err := drainEventsToOutbox(ctx, repos.OutboxRepo(), invoice); err != nil {
			return err
		}

		response = toInvoiceResponse(invoice)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSummary(ctx, tenantID, req.CustomerID)

	s.logger.Info("invoice created",
		zap.String("invoice_number", response.InvoiceNumber),
		zap.String("customer_id", req.CustomerID.String()),
		zap.String("total_amount", response.TotalAmount.StringFixed(2)),
	)

	return response, nil
}

// CancelInvoice cancels an invoice that has no applied amounts
func (s *InvoiceService) CancelInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID, reason string) (*InvoiceResponse, error) {
	var response *InvoiceResponse
	var customerID uuid.UUID
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoice, err := repos.InvoiceRepo().FindByIDForUpdate(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return shared.NewDomainError("NOT_FOUND", "Invoice not found")
		}

		if err := invoice.Cancel(reason); err != nil {
			return err
		}
		if err := repos.InvoiceRepo().SaveWithLock(ctx, invoice); err != nil {
			return err
		}
		if err := drainEventsToOutbox(ctx, repos.OutboxRepo(), invoice); err != nil {
			return err
		}

		customerID = invoice.CustomerID
		response = toInvoiceResponse(invoice)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSummary(ctx, tenantID, customerID)

	return response, nil
}

// GetInvoice gets an invoice by ID together with the payment and
// credit applications that settled amounts against it
func (s *InvoiceService) GetInvoice(ctx context.Context, tenantID, id uuid.UUID) (*InvoiceResponse, error) {
	var response *InvoiceResponse
	err := s.scope.ExecuteReadOnly(ctx, func(repos TransactionalRepositories) error {
		invoice, err := repos.InvoiceRepo().FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if invoice == nil {
			return shared.NewDomainError("NOT_FOUND", "Invoice not found")
		}

		paymentApps, err := repos.PaymentRepo().FindApplicationsByInvoice(ctx, tenantID, id)
		if err != nil {
			return err
		}
		creditApps, err := repos.CreditRepo().FindApplicationsByInvoice(ctx, tenantID, id)
		if err != nil {
			return err
		}

		response = toInvoiceResponse(invoice)
		response.PaymentApplications = paymentApps
		response.CreditApplications = creditApps
		return nil
	})
	return response, err
}

// ListInvoices lists a customer's invoices with pagination
func (s *InvoiceService) ListInvoices(ctx context.Context, tenantID, customerID uuid.UUID, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.Status != "" {
		if !ledger.InvoiceStatus(filter.Status).IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Unknown invoice status filter")
		}
		domainFilter.Filters["status"] = filter.Status
	}

	var responses []InvoiceResponse
	var total int64
	err := s.scope.ExecuteReadOnly(ctx, func(repos TransactionalRepositories) error {
		invoices, count, err := repos.InvoiceRepo().FindByCustomer(ctx, tenantID, customerID, domainFilter)
		if err != nil {
			return err
		}
		responses = make([]InvoiceResponse, len(invoices))
		for i, inv := range invoices {
			responses[i] = *toInvoiceResponse(inv)
		}
		total = count
		return nil
	})
	return responses, total, err
}

func (s *InvoiceService) invalidateSummary(ctx context.Context, tenantID, customerID uuid.UUID) {
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

func toInvoiceResponse(inv *ledger.Invoice) *InvoiceResponse {
	return &InvoiceResponse{
		ID:             inv.ID,
		TenantID:       inv.TenantID,
		InvoiceNumber:  inv.InvoiceNumber,
		CustomerID:     inv.CustomerID,
		CustomerName:   inv.CustomerName,
		TotalAmount:    inv.TotalAmount,
		Balance:        inv.Balance,
		PaidAmount:     inv.PaidAmount,
		CreditedAmount: inv.CreditedAmount,
		Status:         inv.Status.String(),
		IssueDate:      inv.IssueDate,
		DueDate:        inv.DueDate,
		Remark:         inv.Remark,
		PaidAt:         inv.PaidAt,
		OverdueAt:      inv.OverdueAt,
		CancelledAt:    inv.CancelledAt,
		CancelReason:   inv.CancelReason,
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
		Version:        inv.Version,
	}
}
