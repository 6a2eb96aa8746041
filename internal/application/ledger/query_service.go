package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/papererp/backend/internal/domain/ledger"
	"github.com/papererp/backend/internal/domain/shared"
)

// How long a cached customer summary stays valid. Writers invalidate
// on every mutation, so the TTL only bounds staleness after a missed
// invalidation.
const summaryCacheTTL = 5 * time.Minute

// CustomerLedgerSummary is the point-in-time position of one customer
type CustomerLedgerSummary struct {
	CustomerID         uuid.UUID       `json:"customer_id"`
	OpeningBalance     decimal.Decimal `json:"opening_balance"`
	TotalInvoiced      decimal.Decimal `json:"total_invoiced"`
	TotalPaid          decimal.Decimal `json:"total_paid"`
	OpenInvoiceCount   int             `json:"open_invoice_count"`
	OpenInvoiceBalance decimal.Decimal `json:"open_invoice_balance"`
	OverdueCount       int             `json:"overdue_count"`
	OverdueBalance     decimal.Decimal `json:"overdue_balance"`
	AvailableCredit    decimal.Decimal `json:"available_credit"`
	// NetBalance is what the customer effectively owes: opening
	// balance plus open invoice balances minus usable credit
	NetBalance  decimal.Decimal `json:"net_balance"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// SummaryCache caches customer ledger summaries. Implementations must
// treat a miss as (nil, nil), not an error.
type SummaryCache interface {
	Get(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerLedgerSummary, error)
	Set(ctx context.Context, tenantID, customerID uuid.UUID, summary *CustomerLedgerSummary, ttl time.Duration) error
	Invalidate(ctx context.Context, tenantID, customerID uuid.UUID) error
}

// StatementEntryKind identifies what produced a statement entry
type StatementEntryKind string

const (
	StatementEntryInvoice StatementEntryKind = "INVOICE"
	StatementEntryPayment StatementEntryKind = "PAYMENT"
	StatementEntryCredit  StatementEntryKind = "CREDIT"
)

// StatementEntry is one line of a customer statement
type StatementEntry struct {
	Kind           StatementEntryKind `json:"kind"`
	DocumentID     uuid.UUID          `json:"document_id"`
	DocumentNumber string             `json:"document_number"`
	Date           time.Time          `json:"date"`
	Amount         decimal.Decimal    `json:"amount"`
	Status         string             `json:"status"`
	// Remaining is the open balance for invoices and the available
	// amount for credits; zero for payments
	Remaining decimal.Decimal `json:"remaining"`
}

// CustomerStatement bundles a customer's summary with recent activity
type CustomerStatement struct {
	Summary CustomerLedgerSummary `json:"summary"`
	Entries []StatementEntry      `json:"entries"`
}

// LedgerQueryService answers read-only questions about customer
// ledgers. All reads run in a repeatable-read snapshot so a statement
// never shows a payment without its invoice updates.
type LedgerQueryService struct {
	scope  TransactionScope
	cache  SummaryCache
	logger *zap.Logger
}

// LedgerQueryServiceOption is a functional option for configuring LedgerQueryService
type LedgerQueryServiceOption func(*LedgerQueryService)

// WithQuerySummaryCache wires a cache for customer summaries
func WithQuerySummaryCache(cache SummaryCache) LedgerQueryServiceOption {
	return func(s *LedgerQueryService) {
		s.cache = cache
	}
}

// NewLedgerQueryService creates a new LedgerQueryService
func NewLedgerQueryService(scope TransactionScope, logger *zap.Logger, opts ...LedgerQueryServiceOption) *LedgerQueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &LedgerQueryService{
		scope:  scope,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetSummary returns the customer's current ledger position, served
// from cache when a fresh copy exists
func (s *LedgerQueryService) GetSummary(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerLedgerSummary, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, tenantID, customerID)
		if err != nil {
			s.logger.Warn("summary cache read failed",
				zap.String("customer_id", customerID.String()),
				zap.Error(err),
			)
		} else if cached != nil {
			return cached, nil
		}
	}

	var summary *CustomerLedgerSummary
	err := s.scope.ExecuteReadOnly(ctx, func(repos TransactionalRepositories) error {
		computed, err := s.computeSummary(ctx, repos, tenantID, customerID)
		if err != nil {
			return err
		}
		summary = computed
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, tenantID, customerID, summary, summaryCacheTTL); err != nil {
			s.logger.Warn("summary cache write failed",
				zap.String("customer_id", customerID.String()),
				zap.Error(err),
			)
		}
	}

	return summary, nil
}

// GetStatement returns the customer's summary together with recent
// ledger activity, newest first. The filter's page size bounds the
// number of entries per document type before merging.
func (s *LedgerQueryService) GetStatement(ctx context.Context, tenantID, customerID uuid.UUID, filter shared.Filter) (*CustomerStatement, error) {
	var statement *CustomerStatement
	err := s.scope.ExecuteReadOnly(ctx, func(repos TransactionalRepositories) error {
		summary, err := s.computeSummary(ctx, repos, tenantID, customerID)
		if err != nil {
			return err
		}

		invoices, _, err := repos.InvoiceRepo().FindByCustomer(ctx, tenantID, customerID, filter)
		if err != nil {
			return err
		}
		payments, _, err := repos.PaymentRepo().FindByCustomer(ctx, tenantID, customerID, filter)
		if err != nil {
			return err
		}
		credits, _, err := repos.CreditRepo().FindByCustomer(ctx, tenantID, customerID, filter)
		if err != nil {
			return err
		}

		entries := make([]StatementEntry, 0, len(invoices)+len(payments)+len(credits))
		for _, inv := range invoices {
			entries = append(entries, StatementEntry{
				Kind:           StatementEntryInvoice,
				DocumentID:     inv.ID,
				DocumentNumber: inv.InvoiceNumber,
				Date:           inv.IssueDate,
				Amount:         inv.TotalAmount,
				Status:         inv.Status.String(),
				Remaining:      inv.Balance,
			})
		}
		for _, p := range payments {
			entries = append(entries, StatementEntry{
				Kind:           StatementEntryPayment,
				DocumentID:     p.ID,
				DocumentNumber: p.PaymentNumber,
				Date:           p.PaymentDate,
				Amount:         p.Amount,
				Status:         "RECORDED",
				Remaining:      decimal.Zero,
			})
		}
		for _, c := range credits {
			entries = append(entries, StatementEntry{
				Kind:           StatementEntryCredit,
				DocumentID:     c.ID,
				DocumentNumber: c.CreditNumber,
				Date:           c.CreatedAt,
				Amount:         c.Amount,
				Status:         c.Status.String(),
				Remaining:      c.AvailableAmount,
			})
		}
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Date.After(entries[j].Date)
		})

		statement = &CustomerStatement{
			Summary: *summary,
			Entries: entries,
		}
		return nil
	})
	return statement, err
}

func (s *LedgerQueryService) computeSummary(ctx context.Context, repos TransactionalRepositories, tenantID, customerID uuid.UUID) (*CustomerLedgerSummary, error) {
	openingBalance := decimal.Zero
	account, err := repos.AccountRepo().FindByCustomer(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	if account != nil {
		openingBalance = account.OpeningBalance
	}

	openInvoices, err := repos.InvoiceRepo().FindOpenByCustomer(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	openBalance := decimal.Zero
	overdueBalance := decimal.Zero
	overdueCount := 0
	for _, inv := range openInvoices {
		openBalance = openBalance.Add(inv.Balance)
		if inv.Status == ledger.InvoiceStatusOverdue {
			overdueBalance = overdueBalance.Add(inv.Balance)
			overdueCount++
		}
	}

	activeCredits, err := repos.CreditRepo().FindActiveByCustomer(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	availableCredit := decimal.Zero
	for _, c := range activeCredits {
		availableCredit = availableCredit.Add(c.AvailableAmount)
	}

	totalInvoiced, err := repos.InvoiceRepo().SumInvoicedByCustomer(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	totalPaid, err := repos.PaymentRepo().SumAllocatedByCustomer(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	return &CustomerLedgerSummary{
		CustomerID:         customerID,
		OpeningBalance:     openingBalance,
		TotalInvoiced:      totalInvoiced,
		TotalPaid:          totalPaid,
		OpenInvoiceCount:   len(openInvoices),
		OpenInvoiceBalance: openBalance,
		OverdueCount:       overdueCount,
		OverdueBalance:     overdueBalance,
		AvailableCredit:    availableCredit,
		NetBalance:         openingBalance.Add(openBalance).Sub(availableCredit),
		GeneratedAt:        time.Now(),
	}, nil
}
