package ledger

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/papererp/backend/internal/domain/shared"
	"github.com/papererp/backend/internal/domain/shared/valueobject"
)

// AllocationTarget represents an open invoice eligible for allocation
type AllocationTarget struct {
	InvoiceID     uuid.UUID       // ID of the invoice
	InvoiceNumber string          // Number for display and tie-breaking
	Balance       decimal.Decimal // Amount still outstanding
	DueDate       *time.Time      // Due date for oldest-first ordering
	IssueDate     time.Time       // Fallback ordering
}

// AllocationSlice represents one planned application of money to an invoice
type AllocationSlice struct {
	InvoiceID     uuid.UUID
	InvoiceNumber string
	Amount        decimal.Decimal
}

// AllocationPlan represents the complete outcome of an allocation strategy
type AllocationPlan struct {
	Slices          []AllocationSlice // Applications to make, in order
	TotalAllocated  decimal.Decimal   // Sum of all slices
	RemainingAmount decimal.Decimal   // Amount left unallocated
	FullySpread     bool              // True if nothing remains
	FullySettled    []uuid.UUID       // Invoices the plan settles completely
	PartiallyPaid   []uuid.UUID       // Invoices the plan settles partially
}

// AllocationStrategy decides how to spread an amount across open invoices
type AllocationStrategy interface {
	// Allocate calculates how to spread the given amount across targets.
	// The plan is deterministic for a fixed input and never exceeds any
	// target's balance.
	Allocate(amount valueobject.Money, targets []AllocationTarget) (*AllocationPlan, error)
}

// OldestFirstStrategy spreads money across the oldest obligations first:
// ascending due date with undated invoices last, then issue date, then
// invoice number as the final tie-break.
type OldestFirstStrategy struct{}

// NewOldestFirstStrategy creates a new oldest-first allocation strategy
func NewOldestFirstStrategy() *OldestFirstStrategy {
	return &OldestFirstStrategy{}
}

// Allocate spreads the amount across targets in oldest-first order
func (s *OldestFirstStrategy) Allocate(amount valueobject.Money, targets []AllocationTarget) (*AllocationPlan, error) {
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_PAYMENT_AMOUNT", "Allocation amount must be positive")
	}

	sorted := make([]AllocationTarget, len(targets))
	copy(sorted, targets)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].DueDate != nil && sorted[j].DueDate != nil {
			if !sorted[i].DueDate.Equal(*sorted[j].DueDate) {
				return sorted[i].DueDate.Before(*sorted[j].DueDate)
			}
		} else if sorted[i].DueDate != nil {
			return true // undated invoices sort last
		} else if sorted[j].DueDate != nil {
			return false
		}
		if !sorted[i].IssueDate.Equal(sorted[j].IssueDate) {
			return sorted[i].IssueDate.Before(sorted[j].IssueDate)
		}
		return sorted[i].InvoiceNumber < sorted[j].InvoiceNumber
	})

	return spread(amount.Amount(), sorted), nil
}

// TargetedStrategy allocates against a single caller-chosen invoice
type TargetedStrategy struct {
	invoiceID uuid.UUID
}

// NewTargetedStrategy creates a strategy that only allocates to the
// given invoice
func NewTargetedStrategy(invoiceID uuid.UUID) *TargetedStrategy {
	return &TargetedStrategy{invoiceID: invoiceID}
}

// Allocate applies as much as possible to the targeted invoice and
// leaves the rest unallocated
func (s *TargetedStrategy) Allocate(amount valueobject.Money, targets []AllocationTarget) (*AllocationPlan, error) {
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_PAYMENT_AMOUNT", "Allocation amount must be positive")
	}

	selected := make([]AllocationTarget, 0, 1)
	for _, t := range targets {
		if t.InvoiceID == s.invoiceID {
			selected = append(selected, t)
			break
		}
	}
	if len(selected) == 0 {
		return nil, shared.NewDomainError("INVOICE_NOT_APPLICABLE", "Targeted invoice is not open for allocation")
	}

	return spread(amount.Amount(), selected), nil
}

// spread walks targets in order applying min(remaining, balance) each
func spread(amount decimal.Decimal, targets []AllocationTarget) *AllocationPlan {
	slices := make([]AllocationSlice, 0)
	fullySettled := make([]uuid.UUID, 0)
	partiallyPaid := make([]uuid.UUID, 0)
	remaining := amount
	totalAllocated := decimal.Zero

	for _, target := range targets {
		if remaining.IsZero() {
			break
		}
		if target.Balance.LessThanOrEqual(decimal.Zero) {
			continue
		}

		slice := decimal.Min(remaining, target.Balance)

		slices = append(slices, AllocationSlice{
			InvoiceID:     target.InvoiceID,
			InvoiceNumber: target.InvoiceNumber,
			Amount:        slice,
		})

		totalAllocated = totalAllocated.Add(slice)
		remaining = remaining.Sub(slice)

		if slice.GreaterThanOrEqual(target.Balance) {
			fullySettled = append(fullySettled, target.InvoiceID)
		} else {
			partiallyPaid = append(partiallyPaid, target.InvoiceID)
		}
	}

	return &AllocationPlan{
		Slices:          slices,
		TotalAllocated:  totalAllocated,
		RemainingAmount: remaining,
		FullySpread:     remaining.IsZero(),
		FullySettled:    fullySettled,
		PartiallyPaid:   partiallyPaid,
	}
}

// TargetsFromInvoices converts open invoices into allocation targets,
// skipping anything without an outstanding balance
func TargetsFromInvoices(invoices []*Invoice) []AllocationTarget {
	targets := make([]AllocationTarget, 0, len(invoices))
	for _, inv := range invoices {
		if inv.Status.IsOpen() && inv.Balance.GreaterThan(decimal.Zero) {
			targets = append(targets, AllocationTarget{
				InvoiceID:     inv.ID,
				InvoiceNumber: inv.InvoiceNumber,
				Balance:       inv.Balance,
				DueDate:       inv.DueDate,
				IssueDate:     inv.IssueDate,
			})
		}
	}
	return targets
}
