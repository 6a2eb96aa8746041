package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/papererp/backend/internal/domain/shared"
	"github.com/papererp/backend/internal/domain/shared/valueobject"
)

// InvoiceStatus represents the status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusOpen      InvoiceStatus = "OPEN"      // Issued, no amount applied yet
	InvoiceStatusPartial   InvoiceStatus = "PARTIAL"   // Partially settled, 0 < balance < total
	InvoiceStatusPaid      InvoiceStatus = "PAID"      // Fully settled, balance = 0
	InvoiceStatusOverdue   InvoiceStatus = "OVERDUE"   // Past due date with balance > 0
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED" // Cancelled before any application
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusOpen, InvoiceStatusPartial, InvoiceStatusPaid,
		InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the invoice is in a terminal state
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// IsOpen returns true if the invoice still carries an outstanding balance.
// OVERDUE counts as open for allocation purposes.
func (s InvoiceStatus) IsOpen() bool {
	return s == InvoiceStatusOpen || s == InvoiceStatusPartial || s == InvoiceStatusOverdue
}

// ApplicationKind distinguishes what settled part of an invoice balance
type ApplicationKind string

const (
	ApplicationKindPayment ApplicationKind = "PAYMENT"
	ApplicationKindCredit  ApplicationKind = "CREDIT"
)

// IsValid checks if the application kind is valid
func (k ApplicationKind) IsValid() bool {
	return k == ApplicationKindPayment || k == ApplicationKindCredit
}

// Invoice represents an invoice aggregate root.
// It tracks the remaining balance a customer owes for a single billing
// document. Creation belongs to the billing workflow; this aggregate
// owns balance movement and status transitions.
type Invoice struct {
	shared.TenantAggregateRoot
	InvoiceNumber  string          `json:"invoice_number"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	CustomerName   string          `json:"customer_name"`
	TotalAmount    decimal.Decimal `json:"total_amount"`    // Original amount due
	Balance        decimal.Decimal `json:"balance"`         // Remaining amount due
	PaidAmount     decimal.Decimal `json:"paid_amount"`     // Settled by payments
	CreditedAmount decimal.Decimal `json:"credited_amount"` // Settled by credits
	Status         InvoiceStatus   `json:"status"`
	IssueDate      time.Time       `json:"issue_date"`
	DueDate        *time.Time      `json:"due_date"` // Nil when no payment terms apply
	Remark         string          `json:"remark"`
	PaidAt         *time.Time      `json:"paid_at"`
	OverdueAt      *time.Time      `json:"overdue_at"`
	CancelledAt    *time.Time      `json:"cancelled_at"`
	CancelReason   string          `json:"cancel_reason"`
}

// NewInvoice creates a new invoice with its full amount outstanding
func NewInvoice(
	tenantID uuid.UUID,
	invoiceNumber string,
	customerID uuid.UUID,
	customerName string,
	totalAmount valueobject.Money,
	issueDate time.Time,
	dueDate *time.Time,
) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if len(invoiceNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if totalAmount.Amount().IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Total amount cannot be negative")
	}
	if issueDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_ISSUE_DATE", "Issue date is required")
	}
	if dueDate != nil && dueDate.Before(issueDate) {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be before issue date")
	}

	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		InvoiceNumber:       invoiceNumber,
		CustomerID:          customerID,
		CustomerName:        customerName,
		TotalAmount:         totalAmount.Amount(),
		Balance:             totalAmount.Amount(),
		PaidAmount:          decimal.Zero,
		CreditedAmount:      decimal.Zero,
		Status:              InvoiceStatusOpen,
		IssueDate:           issueDate,
		DueDate:             dueDate,
	}

	// A zero-total invoice has nothing to settle
	if inv.Balance.IsZero() {
		now := time.Now()
		inv.Status = InvoiceStatusPaid
		inv.PaidAt = &now
	}

	inv.AddDomainEvent(NewInvoiceIssuedEvent(inv))

	return inv, nil
}

// ApplyAmount settles part of the invoice balance with a payment or
// credit application. The balance never goes below zero.
func (inv *Invoice) ApplyAmount(amount valueobject.Money, kind ApplicationKind) error {
	if !inv.Status.IsOpen() {
		return shared.NewDomainError("INVOICE_NOT_APPLICABLE", fmt.Sprintf("Cannot apply amount to invoice in %s status", inv.Status))
	}
	if !kind.IsValid() {
		return shared.NewDomainError("INVALID_APPLICATION_KIND", "Application kind is not valid")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_ALLOCATION_AMOUNT", "Applied amount must be positive")
	}
	if amount.Amount().GreaterThan(inv.Balance) {
		return shared.NewDomainError("EXCEEDS_INVOICE_BALANCE", fmt.Sprintf("Applied amount %s exceeds invoice balance %s", amount.StringFixed(2), inv.Balance.StringFixed(2)))
	}

	inv.Balance = inv.Balance.Sub(amount.Amount())
	switch kind {
	case ApplicationKindPayment:
		inv.PaidAmount = inv.PaidAmount.Add(amount.Amount())
	case ApplicationKindCredit:
		inv.CreditedAmount = inv.CreditedAmount.Add(amount.Amount())
	}

	now := time.Now()
	if inv.Balance.IsZero() {
		inv.Status = InvoiceStatusPaid
		inv.PaidAt = &now
		inv.AddDomainEvent(NewInvoicePaidEvent(inv))
	} else if inv.Status != InvoiceStatusOverdue {
		// An overdue invoice stays overdue until fully settled
		inv.Status = InvoiceStatusPartial
	}

	inv.UpdatedAt = now
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceAmountAppliedEvent(inv, amount, kind))

	return nil
}

// Cancel cancels the invoice.
// Only invoices without any applied amount can be cancelled.
func (inv *Invoice) Cancel(reason string) error {
	if inv.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel invoice in %s status", inv.Status))
	}
	if inv.PaidAmount.GreaterThan(decimal.Zero) || inv.CreditedAmount.GreaterThan(decimal.Zero) {
		return shared.NewDomainError("HAS_APPLICATIONS", "Cannot cancel invoice with applied amounts")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	inv.Status = InvoiceStatusCancelled
	inv.Balance = decimal.Zero
	inv.CancelledAt = &now
	inv.CancelReason = reason
	inv.UpdatedAt = now
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceCancelledEvent(inv))

	return nil
}

// MarkOverdue flags the invoice as overdue when its due date has passed
// and a balance remains. Only the scheduled sweep calls this; reads
// never mutate status.
func (inv *Invoice) MarkOverdue(now time.Time) error {
	if inv.Status != InvoiceStatusOpen && inv.Status != InvoiceStatusPartial {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark invoice overdue in %s status", inv.Status))
	}
	if inv.DueDate == nil || !now.After(*inv.DueDate) {
		return shared.NewDomainError("NOT_PAST_DUE", "Invoice due date has not passed")
	}

	inv.Status = InvoiceStatusOverdue
	inv.OverdueAt = &now
	inv.UpdatedAt = now
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceOverdueEvent(inv))

	return nil
}

// GetTotalAmountMoney returns the total amount as Money
func (inv *Invoice) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(inv.TotalAmount)
}

// GetBalanceMoney returns the outstanding balance as Money
func (inv *Invoice) GetBalanceMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(inv.Balance)
}

// IsPastDue returns true if the invoice carries a due date in the past
// with a remaining balance
func (inv *Invoice) IsPastDue(now time.Time) bool {
	return inv.DueDate != nil && now.After(*inv.DueDate) && inv.Balance.GreaterThan(decimal.Zero) && inv.Status.IsOpen()
}

// DaysOverdue returns the number of whole days the invoice is past due
func (inv *Invoice) DaysOverdue(now time.Time) int {
	if inv.DueDate == nil || !now.After(*inv.DueDate) {
		return 0
	}
	return int(now.Sub(*inv.DueDate).Hours() / 24)
}
