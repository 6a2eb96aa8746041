package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/papererp/backend/internal/domain/shared"
	"github.com/papererp/backend/internal/domain/shared/valueobject"
)

// Event type names for invoice events
const (
	EventTypeInvoiceIssued        = "InvoiceIssued"
	EventTypeInvoiceAmountApplied = "InvoiceAmountApplied"
	EventTypeInvoicePaid          = "InvoicePaid"
	EventTypeInvoiceOverdue       = "InvoiceOverdue"
	EventTypeInvoiceCancelled     = "InvoiceCancelled"
)

// InvoiceIssuedEvent is raised when a new invoice is created
type InvoiceIssuedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	IssueDate     time.Time       `json:"issue_date"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
}

// EventType returns the event type name
func (e *InvoiceIssuedEvent) EventType() string {
	return EventTypeInvoiceIssued
}

// NewInvoiceIssuedEvent creates a new InvoiceIssuedEvent
func NewInvoiceIssuedEvent(inv *Invoice) *InvoiceIssuedEvent {
	return &InvoiceIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceIssued, "Invoice", inv.ID, inv.TenantID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		CustomerName:    inv.CustomerName,
		TotalAmount:     inv.TotalAmount,
		IssueDate:       inv.IssueDate,
		DueDate:         inv.DueDate,
	}
}

// InvoiceAmountAppliedEvent is raised when a payment or credit settles
// part of an invoice balance
type InvoiceAmountAppliedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	Kind          ApplicationKind `json:"kind"`
	AppliedAmount decimal.Decimal `json:"applied_amount"`
	Balance       decimal.Decimal `json:"balance"`
	Status        InvoiceStatus   `json:"status"`
}

// EventType returns the event type name
func (e *InvoiceAmountAppliedEvent) EventType() string {
	return EventTypeInvoiceAmountApplied
}

// NewInvoiceAmountAppliedEvent creates a new InvoiceAmountAppliedEvent
func NewInvoiceAmountAppliedEvent(inv *Invoice, amount valueobject.Money, kind ApplicationKind) *InvoiceAmountAppliedEvent {
	return &InvoiceAmountAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceAmountApplied, "Invoice", inv.ID, inv.TenantID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		Kind:            kind,
		AppliedAmount:   amount.Amount(),
		Balance:         inv.Balance,
		Status:          inv.Status,
	}
}

// InvoicePaidEvent is raised when an invoice is fully settled
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceID      uuid.UUID       `json:"invoice_id"`
	InvoiceNumber  string          `json:"invoice_number"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	CustomerName   string          `json:"customer_name"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	CreditedAmount decimal.Decimal `json:"credited_amount"`
	PaidAt         time.Time       `json:"paid_at"`
}

// EventType returns the event type name
func (e *InvoicePaidEvent) EventType() string {
	return EventTypeInvoicePaid
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(inv *Invoice) *InvoicePaidEvent {
	paidAt := time.Now()
	if inv.PaidAt != nil {
		paidAt = *inv.PaidAt
	}
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaid, "Invoice", inv.ID, inv.TenantID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		CustomerName:    inv.CustomerName,
		TotalAmount:     inv.TotalAmount,
		PaidAmount:      inv.PaidAmount,
		CreditedAmount:  inv.CreditedAmount,
		PaidAt:          paidAt,
	}
}

// InvoiceOverdueEvent is raised when the sweep flags an invoice overdue
type InvoiceOverdueEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	Balance       decimal.Decimal `json:"balance"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
	OverdueAt     time.Time       `json:"overdue_at"`
}

// EventType returns the event type name
func (e *InvoiceOverdueEvent) EventType() string {
	return EventTypeInvoiceOverdue
}

// NewInvoiceOverdueEvent creates a new InvoiceOverdueEvent
func NewInvoiceOverdueEvent(inv *Invoice) *InvoiceOverdueEvent {
	overdueAt := time.Now()
	if inv.OverdueAt != nil {
		overdueAt = *inv.OverdueAt
	}
	return &InvoiceOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceOverdue, "Invoice", inv.ID, inv.TenantID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		CustomerName:    inv.CustomerName,
		Balance:         inv.Balance,
		DueDate:         inv.DueDate,
		OverdueAt:       overdueAt,
	}
}

// InvoiceCancelledEvent is raised when an invoice is cancelled
type InvoiceCancelledEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	CancelReason  string          `json:"cancel_reason"`
	CancelledAt   time.Time       `json:"cancelled_at"`
}

// EventType returns the event type name
func (e *InvoiceCancelledEvent) EventType() string {
	return EventTypeInvoiceCancelled
}

// NewInvoiceCancelledEvent creates a new InvoiceCancelledEvent
func NewInvoiceCancelledEvent(inv *Invoice) *InvoiceCancelledEvent {
	cancelledAt := time.Now()
	if inv.CancelledAt != nil {
		cancelledAt = *inv.CancelledAt
	}
	return &InvoiceCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCancelled, "Invoice", inv.ID, inv.TenantID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		CustomerName:    inv.CustomerName,
		TotalAmount:     inv.TotalAmount,
		CancelReason:    inv.CancelReason,
		CancelledAt:     cancelledAt,
	}
}
