package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/papererp/backend/internal/domain/shared"
)

// Event type names for credit events
const (
	EventTypeCreditIssued  = "CreditIssued"
	EventTypeCreditApplied = "CreditApplied"
	EventTypeCreditVoided  = "CreditVoided"
)

// CreditIssuedEvent is raised when a new credit is created
type CreditIssuedEvent struct {
	shared.BaseDomainEvent
	CreditID     uuid.UUID       `json:"credit_id"`
	CreditNumber string          `json:"credit_number"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Amount       decimal.Decimal `json:"amount"`
	Reason       CreditReason    `json:"reason"`
}

// EventType returns the event type name
func (e *CreditIssuedEvent) EventType() string {
	return EventTypeCreditIssued
}

// NewCreditIssuedEvent creates a new CreditIssuedEvent
func NewCreditIssuedEvent(c *Credit) *CreditIssuedEvent {
	return &CreditIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreditIssued, "Credit", c.ID, c.TenantID),
		CreditID:        c.ID,
		CreditNumber:    c.CreditNumber,
		CustomerID:      c.CustomerID,
		CustomerName:    c.CustomerName,
		Amount:          c.Amount,
		Reason:          c.Reason,
	}
}

// CreditAppliedEvent is raised when credit is consumed against an invoice
type CreditAppliedEvent struct {
	shared.BaseDomainEvent
	CreditID        uuid.UUID       `json:"credit_id"`
	CreditNumber    string          `json:"credit_number"`
	CustomerID      uuid.UUID       `json:"customer_id"`
	InvoiceID       uuid.UUID       `json:"invoice_id"`
	InvoiceNumber   string          `json:"invoice_number"`
	AppliedAmount   decimal.Decimal `json:"applied_amount"`
	AvailableAmount decimal.Decimal `json:"available_amount"`
	Status          CreditStatus    `json:"status"`
	AppliedBy       uuid.UUID       `json:"applied_by"`
}

// EventType returns the event type name
func (e *CreditAppliedEvent) EventType() string {
	return EventTypeCreditApplied
}

// NewCreditAppliedEvent creates a new CreditAppliedEvent
func NewCreditAppliedEvent(c *Credit, application *CreditApplication) *CreditAppliedEvent {
	return &CreditAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreditApplied, "Credit", c.ID, c.TenantID),
		CreditID:        c.ID,
		CreditNumber:    c.CreditNumber,
		CustomerID:      c.CustomerID,
		InvoiceID:       application.InvoiceID,
		InvoiceNumber:   application.InvoiceNumber,
		AppliedAmount:   application.Amount,
		AvailableAmount: c.AvailableAmount,
		Status:          c.Status,
		AppliedBy:       application.AppliedBy,
	}
}

// CreditVoidedEvent is raised when a credit is voided
type CreditVoidedEvent struct {
	shared.BaseDomainEvent
	CreditID     uuid.UUID       `json:"credit_id"`
	CreditNumber string          `json:"credit_number"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	VoidedAmount decimal.Decimal `json:"voided_amount"`
	VoidReason   string          `json:"void_reason"`
	VoidedAt     time.Time       `json:"voided_at"`
}

// EventType returns the event type name
func (e *CreditVoidedEvent) EventType() string {
	return EventTypeCreditVoided
}

// NewCreditVoidedEvent creates a new CreditVoidedEvent
func NewCreditVoidedEvent(c *Credit, voidedAmount decimal.Decimal) *CreditVoidedEvent {
	voidedAt := time.Now()
	if c.VoidedAt != nil {
		voidedAt = *c.VoidedAt
	}
	return &CreditVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreditVoided, "Credit", c.ID, c.TenantID),
		CreditID:        c.ID,
		CreditNumber:    c.CreditNumber,
		CustomerID:      c.CustomerID,
		VoidedAmount:    voidedAmount,
		VoidReason:      c.VoidReason,
		VoidedAt:        voidedAt,
	}
}
