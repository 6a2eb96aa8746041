package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/papererp/backend/internal/domain/shared"
)

// EventTypePaymentRecorded is the event type name for payment events
const EventTypePaymentRecorded = "PaymentRecorded"

// PaymentApplicationInfo summarizes one application inside a payment event
type PaymentApplicationInfo struct {
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Amount        decimal.Decimal `json:"amount"`
}

// PaymentRecordedEvent is raised once a payment and all of its
// applications have been settled atomically
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentID       uuid.UUID                `json:"payment_id"`
	PaymentNumber   string                   `json:"payment_number"`
	CustomerID      uuid.UUID                `json:"customer_id"`
	CustomerName    string                   `json:"customer_name"`
	Amount          decimal.Decimal          `json:"amount"`
	AllocatedAmount decimal.Decimal          `json:"allocated_amount"`
	CreditAmount    decimal.Decimal          `json:"credit_amount"`
	Method          PaymentMethod            `json:"method"`
	PaymentDate     time.Time                `json:"payment_date"`
	Applications    []PaymentApplicationInfo `json:"applications"`
	CreditID        *uuid.UUID               `json:"credit_id,omitempty"`
}

// EventType returns the event type name
func (e *PaymentRecordedEvent) EventType() string {
	return EventTypePaymentRecorded
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(p *Payment) *PaymentRecordedEvent {
	applications := make([]PaymentApplicationInfo, 0, len(p.Applications))
	for _, app := range p.Applications {
		applications = append(applications, PaymentApplicationInfo{
			InvoiceID:     app.InvoiceID,
			InvoiceNumber: app.InvoiceNumber,
			Amount:        app.Amount,
		})
	}
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, "Payment", p.ID, p.TenantID),
		PaymentID:       p.ID,
		PaymentNumber:   p.PaymentNumber,
		CustomerID:      p.CustomerID,
		CustomerName:    p.CustomerName,
		Amount:          p.Amount,
		AllocatedAmount: p.AllocatedAmount,
		CreditAmount:    p.CreditAmount,
		Method:          p.Method,
		PaymentDate:     p.PaymentDate,
		Applications:    applications,
		CreditID:        p.CreditID,
	}
}
