package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/papererp/backend/internal/domain/shared"
	"github.com/papererp/backend/internal/domain/shared/valueobject"
)

// PaymentMethod represents the method of payment
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCheck        PaymentMethod = "CHECK"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCheck,
		PaymentMethodCard, PaymentMethodOther:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// PaymentApplication represents the application of a payment to an invoice
type PaymentApplication struct {
	ID            uuid.UUID       `json:"id"`
	PaymentID     uuid.UUID       `json:"payment_id"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"` // Denormalized for display
	Amount        decimal.Decimal `json:"amount"`
	AppliedAt     time.Time       `json:"applied_at"`
}

// NewPaymentApplication creates a new payment application
func NewPaymentApplication(paymentID, invoiceID uuid.UUID, invoiceNumber string, amount valueobject.Money) *PaymentApplication {
	return &PaymentApplication{
		ID:            uuid.New(),
		PaymentID:     paymentID,
		InvoiceID:     invoiceID,
		InvoiceNumber: invoiceNumber,
		Amount:        amount.Amount(),
		AppliedAt:     time.Now(),
	}
}

// GetAmountMoney returns the amount as Money value object
func (a *PaymentApplication) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(a.Amount)
}

// Payment represents a payment aggregate root.
// It records money received from a customer together with how that
// money was spread across invoices. Once fully allocated a payment is
// immutable; corrections go through new credits, never edits.
type Payment struct {
	shared.TenantAggregateRoot
	PaymentNumber   string               `json:"payment_number"`
	CustomerID      uuid.UUID            `json:"customer_id"`
	CustomerName    string               `json:"customer_name"`
	Amount          decimal.Decimal      `json:"amount"`           // Total received
	AllocatedAmount decimal.Decimal      `json:"allocated_amount"` // Spread across invoices
	CreditAmount    decimal.Decimal      `json:"credit_amount"`    // Remainder issued as credit
	Method          PaymentMethod        `json:"method"`
	PaymentDate     time.Time            `json:"payment_date"`
	Reference       string               `json:"reference"` // Bank transaction, check number
	Remark          string               `json:"remark"`
	Applications    []PaymentApplication `json:"applications"`
	CreditID        *uuid.UUID           `json:"credit_id"` // Credit issued for the remainder, if any
}

// NewPayment creates a new payment with no allocations yet
func NewPayment(
	tenantID uuid.UUID,
	paymentNumber string,
	customerID uuid.UUID,
	customerName string,
	amount valueobject.Money,
	method PaymentMethod,
	paymentDate time.Time,
	recordedBy uuid.UUID,
) (*Payment, error) {
	if paymentNumber == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT_NUMBER", "Payment number cannot be empty")
	}
	if len(paymentNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_PAYMENT_NUMBER", "Payment number cannot exceed 50 characters")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_PAYMENT_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}
	if paymentDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_DATE", "Payment date is required")
	}
	if recordedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Recording user ID is required")
	}

	p := &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, recordedBy),
		PaymentNumber:       paymentNumber,
		CustomerID:          customerID,
		CustomerName:        customerName,
		Amount:              amount.Amount(),
		AllocatedAmount:     decimal.Zero,
		CreditAmount:        decimal.Zero,
		Method:              method,
		PaymentDate:         paymentDate,
		Applications:        make([]PaymentApplication, 0),
	}

	return p, nil
}

// UnallocatedAmount returns the part of the payment not yet spread
// across invoices or issued as credit
func (p *Payment) UnallocatedAmount() decimal.Decimal {
	return p.Amount.Sub(p.AllocatedAmount).Sub(p.CreditAmount)
}

// ApplyToInvoice records an application of this payment to an invoice.
// Returns the application record created.
func (p *Payment) ApplyToInvoice(invoiceID uuid.UUID, invoiceNumber string, amount valueobject.Money) (*PaymentApplication, error) {
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number is required")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_ALLOCATION_AMOUNT", "Application amount must be positive")
	}
	if amount.Amount().GreaterThan(p.UnallocatedAmount()) {
		return nil, shared.NewDomainError("EXCEEDS_UNALLOCATED", fmt.Sprintf("Application amount %s exceeds unallocated amount %s", amount.StringFixed(2), p.UnallocatedAmount().StringFixed(2)))
	}

	for _, app := range p.Applications {
		if app.InvoiceID == invoiceID {
			return nil, shared.NewDomainError("ALREADY_APPLIED", fmt.Sprintf("Payment already applied to invoice %s", invoiceNumber))
		}
	}

	application := NewPaymentApplication(p.ID, invoiceID, invoiceNumber, amount)
	p.Applications = append(p.Applications, *application)
	p.AllocatedAmount = p.AllocatedAmount.Add(amount.Amount())
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return application, nil
}

// AttachCredit records that the unallocated remainder of the payment
// was issued as a customer credit
func (p *Payment) AttachCredit(creditID uuid.UUID, amount valueobject.Money) error {
	if creditID == uuid.Nil {
		return shared.NewDomainError("INVALID_CREDIT", "Credit ID cannot be empty")
	}
	if p.CreditID != nil {
		return shared.NewDomainError("ALREADY_CREDITED", "Payment already has an attached credit")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Credit amount must be positive")
	}
	if !amount.Amount().Equal(p.UnallocatedAmount()) {
		return shared.NewDomainError("INVALID_AMOUNT", fmt.Sprintf("Credit amount %s does not match unallocated amount %s", amount.StringFixed(2), p.UnallocatedAmount().StringFixed(2)))
	}

	p.CreditID = &creditID
	p.CreditAmount = amount.Amount()
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// IsFullyAllocated reports whether every cent of the payment is
// accounted for by applications or credit
func (p *Payment) IsFullyAllocated() bool {
	return p.UnallocatedAmount().IsZero()
}

// GetAmountMoney returns the total amount as Money
func (p *Payment) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(p.Amount)
}

// GetAllocatedAmountMoney returns the allocated amount as Money
func (p *Payment) GetAllocatedAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(p.AllocatedAmount)
}

// SetReference sets the external payment reference
func (p *Payment) SetReference(reference string) error {
	if len(reference) > 100 {
		return shared.NewDomainError("INVALID_REFERENCE", "Payment reference cannot exceed 100 characters")
	}
	p.Reference = reference
	return nil
}

// SetRemark sets the remark
func (p *Payment) SetRemark(remark string) {
	p.Remark = remark
}
