package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/papererp/backend/internal/domain/shared"
	"github.com/papererp/backend/internal/domain/shared/valueobject"
)

// CreditStatus represents the status of a customer credit
type CreditStatus string

const (
	CreditStatusActive    CreditStatus = "ACTIVE"    // Available balance remains
	CreditStatusExhausted CreditStatus = "EXHAUSTED" // Fully consumed
	CreditStatusVoid      CreditStatus = "VOID"      // Voided, balance unusable
)

// IsValid checks if the status is a valid CreditStatus
func (s CreditStatus) IsValid() bool {
	switch s {
	case CreditStatusActive, CreditStatusExhausted, CreditStatusVoid:
		return true
	}
	return false
}

// String returns the string representation of CreditStatus
func (s CreditStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the credit is in a terminal state
func (s CreditStatus) IsTerminal() bool {
	return s == CreditStatusExhausted || s == CreditStatusVoid
}

// CreditReason represents why a credit was issued
type CreditReason string

const (
	CreditReasonOverpayment CreditReason = "OVERPAYMENT" // Payment remainder
	CreditReasonReturn      CreditReason = "RETURN"      // Returned goods
	CreditReasonGoodwill    CreditReason = "GOODWILL"    // Commercial gesture
	CreditReasonAdjustment  CreditReason = "ADJUSTMENT"  // Manual correction
)

// IsValid checks if the credit reason is valid
func (r CreditReason) IsValid() bool {
	switch r {
	case CreditReasonOverpayment, CreditReasonReturn, CreditReasonGoodwill, CreditReasonAdjustment:
		return true
	}
	return false
}

// String returns the string representation of CreditReason
func (r CreditReason) String() string {
	return string(r)
}

// CreditApplication represents an application of credit to an invoice
type CreditApplication struct {
	ID            uuid.UUID       `json:"id"`
	CreditID      uuid.UUID       `json:"credit_id"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"` // Denormalized for display
	Amount        decimal.Decimal `json:"amount"`
	AppliedAt     time.Time       `json:"applied_at"`
	AppliedBy     uuid.UUID       `json:"applied_by"`
}

// NewCreditApplication creates a new credit application
func NewCreditApplication(creditID, invoiceID uuid.UUID, invoiceNumber string, amount valueobject.Money, appliedBy uuid.UUID) *CreditApplication {
	return &CreditApplication{
		ID:            uuid.New(),
		CreditID:      creditID,
		InvoiceID:     invoiceID,
		InvoiceNumber: invoiceNumber,
		Amount:        amount.Amount(),
		AppliedAt:     time.Now(),
		AppliedBy:     appliedBy,
	}
}

// GetAmountMoney returns the amount as Money value object
func (a *CreditApplication) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(a.Amount)
}

// Credit represents a customer credit aggregate root.
// Credits hold money the business owes a customer - overpayments,
// returns, goodwill - until it is applied against invoices or voided.
// Credits never sweep onto invoices automatically.
type Credit struct {
	shared.TenantAggregateRoot
	CreditNumber    string              `json:"credit_number"`
	CustomerID      uuid.UUID           `json:"customer_id"`
	CustomerName    string              `json:"customer_name"`
	Amount          decimal.Decimal     `json:"amount"`           // Original credit amount
	AvailableAmount decimal.Decimal     `json:"available_amount"` // Remaining usable amount
	Reason          CreditReason        `json:"reason"`
	Description     string              `json:"description"`
	Status          CreditStatus        `json:"status"`
	SourcePaymentID *uuid.UUID          `json:"source_payment_id"` // Payment that produced an overpayment credit
	Applications    []CreditApplication `json:"applications"`
	VoidedAt        *time.Time          `json:"voided_at"`
	VoidedBy        *uuid.UUID          `json:"voided_by"`
	VoidReason      string              `json:"void_reason"`
}

// NewCredit creates a new active credit
func NewCredit(
	tenantID uuid.UUID,
	creditNumber string,
	customerID uuid.UUID,
	customerName string,
	amount valueobject.Money,
	reason CreditReason,
	description string,
	createdBy uuid.UUID,
) (*Credit, error) {
	if creditNumber == "" {
		return nil, shared.NewDomainError("INVALID_CREDIT_NUMBER", "Credit number cannot be empty")
	}
	if len(creditNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_CREDIT_NUMBER", "Credit number cannot exceed 50 characters")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Credit amount must be positive")
	}
	if !reason.IsValid() {
		return nil, shared.NewDomainError("INVALID_CREDIT_REASON", "Credit reason is not valid")
	}
	if createdBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Creating user ID is required")
	}

	c := &Credit{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, createdBy),
		CreditNumber:        creditNumber,
		CustomerID:          customerID,
		CustomerName:        customerName,
		Amount:              amount.Amount(),
		AvailableAmount:     amount.Amount(),
		Reason:              reason,
		Description:         description,
		Status:              CreditStatusActive,
		Applications:        make([]CreditApplication, 0),
	}

	c.AddDomainEvent(NewCreditIssuedEvent(c))

	return c, nil
}

// SetSourcePayment links an overpayment credit to the payment that
// produced it
func (c *Credit) SetSourcePayment(paymentID uuid.UUID) {
	c.SourcePaymentID = &paymentID
}

// Apply consumes part of the available credit against an invoice.
// Returns the application record created.
func (c *Credit) Apply(invoiceID uuid.UUID, invoiceNumber string, amount valueobject.Money, appliedBy uuid.UUID) (*CreditApplication, error) {
	if c.Status != CreditStatusActive {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot apply credit in %s status", c.Status))
	}
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number is required")
	}
	if appliedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Applying user ID is required")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_ALLOCATION_AMOUNT", "Applied amount must be positive")
	}
	if amount.Amount().GreaterThan(c.AvailableAmount) {
		return nil, shared.NewDomainError("INSUFFICIENT_CREDIT", fmt.Sprintf("Applied amount %s exceeds available credit %s", amount.StringFixed(2), c.AvailableAmount.StringFixed(2)))
	}

	application := NewCreditApplication(c.ID, invoiceID, invoiceNumber, amount, appliedBy)
	c.Applications = append(c.Applications, *application)
	c.AvailableAmount = c.AvailableAmount.Sub(amount.Amount())

	if c.AvailableAmount.IsZero() {
		c.Status = CreditStatusExhausted
	}

	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCreditAppliedEvent(c, application))

	return application, nil
}

// Void voids the credit, making any remaining balance unusable.
// Applications already made stay in effect.
func (c *Credit) Void(reason string, voidedBy uuid.UUID) error {
	if c.Status != CreditStatusActive {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot void credit in %s status", c.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Void reason is required")
	}
	if voidedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Voiding user ID is required")
	}

	now := time.Now()
	voidedAmount := c.AvailableAmount
	c.Status = CreditStatusVoid
	c.AvailableAmount = decimal.Zero
	c.VoidedAt = &now
	c.VoidedBy = &voidedBy
	c.VoidReason = reason
	c.UpdatedAt = now
	c.IncrementVersion()

	c.AddDomainEvent(NewCreditVoidedEvent(c, voidedAmount))

	return nil
}

// GetAmountMoney returns the original credit amount as Money
func (c *Credit) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(c.Amount)
}

// GetAvailableAmountMoney returns the available amount as Money
func (c *Credit) GetAvailableAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(c.AvailableAmount)
}

// IsActive returns true if the credit can still be applied
func (c *Credit) IsActive() bool {
	return c.Status == CreditStatusActive
}
