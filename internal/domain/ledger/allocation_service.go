package ledger

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/papererp/backend/internal/domain/shared"
	"github.com/papererp/backend/internal/domain/shared/valueobject"
)

// PaymentAllocation is the outcome of allocating a payment: the payment
// itself, every invoice it touched, and the overpayment credit if the
// payment exceeded the customer's outstanding balance
type PaymentAllocation struct {
	Payment  *Payment
	Invoices []*Invoice
	Credit   *Credit
}

// AllocationService coordinates payments, credits, and invoices so the
// bookkeeping identity holds: every cent of a payment ends up applied
// to invoices or issued as credit, never lost
type AllocationService struct{}

// NewAllocationService creates a new allocation domain service
func NewAllocationService() *AllocationService {
	return &AllocationService{}
}

// AllocatePayment spreads a freshly recorded payment across the
// customer's open invoices. When targetInvoiceID is set, only that
// invoice receives money; otherwise the oldest obligations are settled
// first. Any remainder becomes an overpayment credit numbered
// creditNumber.
//
// The caller owns atomicity: every aggregate returned here must be
// persisted in one transaction.
func (s *AllocationService) AllocatePayment(
	payment *Payment,
	openInvoices []*Invoice,
	targetInvoiceID *uuid.UUID,
	creditNumber string,
) (*PaymentAllocation, error) {
	if payment == nil {
		return nil, shared.NewDomainError("INVALID_PAYMENT", "Payment cannot be nil")
	}
	if payment.UnallocatedAmount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_PAYMENT_AMOUNT", "Payment has no unallocated amount")
	}

	byID := make(map[uuid.UUID]*Invoice, len(openInvoices))
	for _, inv := range openInvoices {
		if inv.TenantID != payment.TenantID || inv.CustomerID != payment.CustomerID {
			return nil, shared.NewDomainError("INVOICE_MISMATCH", fmt.Sprintf("Invoice %s does not belong to customer %s", inv.InvoiceNumber, payment.CustomerID))
		}
		byID[inv.ID] = inv
	}

	var strategy AllocationStrategy
	if targetInvoiceID != nil {
		target, ok := byID[*targetInvoiceID]
		if !ok || !target.Status.IsOpen() || target.Balance.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("INVOICE_NOT_APPLICABLE", "Targeted invoice is not open for allocation")
		}
		strategy = NewTargetedStrategy(*targetInvoiceID)
	} else {
		strategy = NewOldestFirstStrategy()
	}

	plan, err := strategy.Allocate(valueobject.NewMoneyUSD(payment.UnallocatedAmount()), TargetsFromInvoices(openInvoices))
	if err != nil {
		return nil, err
	}

	touched := make([]*Invoice, 0, len(plan.Slices))
	for _, slice := range plan.Slices {
		inv := byID[slice.InvoiceID]
		amount := valueobject.NewMoneyUSD(slice.Amount)
		if err := inv.ApplyAmount(amount, ApplicationKindPayment); err != nil {
			return nil, err
		}
		if _, err := payment.ApplyToInvoice(inv.ID, inv.InvoiceNumber, amount); err != nil {
			return nil, err
		}
		touched = append(touched, inv)
	}

	var credit *Credit
	if plan.RemainingAmount.GreaterThan(decimal.Zero) {
		createdBy := payment.CreatedBy
		if createdBy == nil {
			return nil, shared.NewDomainError("INVALID_USER", "Payment has no recording user")
		}
		credit, err = NewCredit(
			payment.TenantID,
			creditNumber,
			payment.CustomerID,
			payment.CustomerName,
			valueobject.NewMoneyUSD(plan.RemainingAmount),
			CreditReasonOverpayment,
			fmt.Sprintf("Overpayment on %s", payment.PaymentNumber),
			*createdBy,
		)
		if err != nil {
			return nil, err
		}
		credit.SetSourcePayment(payment.ID)
		if err := payment.AttachCredit(credit.ID, credit.GetAmountMoney()); err != nil {
			return nil, err
		}
	}

	payment.AddDomainEvent(NewPaymentRecordedEvent(payment))

	return &PaymentAllocation{
		Payment:  payment,
		Invoices: touched,
		Credit:   credit,
	}, nil
}

// ApplyCredit consumes credit against a single invoice, keeping the
// two aggregates consistent. Both must belong to the same tenant and
// customer.
func (s *AllocationService) ApplyCredit(
	credit *Credit,
	invoice *Invoice,
	amount valueobject.Money,
	appliedBy uuid.UUID,
) error {
	if credit == nil || invoice == nil {
		return shared.NewDomainError("INVALID_INPUT", "Credit and invoice are required")
	}
	if credit.TenantID != invoice.TenantID || credit.CustomerID != invoice.CustomerID {
		return shared.NewDomainError("INVOICE_MISMATCH", fmt.Sprintf("Invoice %s does not belong to the credit's customer", invoice.InvoiceNumber))
	}
	if !invoice.Status.IsOpen() {
		return shared.NewDomainError("INVOICE_NOT_APPLICABLE", fmt.Sprintf("Cannot apply credit to invoice in %s status", invoice.Status))
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_ALLOCATION_AMOUNT", "Applied amount must be positive")
	}
	// Validate both sides before mutating either
	if amount.Amount().GreaterThan(invoice.Balance) {
		return shared.NewDomainError("EXCEEDS_INVOICE_BALANCE", fmt.Sprintf("Applied amount %s exceeds invoice balance %s", amount.StringFixed(2), invoice.Balance.StringFixed(2)))
	}
	if !credit.IsActive() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot apply credit in %s status", credit.Status))
	}
	if amount.Amount().GreaterThan(credit.AvailableAmount) {
		return shared.NewDomainError("INSUFFICIENT_CREDIT", fmt.Sprintf("Applied amount %s exceeds available credit %s", amount.StringFixed(2), credit.AvailableAmount.StringFixed(2)))
	}

	if _, err := credit.Apply(invoice.ID, invoice.InvoiceNumber, amount, appliedBy); err != nil {
		return err
	}
	if err := invoice.ApplyAmount(amount, ApplicationKindCredit); err != nil {
		return err
	}

	return nil
}
