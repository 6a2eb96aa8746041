package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/papererp/backend/internal/domain/ledger"
	"github.com/papererp/backend/internal/domain/shared"
)

func TestAuditLogHandler_ReceivesAllEventTypes(t *testing.T) {
	handler := NewAuditLogHandler(zap.NewNop())
	assert.Empty(t, handler.EventTypes())
}

func TestAuditLogHandler_PaymentRecorded(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	handler := NewAuditLogHandler(zap.New(core))

	tenantID := uuid.New()
	paymentID := uuid.New()
	e := &ledger.PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(ledger.EventTypePaymentRecorded, "Payment", paymentID, tenantID),
		PaymentID:       paymentID,
		PaymentNumber:   "PAY-1001",
		CustomerID:      uuid.New(),
		CustomerName:    "Dunmore Paper Supply",
		Amount:          decimal.NewFromInt(500),
		AllocatedAmount: decimal.NewFromInt(450),
		CreditAmount:    decimal.NewFromInt(50),
		Method:          ledger.PaymentMethodBankTransfer,
	}

	require.NoError(t, handler.Handle(context.Background(), e))

	entries := recorded.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "ledger audit", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "PaymentRecorded", fields["event_type"])
	assert.Equal(t, tenantID.String(), fields["tenant_id"])
	assert.Equal(t, "PAY-1001", fields["payment_number"])
	assert.Equal(t, "500.00", fields["amount"])
	assert.Equal(t, "450.00", fields["allocated_amount"])
	assert.Equal(t, "50.00", fields["credit_amount"])
}

func TestAuditLogHandler_InvoiceAmountAppliedBeforeAfter(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	handler := NewAuditLogHandler(zap.New(core))

	invoiceID := uuid.New()
	e := &ledger.InvoiceAmountAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(ledger.EventTypeInvoiceAmountApplied, "Invoice", invoiceID, uuid.New()),
		InvoiceID:       invoiceID,
		InvoiceNumber:   "INV-2001",
		CustomerID:      uuid.New(),
		Kind:            ledger.ApplicationKindPayment,
		AppliedAmount:   decimal.NewFromInt(120),
		Balance:         decimal.NewFromInt(80),
		Status:          ledger.InvoiceStatusPartial,
	}

	require.NoError(t, handler.Handle(context.Background(), e))

	entries := recorded.All()
	require.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	assert.Equal(t, "120.00", fields["applied_amount"])
	assert.Equal(t, "200.00", fields["balance_before"])
	assert.Equal(t, "80.00", fields["balance_after"])
}

func TestAuditLogHandler_CreditAppliedBeforeAfter(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	handler := NewAuditLogHandler(zap.New(core))

	creditID := uuid.New()
	e := &ledger.CreditAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(ledger.EventTypeCreditApplied, "Credit", creditID, uuid.New()),
		CreditID:        creditID,
		CreditNumber:    "CR-3001",
		CustomerID:      uuid.New(),
		InvoiceID:       uuid.New(),
		InvoiceNumber:   "INV-2001",
		AppliedAmount:   decimal.NewFromInt(30),
		AvailableAmount: decimal.NewFromInt(70),
		Status:          ledger.CreditStatusActive,
		AppliedBy:       uuid.New(),
	}

	require.NoError(t, handler.Handle(context.Background(), e))

	entries := recorded.All()
	require.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	assert.Equal(t, "100.00", fields["available_before"])
	assert.Equal(t, "70.00", fields["available_after"])
	assert.Equal(t, "30.00", fields["applied_amount"])
}

func TestAuditLogHandler_InvoiceOverdue(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	handler := NewAuditLogHandler(zap.New(core))

	invoiceID := uuid.New()
	e := &ledger.InvoiceOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(ledger.EventTypeInvoiceOverdue, "Invoice", invoiceID, uuid.New()),
		InvoiceID:       invoiceID,
		InvoiceNumber:   "INV-2002",
		CustomerID:      uuid.New(),
		Balance:         decimal.NewFromInt(250),
	}

	require.NoError(t, handler.Handle(context.Background(), e))

	entries := recorded.All()
	require.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	assert.Equal(t, "InvoiceOverdue", fields["event_type"])
	assert.Equal(t, "250.00", fields["balance"])
}
