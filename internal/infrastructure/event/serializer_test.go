package event

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papererp/backend/internal/domain/ledger"
	"github.com/papererp/backend/internal/domain/shared"
)

// serializerTestEvent is a test event for serializer tests
type serializerTestEvent struct {
	shared.BaseDomainEvent
	Data    string `json:"data"`
	Counter int    `json:"counter"`
}

func newSerializerTestEvent() *serializerTestEvent {
	return &serializerTestEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("SerializerTestEvent", "TestAggregate", uuid.New(), uuid.New()),
		Data:            "test data",
		Counter:         42,
	}
}

func TestEventSerializer_Register(t *testing.T) {
	serializer := NewEventSerializer()

	serializer.Register("SerializerTestEvent", &serializerTestEvent{})

	assert.True(t, serializer.IsRegistered("SerializerTestEvent"))
	assert.False(t, serializer.IsRegistered("UnknownEvent"))
}

func TestEventSerializer_RoundTrip(t *testing.T) {
	serializer := NewEventSerializer()
	serializer.Register("SerializerTestEvent", &serializerTestEvent{})

	original := newSerializerTestEvent()
	data, err := serializer.Serialize(original)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"data":"test data"`)

	deserialized, err := serializer.Deserialize("SerializerTestEvent", data)
	require.NoError(t, err)

	event, ok := deserialized.(*serializerTestEvent)
	require.True(t, ok)
	assert.Equal(t, original.Data, event.Data)
	assert.Equal(t, original.Counter, event.Counter)
}

func TestEventSerializer_Deserialize_UnknownType(t *testing.T) {
	serializer := NewEventSerializer()

	_, err := serializer.Deserialize("NeverRegistered", []byte(`{}`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown event type")
}

func TestEventSerializer_Deserialize_InvalidJSON(t *testing.T) {
	serializer := NewEventSerializer()
	serializer.Register("SerializerTestEvent", &serializerTestEvent{})

	_, err := serializer.Deserialize("SerializerTestEvent", []byte(`{not json`))

	assert.Error(t, err)
}

func TestNewLedgerEventSerializer(t *testing.T) {
	serializer := NewLedgerEventSerializer()

	for _, eventType := range []string{
		"InvoiceIssued",
		"InvoiceAmountApplied",
		"InvoicePaid",
		"InvoiceOverdue",
		"InvoiceCancelled",
		"PaymentRecorded",
		"CreditIssued",
		"CreditApplied",
		"CreditVoided",
	} {
		assert.True(t, serializer.IsRegistered(eventType), eventType)
	}
}

func TestNewLedgerEventSerializer_PaymentRoundTrip(t *testing.T) {
	serializer := NewLedgerEventSerializer()

	payment := &ledger.Payment{
		PaymentNumber: "PAY-001",
		CustomerID:    uuid.New(),
		CustomerName:  "Acme Paper Co",
		Amount:        decimal.RequireFromString("200.00"),
		Method:        ledger.PaymentMethodBankTransfer,
		PaymentDate:   time.Now().UTC(),
		Applications: []ledger.PaymentApplication{
			{
				ID:            uuid.New(),
				InvoiceID:     uuid.New(),
				InvoiceNumber: "INV-001",
				Amount:        decimal.RequireFromString("150.00"),
				AppliedAt:     time.Now().UTC(),
			},
		},
	}
	payment.ID = uuid.New()
	payment.TenantID = uuid.New()
	original := ledger.NewPaymentRecordedEvent(payment)

	data, err := serializer.Serialize(original)
	require.NoError(t, err)

	deserialized, err := serializer.Deserialize("PaymentRecorded", data)
	require.NoError(t, err)

	event, ok := deserialized.(*ledger.PaymentRecordedEvent)
	require.True(t, ok)
	assert.Equal(t, original.PaymentNumber, event.PaymentNumber)
	assert.True(t, original.Amount.Equal(event.Amount))
	require.Len(t, event.Applications, 1)
	assert.Equal(t, "INV-001", event.Applications[0].InvoiceNumber)
}
