package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency Currency
		wantErr  bool
	}{
		{
			name:     "valid positive amount",
			amount:   "100.50",
			currency: USD,
			wantErr:  false,
		},
		{
			name:     "valid negative amount",
			amount:   "-25.00",
			currency: USD,
			wantErr:  false,
		},
		{
			name:     "zero amount",
			amount:   "0",
			currency: USD,
			wantErr:  false,
		},
		{
			name:     "empty currency",
			amount:   "10.00",
			currency: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := decimal.NewFromString(tt.amount)
			require.NoError(t, err)

			m, err := NewMoney(d, tt.currency)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, m.Amount().Equal(d))
			assert.Equal(t, tt.currency, m.Currency())
		})
	}
}

func TestNewMoneyFromMinorUnits(t *testing.T) {
	m, err := NewMoneyFromMinorUnits(10050, USD)
	require.NoError(t, err)
	assert.Equal(t, "100.50", m.StringFixed(2))
	assert.Equal(t, int64(10050), m.MinorUnits())

	neg, err := NewMoneyFromMinorUnits(-99, USD)
	require.NoError(t, err)
	assert.Equal(t, "-0.99", neg.StringFixed(2))
	assert.Equal(t, int64(-99), neg.MinorUnits())
}

func TestMoney_AddSubtract(t *testing.T) {
	a := NewMoneyUSD(decimal.NewFromFloat(100.25))
	b := NewMoneyUSD(decimal.NewFromFloat(50.75))

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "151.00", sum.StringFixed(2))

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.Equal(t, "49.50", diff.StringFixed(2))
}

func TestMoney_CurrencyMismatch(t *testing.T) {
	usd := NewMoneyUSD(decimal.NewFromInt(10))
	eur, err := NewMoney(decimal.NewFromInt(10), EUR)
	require.NoError(t, err)

	_, err = usd.Add(eur)
	assert.Error(t, err)

	_, err = usd.Subtract(eur)
	assert.Error(t, err)

	_, err = usd.Min(eur)
	assert.Error(t, err)

	_, err = usd.LessThan(eur)
	assert.Error(t, err)
}

func TestMoney_Min(t *testing.T) {
	a := NewMoneyUSD(decimal.NewFromInt(30))
	b := NewMoneyUSD(decimal.NewFromInt(20))

	min, err := a.Min(b)
	require.NoError(t, err)
	assert.True(t, min.Equals(b))

	min, err = b.Min(a)
	require.NoError(t, err)
	assert.True(t, min.Equals(b))
}

func TestMoney_Comparisons(t *testing.T) {
	a := NewMoneyUSD(decimal.NewFromInt(10))
	b := NewMoneyUSD(decimal.NewFromInt(20))

	lt, err := a.LessThan(b)
	require.NoError(t, err)
	assert.True(t, lt)

	gt, err := b.GreaterThan(a)
	require.NoError(t, err)
	assert.True(t, gt)

	gte, err := a.GreaterThanOrEqual(a)
	require.NoError(t, err)
	assert.True(t, gte)

	assert.True(t, a.IsPositive())
	assert.False(t, a.IsNegative())
	assert.True(t, ZeroUSD().IsZero())
	assert.True(t, a.Negate().IsNegative())
	assert.True(t, a.Negate().Abs().Equals(a))
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	m := NewMoneyUSD(decimal.NewFromFloat(1234.56))

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"1234.56","currency":"USD"}`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))
}

func TestMoney_UnmarshalJSONDefaultsCurrency(t *testing.T) {
	var m Money
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"5.00"}`), &m))
	assert.Equal(t, DefaultCurrency, m.Currency())
}

func TestMoney_SQLValueScan(t *testing.T) {
	m := NewMoneyUSD(decimal.NewFromFloat(42.42))

	v, err := m.Value()
	require.NoError(t, err)
	assert.Equal(t, "42.42", v)

	var scanned Money
	require.NoError(t, scanned.Scan("42.42"))
	assert.True(t, m.Equals(scanned))

	var fromBytes Money
	require.NoError(t, fromBytes.Scan([]byte("0.01")))
	assert.Equal(t, int64(1), fromBytes.MinorUnits())

	var fromNil Money
	require.NoError(t, fromNil.Scan(nil))
	assert.True(t, fromNil.IsZero())
	assert.Equal(t, DefaultCurrency, fromNil.Currency())

	assert.Error(t, scanned.Scan(3.14))
}
