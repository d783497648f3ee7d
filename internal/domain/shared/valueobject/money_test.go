package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		m, err := NewMoney(12345, GBP)
		require.NoError(t, err)
		assert.Equal(t, int64(12345), m.Pence())
		assert.Equal(t, GBP, m.Currency())
	})

	t.Run("empty currency", func(t *testing.T) {
		_, err := NewMoney(100, "")
		assert.Error(t, err)
	})
}

func TestNewMoneyGBPFromPounds(t *testing.T) {
	tests := []struct {
		input   string
		pence   int64
		wantErr bool
	}{
		{"100.00", 10000, false},
		{"0.01", 1, false},
		{"132", 13200, false},
		{"10.5", 1050, false},
		{"1.999", 0, true}, // sub-penny precision
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m, err := NewMoneyGBPFromPounds(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.pence, m.Pence())
		})
	}
}

func TestMoney_AddSubtract(t *testing.T) {
	a := NewMoneyGBP(10000)
	b := NewMoneyGBP(1000)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(11000), sum.Pence())

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.Equal(t, int64(9000), diff.Pence())

	usd, _ := NewMoney(100, USD)
	_, err = a.Add(usd)
	assert.Error(t, err)
	_, err = a.Subtract(usd)
	assert.Error(t, err)
}

func TestMoney_MultiplyByRate(t *testing.T) {
	tests := []struct {
		name    string
		pence   int64
		percent string
		want    int64
	}{
		{"20 percent of 110.00", 11000, "20", 2200},
		{"15 percent of 200.00", 20000, "15", 3000},
		{"rounds half up", 101, "50", 51},    // 50.5p -> 51p
		{"rounds down below half", 33, "10", 3}, // 3.3p -> 3p
		{"zero rate", 10000, "0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, err := decimal.NewFromString(tt.percent)
			require.NoError(t, err)
			got := NewMoneyGBP(tt.pence).MultiplyByRate(rate)
			assert.Equal(t, tt.want, got.Pence())
		})
	}
}

func TestMoney_Comparisons(t *testing.T) {
	a := NewMoneyGBP(100)
	b := NewMoneyGBP(200)

	less, err := a.LessThan(b)
	require.NoError(t, err)
	assert.True(t, less)

	gte, err := b.GreaterThanOrEqual(a)
	require.NoError(t, err)
	assert.True(t, gte)

	assert.True(t, a.Equals(NewMoneyGBP(100)))
	assert.False(t, a.Equals(b))

	usd, _ := NewMoney(100, USD)
	_, err = a.LessThan(usd)
	assert.Error(t, err)
}

func TestMoney_Predicates(t *testing.T) {
	assert.True(t, ZeroGBP().IsZero())
	assert.True(t, NewMoneyGBP(1).IsPositive())
	assert.True(t, NewMoneyGBP(-1).IsNegative())
	assert.True(t, NewMoneyGBP(1).Negate().IsNegative())
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "132.00 GBP", NewMoneyGBP(13200).String())
	assert.Equal(t, "0.05 GBP", NewMoneyGBP(5).String())
}

func TestMoney_Format(t *testing.T) {
	assert.Equal(t, "1,234.56", NewMoneyGBP(123456).Format())
	assert.Equal(t, "0.09", NewMoneyGBP(9).Format())
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	m := NewMoneyGBP(13200)
	data, err := json.Marshal(m)
	require.NoError(t, err)

	var got Money
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, m.Equals(got))
}

func TestMoney_Scan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan(int64(4200)))
	assert.Equal(t, int64(4200), m.Pence())
	assert.Equal(t, DefaultCurrency, m.Currency())

	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsZero())

	assert.Error(t, m.Scan(3.14))
}
