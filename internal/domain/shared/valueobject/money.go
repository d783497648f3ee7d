package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	GBP Currency = "GBP" // British Pound (default)
	USD Currency = "USD" // US Dollar
	EUR Currency = "EUR" // Euro
)

// DefaultCurrency is the default currency for the marketplace
const DefaultCurrency = GBP

// minorUnitsPerMajor is the number of minor units (pence) in one major unit (pound)
const minorUnitsPerMajor = 100

// Money is a value object representing monetary amounts.
// Amounts are held as integer minor units (pence) so that totals reconcile
// exactly against the amounts charged through the payment gateway.
// It is immutable - all operations return new Money instances.
type Money struct {
	pence    int64
	currency Currency
}

// NewMoney creates a new Money from an amount in minor units
func NewMoney(pence int64, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, fmt.Errorf("currency cannot be empty")
	}
	return Money{pence: pence, currency: currency}, nil
}

// NewMoneyGBP creates Money in GBP from an amount in pence
func NewMoneyGBP(pence int64) Money {
	return Money{pence: pence, currency: GBP}
}

// NewMoneyGBPFromPounds creates Money in GBP from a major-unit decimal string
// such as "100.00". Fractions of a penny are rejected.
func NewMoneyGBPFromPounds(pounds string) (Money, error) {
	d, err := decimal.NewFromString(pounds)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	pence := d.Mul(decimal.NewFromInt(minorUnitsPerMajor))
	if !pence.IsInteger() {
		return Money{}, fmt.Errorf("amount %s has sub-penny precision", pounds)
	}
	return Money{pence: pence.IntPart(), currency: GBP}, nil
}

// Zero returns a zero-value Money in the specified currency
func Zero(currency Currency) Money {
	return Money{pence: 0, currency: currency}
}

// ZeroGBP returns a zero-value Money in GBP
func ZeroGBP() Money {
	return Zero(GBP)
}

// Pence returns the amount in minor units
func (m Money) Pence() int64 {
	return m.pence
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.pence == 0
}

// IsPositive returns true if the amount is positive
func (m Money) IsPositive() bool {
	return m.pence > 0
}

// IsNegative returns true if the amount is negative
func (m Money) IsNegative() bool {
	return m.pence < 0
}

// Add returns a new Money with the sum of both amounts
// Returns error if currencies don't match
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{pence: m.pence + other.pence, currency: m.currency}, nil
}

// MustAdd adds two Money values, panics if currencies don't match
func (m Money) MustAdd(other Money) Money {
	result, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return result
}

// Subtract returns a new Money with the difference
// Returns error if currencies don't match
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot subtract money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{pence: m.pence - other.pence, currency: m.currency}, nil
}

// MustSubtract subtracts two Money values, panics if currencies don't match
func (m Money) MustSubtract(other Money) Money {
	result, err := m.Subtract(other)
	if err != nil {
		panic(err)
	}
	return result
}

// MultiplyByRate applies a percentage rate to the amount and rounds the
// result half-up to whole pence. A rate of decimal value 20 means 20%.
// Half-up on the minor unit is the marketplace's fixed rounding rule;
// changing it produces off-by-one-penny totals that fail gateway
// reconciliation.
func (m Money) MultiplyByRate(percent decimal.Decimal) Money {
	raw := decimal.NewFromInt(m.pence).Mul(percent).Div(decimal.NewFromInt(100))
	return Money{pence: roundHalfUp(raw), currency: m.currency}
}

// Negate returns a new Money with the sign reversed
func (m Money) Negate() Money {
	return Money{pence: -m.pence, currency: m.currency}
}

// Equals returns true if both Money values are equal (same amount and currency)
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.pence == other.pence
}

// LessThan returns true if this Money is less than the other
// Returns error if currencies don't match
func (m Money) LessThan(other Money) (bool, error) {
	if m.currency != other.currency {
		return false, fmt.Errorf("cannot compare money with different currencies: %s and %s", m.currency, other.currency)
	}
	return m.pence < other.pence, nil
}

// GreaterThanOrEqual returns true if this Money is greater than or equal to the other
func (m Money) GreaterThanOrEqual(other Money) (bool, error) {
	if m.currency != other.currency {
		return false, fmt.Errorf("cannot compare money with different currencies: %s and %s", m.currency, other.currency)
	}
	return m.pence >= other.pence, nil
}

// Decimal returns the amount in major units as a decimal
func (m Money) Decimal() decimal.Decimal {
	return decimal.NewFromInt(m.pence).Div(decimal.NewFromInt(minorUnitsPerMajor))
}

// String returns a string representation of the Money in major units
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Decimal().StringFixed(2), m.currency)
}

// Format renders the amount in major units with locale-aware grouping,
// e.g. "1,234.56". Display formatting happens only at the boundary; all
// arithmetic stays in minor units.
func (m Money) Format() string {
	p := message.NewPrinter(language.BritishEnglish)
	whole := m.pence / minorUnitsPerMajor
	frac := m.pence % minorUnitsPerMajor
	if frac < 0 {
		frac = -frac
	}
	return p.Sprintf("%d.%02d", whole, frac)
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Pence    int64    `json:"pence"`
		Currency Currency `json:"currency"`
	}{
		Pence:    m.pence,
		Currency: m.currency,
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (m *Money) UnmarshalJSON(data []byte) error {
	var v struct {
		Pence    int64    `json:"pence"`
		Currency Currency `json:"currency"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	m.pence = v.Pence
	m.currency = v.Currency
	if m.currency == "" {
		m.currency = DefaultCurrency
	}
	return nil
}

// Value implements driver.Valuer for database storage
// Stores the amount in minor units
func (m Money) Value() (driver.Value, error) {
	return m.pence, nil
}

// Scan implements sql.Scanner for database retrieval. Only the minor-unit
// amount is scanned; currency defaults to DefaultCurrency if not already set.
func (m *Money) Scan(value any) error {
	if value == nil {
		m.pence = 0
		m.currency = DefaultCurrency
		return nil
	}

	switch v := value.(type) {
	case int64:
		m.pence = v
	case []byte:
		d, err := decimal.NewFromString(string(v))
		if err != nil {
			return fmt.Errorf("invalid minor-unit value: %w", err)
		}
		m.pence = d.IntPart()
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}
	if m.currency == "" {
		m.currency = DefaultCurrency
	}
	return nil
}

// roundHalfUp rounds a decimal number of pence to the nearest whole penny,
// with halves rounding away from zero.
func roundHalfUp(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}
