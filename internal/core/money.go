// Package core holds the finance domain: entities, input validation, and the
// pure aggregations behind the dashboard, portfolio and report views.
package core

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/shopspring/decimal"
)

// maxAmountCents matches a decimal(10,2) column: 99,999,999.99.
const maxAmountCents = 9_999_999_999

var hundred = decimal.NewFromInt(100)

// ParseMoney converts a decimal string to Money, rounding half away from zero
// to two places. Both "12.34" and "12,34" are accepted. Sign is preserved;
// range checks beyond the column limit are left to Validate.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return MoneyFromDecimal(d)
}

// MoneyFromDecimal rounds d to cents.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	cents := d.Round(2).Shift(2)
	if cents.Abs().GreaterThan(decimal.NewFromInt(maxAmountCents)) {
		return Money{}, ErrAmountTooLarge
	}
	return Money{Cents: cents.IntPart()}, nil
}

// Decimal returns the amount in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

// Float64 is for display and spreadsheet export only.
func (m Money) Float64() float64 {
	return m.Decimal().InexactFloat64()
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// MarshalJSON writes the amount as a bare JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	v, err := ParseMoney(strings.Trim(s, `"`))
	if err != nil {
		return &json.UnmarshalTypeError{Value: jsonKind(s), Type: reflect.TypeOf(Money{})}
	}
	*m = v
	return nil
}

// jsonKind names the kind of a raw JSON value for an UnmarshalTypeError.
// The decoder fills in the field path of type errors only.
func jsonKind(raw string) string {
	switch {
	case strings.HasPrefix(raw, `"`):
		return "string"
	case raw == "true", raw == "false":
		return "bool"
	case strings.HasPrefix(raw, "{"):
		return "object"
	case strings.HasPrefix(raw, "["):
		return "array"
	}
	return "number"
}

// Percent returns part/whole*100 rounded to two places, or 0 when whole is zero.
func Percent(part, whole Money) float64 {
	if whole.Cents == 0 {
		return 0
	}
	return part.Decimal().Div(whole.Decimal()).Mul(hundred).Round(2).InexactFloat64()
}

// RoundedPercent is Percent rounded to a whole number.
func RoundedPercent(part, whole Money) int {
	if whole.Cents == 0 {
		return 0
	}
	return int(part.Decimal().Div(whole.Decimal()).Mul(hundred).Round(0).IntPart())
}
