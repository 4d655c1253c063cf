package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a fixed-point monetary amount. Arithmetic is exact; rounding to the
// currency's minor unit happens only where the caller asks for it (Round2).
type Money struct {
	dec decimal.Decimal
}

func Zero() Money {
	return Money{}
}

// FromString parses amounts like "12.34". Rejects anything decimal can't read.
func FromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return Money{dec: d}, nil
}

// FromCents builds an amount from an integer count of minor units.
func FromCents(cents int64) Money {
	return Money{dec: decimal.New(cents, -2)}
}

func FromDecimal(d decimal.Decimal) Money {
	return Money{dec: d}
}

func (m Money) Add(o Money) Money {
	return Money{dec: m.dec.Add(o.dec)}
}

func (m Money) Sub(o Money) Money {
	return Money{dec: m.dec.Sub(o.dec)}
}

func (m Money) MulInt(n int64) Money {
	return Money{dec: m.dec.Mul(decimal.NewFromInt(n))}
}

// MulRate multiplies by a unitless rate (e.g. a tax rate). The result is not
// rounded; callers that need a currency amount follow up with Round2.
func (m Money) MulRate(rate decimal.Decimal) Money {
	return Money{dec: m.dec.Mul(rate)}
}

// Round2 rounds to two decimal places, half away from zero. For the
// non-negative amounts used throughout, that is round-half-up.
func (m Money) Round2() Money {
	return Money{dec: m.dec.Round(2)}
}

// Cents returns the amount as an integer count of minor units. The amount must
// already sit on a minor-unit boundary (i.e. be the result of Round2).
func (m Money) Cents() int64 {
	return m.dec.Shift(2).IntPart()
}

func (m Money) IsZero() bool {
	return m.dec.IsZero()
}

func (m Money) IsNegative() bool {
	return m.dec.IsNegative()
}

func (m Money) Equal(o Money) bool {
	return m.dec.Equal(o.dec)
}

func (m Money) LessThan(o Money) bool {
	return m.dec.LessThan(o.dec)
}

func (m Money) GreaterThan(o Money) bool {
	return m.dec.GreaterThan(o.dec)
}

func Min(a, b Money) Money {
	if a.dec.LessThan(b.dec) {
		return a
	}
	return b
}

func Max(a, b Money) Money {
	if a.dec.GreaterThan(b.dec) {
		return a
	}
	return b
}

// String renders with two decimal places, the way amounts appear on receipts.
func (m Money) String() string {
	return m.dec.StringFixed(2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("unmarshal amount %s: %w", string(b), err)
	}
	m.dec = d
	return nil
}
