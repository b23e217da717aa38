// Package valueobject holds small immutable values shared by the domains.
package valueobject

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyCode is the only currency the shop trades in
const CurrencyCode = "KES"

// Money is an amount in Kenyan shillings. Arithmetic never rounds; rounding
// happens only when an amount is rendered.
type Money struct {
	amount decimal.Decimal
}

// KES wraps a decimal amount
func KES(amount decimal.Decimal) Money {
	return Money{amount: amount}
}

// Zero is KES 0
func Zero() Money {
	return Money{amount: decimal.Zero}
}

// Sum adds up amounts, returning KES 0 for none
func Sum(amounts ...Money) Money {
	total := decimal.Zero
	for _, m := range amounts {
		total = total.Add(m.amount)
	}
	return Money{amount: total}
}

func (m Money) Amount() decimal.Decimal { return m.amount }

func (m Money) IsZero() bool { return m.amount.IsZero() }

func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Times is the line total for quantity units priced at m
func (m Money) Times(quantity int) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(int64(quantity)))}
}

// StringFixed renders the bare amount with the given decimal places
func (m Money) StringFixed(places int32) string {
	return m.amount.StringFixed(places)
}

// FormatWhole renders whole shillings with thousands separators, the way
// prices appear on the site and in order messages: 12999.50 -> "12,999".
// Cents are truncated toward zero.
func (m Money) FormatWhole() string {
	digits := m.amount.Truncate(0).String()
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}

	var b strings.Builder
	b.WriteString(sign)
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return b.String()
}

// String renders "KES 12,999"
func (m Money) String() string {
	return CurrencyCode + " " + m.FormatWhole()
}

// MarshalJSON writes the amount as a string with two decimals, matching the
// API's decimal fields
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.amount.StringFixed(2) + `"`), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	return m.amount.UnmarshalJSON(data)
}
