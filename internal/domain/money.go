package domain

import (
	"github.com/shopspring/decimal"
)

// Money is a decimal amount that always renders with two decimal places.
// It scans from and binds to NUMERIC columns through the embedded decimal.
type Money struct {
	decimal.Decimal
}

// NewMoney rounds d to cents.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d.Round(2)}
}

// MoneyFromString parses s and rounds it to cents.
func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return NewMoney(d), nil
}

func (m Money) String() string {
	return m.StringFixed(2)
}

// MarshalJSON emits a bare JSON number such as 19.90.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.StringFixed(2)), nil
}
