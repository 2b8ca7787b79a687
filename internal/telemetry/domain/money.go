package domain

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Money is a monetary sum rounded to two decimal places. It marshals as a
// JSON number with exactly two fractional digits.
type Money struct {
	d decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{d: d.Round(2)}
}

func MustMoney(s string) Money {
	return NewMoney(decimal.RequireFromString(s))
}

func (m Money) Decimal() decimal.Decimal {
	return m.d
}

func (m Money) Add(other Money) Money {
	return NewMoney(m.d.Add(other.d))
}

func (m Money) String() string {
	return m.d.StringFixed(2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*m = Money{}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return err
	}
	*m = NewMoney(d)
	return nil
}
