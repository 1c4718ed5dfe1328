// Package money provides currency-safe monetary values using integer cents.
// It wraps go-money for arithmetic and formatting and shopspring/decimal for
// precise construction from decimal amounts.
package money

import (
	"encoding/json"
	"errors"
	"fmt"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Common currency codes (ISO-4217).
const (
	USD = "USD"
	EUR = "EUR"
)

// Money represents a monetary value with currency. The zero value is not
// usable; construct values with New or NewFromDecimal.
type Money struct {
	m *gomoney.Money
}

// New creates a Money value from cents (minor units) and a currency code.
func New(amountCents int64, currencyCode string) *Money {
	return &Money{m: gomoney.New(amountCents, currencyCode)}
}

// NewFromDecimal creates Money from a decimal amount in major units.
// This is the preferred constructor for parsed amounts.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) *Money {
	currency := gomoney.GetCurrency(currencyCode)
	if currency == nil {
		currency = gomoney.GetCurrency(USD)
	}

	multiplier := decimal.New(1, int32(currency.Fraction))
	cents := amount.Mul(multiplier).Round(0).IntPart()
	return New(cents, currency.Code)
}

// Zero returns a zero value in the given currency.
func Zero(currencyCode string) *Money {
	return New(0, currencyCode)
}

// Amount returns the value in cents (minor units).
func (m *Money) Amount() int64 {
	return m.m.Amount()
}

// Currency returns the ISO-4217 currency code.
func (m *Money) Currency() string {
	return m.m.Currency().Code
}

// IsPositive reports whether the value is greater than zero.
func (m *Money) IsPositive() bool {
	return m.m.IsPositive()
}

// Add returns the sum of two values of the same currency.
func (m *Money) Add(other *Money) (*Money, error) {
	sum, err := m.m.Add(other.m)
	if err != nil {
		return nil, fmt.Errorf("failed to add money values: %w", err)
	}
	return &Money{m: sum}, nil
}

// Equals reports whether two values have the same currency and amount.
func (m *Money) Equals(other *Money) bool {
	eq, err := m.m.Equals(other.m)
	return err == nil && eq
}

// ToDecimal returns the value in major units as a decimal.
func (m *Money) ToDecimal() decimal.Decimal {
	return decimal.New(m.m.Amount(), -int32(m.m.Currency().Fraction))
}

// Display returns a formatted string for display, e.g. "$1,234.56".
func (m *Money) Display() string {
	return m.m.Display()
}

// String implements fmt.Stringer.
func (m *Money) String() string {
	return m.Display()
}

type moneyJSON struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Display  string `json:"display"`
}

// MarshalJSON encodes the value as cents, currency code and display string.
func (m *Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{
		Amount:   m.Amount(),
		Currency: m.Currency(),
		Display:  m.Display(),
	})
}

// UnmarshalJSON decodes a value produced by MarshalJSON.
func (m *Money) UnmarshalJSON(data []byte) error {
	var v moneyJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.Currency == "" {
		return errors.New("money: missing currency code")
	}
	m.m = gomoney.New(v.Amount, v.Currency)
	return nil
}
