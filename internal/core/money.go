// Package core provides the expense domain: the expense set, price parsing
// and the sentinel errors shared by the store and the session.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParsePrice converts user or file text into a decimal price.
//
// Surrounding whitespace is ignored. Negative values are accepted; there is
// no range check. Any other malformed input returns ErrInvalidInput.
//
// Examples:
//
//	ParsePrice("12.50") -> 12.5, nil
//	ParsePrice(" -3 ")  -> -3, nil
//	ParsePrice("abc")   -> 0, ErrInvalidInput
func ParsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty price", ErrInvalidInput)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: price %q", ErrInvalidInput, s)
	}
	return d, nil
}

// FormatPrice returns the price's default text form as stored on disk
// (12.5, not 12.50).
func FormatPrice(d decimal.Decimal) string {
	return d.String()
}

// DisplayPrice formats a price for the terminal with two decimals.
func DisplayPrice(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
