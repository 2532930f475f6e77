package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Delimiter separates the name and the price in the flat backing file.
const Delimiter = "|"

type (
	// Expense is a single named monthly cost.
	Expense struct {
		Name  string
		Price decimal.Decimal
	}

	// ExpenseSet maps an expense name to its monthly price.
	ExpenseSet map[string]decimal.Decimal
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("expense not found")
	ErrCancelled     = errors.New("operation cancelled")
	ErrMalformedLine = errors.New("malformed line")
)

// NewExpenseSet returns an empty set.
func NewExpenseSet() ExpenseSet {
	return make(ExpenseSet)
}

// ValidateName rejects names that would not survive a round trip through
// the backing file.
func ValidateName(name string) error {
	if strings.Contains(name, Delimiter) {
		return fmt.Errorf("%w: name cannot contain %q", ErrInvalidInput, Delimiter)
	}
	if strings.ContainsAny(name, "\r\n") {
		return fmt.Errorf("%w: name cannot contain line breaks", ErrInvalidInput)
	}
	return nil
}

// Clone returns an independent copy of the set.
func (s ExpenseSet) Clone() ExpenseSet {
	out := make(ExpenseSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Equal reports whether both sets hold the same names with numerically equal prices.
func (s ExpenseSet) Equal(other ExpenseSet) bool {
	if len(s) != len(other) {
		return false
	}
	for k, v := range s {
		ov, ok := other[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}
