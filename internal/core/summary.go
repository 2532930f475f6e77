package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Total sums every price in the set. An empty set totals zero.
func (s ExpenseSet) Total() decimal.Decimal {
	total := decimal.Zero
	for _, price := range s {
		total = total.Add(price)
	}
	return total
}

// Sorted returns the expenses ordered by name.
func (s ExpenseSet) Sorted() []Expense {
	out := make([]Expense, 0, len(s))
	for name, price := range s {
		out = append(out, Expense{Name: name, Price: price})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
