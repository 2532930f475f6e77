package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateName(t *testing.T) {
	cases := []struct {
		name string
		ok   bool
	}{
		{"rent", true},
		{"gym, pool", true},
		{"", true},
		{"a|b", false},
		{"line\nbreak", false},
		{"carriage\rreturn", false},
	}
	for _, tc := range cases {
		err := ValidateName(tc.name)
		if tc.ok && err != nil {
			t.Fatalf("%q expected ok, got %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%q expected ErrInvalidInput, got %v", tc.name, err)
		}
	}
}

func TestExpenseSetTotal(t *testing.T) {
	if got := NewExpenseSet().Total(); !got.IsZero() {
		t.Fatalf("empty total = %s, want 0", got)
	}
	s := ExpenseSet{
		"a": decimal.NewFromInt(10),
		"b": decimal.RequireFromString("5.5"),
	}
	if got := s.Total(); !got.Equal(decimal.RequireFromString("15.5")) {
		t.Fatalf("total = %s, want 15.5", got)
	}
}

func TestExpenseSetSorted(t *testing.T) {
	s := ExpenseSet{
		"rent":  decimal.NewFromInt(1200),
		"gym":   decimal.NewFromInt(30),
		"phone": decimal.NewFromInt(20),
	}
	got := s.Sorted()
	want := []string{"gym", "phone", "rent"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, e := range got {
		if e.Name != want[i] {
			t.Fatalf("position %d = %q, want %q", i, e.Name, want[i])
		}
	}
}

func TestExpenseSetCloneAndEqual(t *testing.T) {
	s := ExpenseSet{"rent": decimal.NewFromInt(1200)}
	c := s.Clone()
	if !s.Equal(c) {
		t.Fatalf("clone should equal original")
	}
	c["rent"] = decimal.NewFromInt(1)
	if s.Equal(c) {
		t.Fatalf("mutating the clone should not affect the original")
	}
	if !s["rent"].Equal(decimal.NewFromInt(1200)) {
		t.Fatalf("original changed: %s", s["rent"])
	}
	if !(ExpenseSet{"a": decimal.RequireFromString("1.50")}).Equal(ExpenseSet{"a": decimal.RequireFromString("1.5")}) {
		t.Fatalf("numerically equal prices should compare equal")
	}
}
