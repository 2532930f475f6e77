// Package storage persists the expense set. Every implementation replaces
// the stored contents wholesale on Save.
package storage

import (
	"context"

	"expenses/internal/core"
)

// Repository loads and saves the complete expense set.
type Repository interface {
	// Load returns the persisted set. A repository with nothing stored yet
	// returns an empty set, not an error.
	Load(ctx context.Context) (core.ExpenseSet, error)
	// Save replaces the persisted set with s.
	Save(ctx context.Context, s core.ExpenseSet) error
	Close() error
}
