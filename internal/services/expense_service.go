package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"expenses/internal/core"
	"expenses/internal/events"
	"expenses/internal/export"
	applog "expenses/internal/log"
	"expenses/internal/storage"
)

// ChangePublisher announces mutations after they have been persisted.
type ChangePublisher interface {
	PublishExpenseChanged(ctx context.Context, action string, e core.Expense) error
}

// ExpenseStore owns the in-memory expense set for one session and keeps the
// repository in sync with it after every mutation.
type ExpenseStore struct {
	repo      storage.Repository
	exporter  export.Exporter
	publisher ChangePublisher
	logger    *applog.Logger

	expenses core.ExpenseSet
}

// NewExpenseStore wires a store. exporter and publisher may be nil.
func NewExpenseStore(repo storage.Repository, exporter export.Exporter, publisher ChangePublisher, logger *applog.Logger) *ExpenseStore {
	if logger == nil {
		logger = applog.Discard()
	}
	return &ExpenseStore{
		repo:      repo,
		exporter:  exporter,
		publisher: publisher,
		logger:    logger.WithComponent(applog.ComponentStore),
		expenses:  core.NewExpenseSet(),
	}
}

// Open loads the persisted set into memory.
func (s *ExpenseStore) Open(ctx context.Context) error {
	set, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load expenses: %w", err)
	}
	s.expenses = set
	s.logger.InfoContext(ctx, "Expenses loaded", applog.FieldCount, len(set))
	return nil
}

// AddOrUpdate parses priceText and stores it under name. updated reports
// whether an existing entry was overwritten. Invalid input leaves the set
// and the repository untouched.
func (s *ExpenseStore) AddOrUpdate(ctx context.Context, name, priceText string) (updated bool, err error) {
	if err := core.ValidateName(name); err != nil {
		return false, err
	}
	price, err := core.ParsePrice(priceText)
	if err != nil {
		return false, err
	}

	prev, existed := s.expenses[name]
	s.expenses[name] = price
	if err := s.persist(ctx); err != nil {
		if existed {
			s.expenses[name] = prev
		} else {
			delete(s.expenses, name)
		}
		return false, err
	}

	action := events.ActionAdd
	if existed {
		action = events.ActionUpdate
	}
	s.logger.InfoContext(ctx, "Expense stored",
		applog.NewFields().WithOperation(action).WithExpense(name, price).ToSlice()...)
	s.publish(ctx, action, core.Expense{Name: name, Price: price})
	return existed, nil
}

// Remove deletes name. An absent name returns core.ErrNotFound and nothing is saved.
func (s *ExpenseStore) Remove(ctx context.Context, name string) error {
	prev, ok := s.expenses[name]
	if !ok {
		return fmt.Errorf("remove %q: %w", name, core.ErrNotFound)
	}

	delete(s.expenses, name)
	if err := s.persist(ctx); err != nil {
		s.expenses[name] = prev
		return err
	}

	s.logger.InfoContext(ctx, "Expense removed",
		applog.FieldOperation, applog.OpRemove,
		applog.FieldExpenseName, name)
	s.publish(ctx, events.ActionRemove, core.Expense{Name: name})
	return nil
}

// Find returns the price stored under name.
func (s *ExpenseStore) Find(name string) (decimal.Decimal, error) {
	price, ok := s.expenses[name]
	if !ok {
		return decimal.Zero, fmt.Errorf("find %q: %w", name, core.ErrNotFound)
	}
	return price, nil
}

// Total sums the in-memory set.
func (s *ExpenseStore) Total() decimal.Decimal {
	return s.expenses.Total()
}

// Clear empties the set when confirmation is "yes" in any letter case.
// Anything else, surrounding spaces included, returns core.ErrCancelled
// without touching the set.
func (s *ExpenseStore) Clear(ctx context.Context, confirmation string) error {
	if !strings.EqualFold(confirmation, "yes") {
		return core.ErrCancelled
	}

	prev := s.expenses
	s.expenses = core.NewExpenseSet()
	if err := s.persist(ctx); err != nil {
		s.expenses = prev
		return err
	}

	s.logger.InfoContext(ctx, "Expenses cleared",
		applog.FieldOperation, applog.OpClear,
		applog.FieldCount, len(prev))
	s.publish(ctx, events.ActionClear, core.Expense{})
	return nil
}

// View re-reads the repository and returns its contents ordered by name.
// If the reload fails the in-memory set is returned together with the error.
func (s *ExpenseStore) View(ctx context.Context) ([]core.Expense, error) {
	set, err := s.repo.Load(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Reload failed, showing in-memory expenses",
			applog.FieldOperation, applog.OpView,
			applog.FieldError, err)
		return s.expenses.Sorted(), fmt.Errorf("reload expenses: %w", err)
	}
	return set.Sorted(), nil
}

// Export writes the in-memory set to the configured exporter.
func (s *ExpenseStore) Export(ctx context.Context) (string, error) {
	if s.exporter == nil {
		return "", errors.New("no exporter configured")
	}
	dest, err := s.exporter.Export(ctx, s.expenses)
	if err != nil {
		s.logger.ErrorContext(ctx, "Export failed",
			applog.FieldOperation, applog.OpExport,
			applog.FieldError, err)
		return dest, fmt.Errorf("export expenses: %w", err)
	}
	return dest, nil
}

// Save persists the current set. The session calls it once more on exit.
func (s *ExpenseStore) Save(ctx context.Context) error {
	return s.persist(ctx)
}

// Snapshot returns a copy of the in-memory set.
func (s *ExpenseStore) Snapshot() core.ExpenseSet {
	return s.expenses.Clone()
}

func (s *ExpenseStore) persist(ctx context.Context) error {
	if err := s.repo.Save(ctx, s.expenses); err != nil {
		s.logger.ErrorContext(ctx, "Save failed",
			applog.FieldOperation, applog.OpSave,
			applog.FieldError, err)
		return fmt.Errorf("save expenses: %w", err)
	}
	return nil
}

func (s *ExpenseStore) publish(ctx context.Context, action string, e core.Expense) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExpenseChanged(ctx, action, e); err != nil {
		// The change is already persisted.
		s.logger.WarnContext(ctx, "Failed to publish expense change",
			applog.FieldAction, action,
			applog.FieldExpenseName, e.Name,
			applog.FieldError, err)
	}
}

// Close releases the repository and the publisher, if it holds resources.
func (s *ExpenseStore) Close() error {
	var errs []error

	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("events: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense store: %v", errs)
	}

	return nil
}
