package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"expenses/internal/core"
	applog "expenses/internal/log"
)

// Store is the part of services.ExpenseStore the session drives.
type Store interface {
	AddOrUpdate(ctx context.Context, name, priceText string) (bool, error)
	Remove(ctx context.Context, name string) error
	View(ctx context.Context) ([]core.Expense, error)
	Total() decimal.Decimal
	Find(name string) (decimal.Decimal, error)
	Export(ctx context.Context) (string, error)
	Clear(ctx context.Context, confirmation string) error
	Save(ctx context.Context) error
}

const menu = `
Expense Tracker:
1. Add an Expense
2. Remove an Expense
3. View Saved Expenses
4. Calculate Total Monthly Expenses
5. Search for an Expense
6. Export Expenses to CSV
7. Clear All Expenses
8. Exit
Choose an option: `

// errInputClosed ends the session when input runs out or the context is cancelled.
var errInputClosed = errors.New("input closed")

// Session is the interactive menu loop.
type Session struct {
	store  Store
	in     io.Reader
	out    io.Writer
	logger *applog.Logger

	lines <-chan string
}

func NewSession(store Store, in io.Reader, out io.Writer, logger *applog.Logger) *Session {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Session{
		store:  store,
		in:     in,
		out:    out,
		logger: logger.WithComponent(applog.ComponentSession),
	}
}

// Run shows the menu until the user exits, input ends or ctx is cancelled.
// Every way out performs a final save; its error is returned.
func (s *Session) Run(ctx context.Context) error {
	s.lines = readLines(ctx, s.in)

	for {
		fmt.Fprint(s.out, menu)
		choice, err := s.readLine(ctx)
		if err != nil {
			fmt.Fprintln(s.out)
			return s.exit(ctx)
		}

		switch choice {
		case "1":
			err = s.add(ctx)
		case "2":
			err = s.remove(ctx)
		case "3":
			s.view(ctx)
		case "4":
			s.total()
		case "5":
			err = s.search(ctx)
		case "6":
			s.export(ctx)
		case "7":
			err = s.clear(ctx)
		case "8":
			return s.exit(ctx)
		default:
			fmt.Fprintln(s.out, "Invalid choice. Please try again.")
		}

		if errors.Is(err, errInputClosed) {
			fmt.Fprintln(s.out)
			return s.exit(ctx)
		}
	}
}

func (s *Session) add(ctx context.Context) error {
	name, err := s.prompt(ctx, "Enter the name of the expense: ")
	if err != nil {
		return err
	}
	if err := core.ValidateName(name); err != nil {
		fmt.Fprintf(s.out, "Invalid name. Names cannot contain %q or line breaks.\n", core.Delimiter)
		return nil
	}

	priceText, err := s.prompt(ctx, "Enter the monthly price of the expense: ")
	if err != nil {
		return err
	}

	updated, err := s.store.AddOrUpdate(ctx, name, priceText)
	switch {
	case errors.Is(err, core.ErrInvalidInput):
		fmt.Fprintln(s.out, "Invalid price. Please enter a valid number.")
	case err != nil:
		fmt.Fprintf(s.out, "Failed to save expense: %v\n", err)
	default:
		if updated {
			fmt.Fprintln(s.out, "Expense already exists. Updating the price.")
		}
		fmt.Fprintln(s.out, "Expense added/updated successfully.")
	}
	return nil
}

func (s *Session) remove(ctx context.Context) error {
	name, err := s.prompt(ctx, "Enter the name of the expense to remove: ")
	if err != nil {
		return err
	}

	err = s.store.Remove(ctx, name)
	switch {
	case errors.Is(err, core.ErrNotFound):
		fmt.Fprintln(s.out, "Expense not found.")
	case err != nil:
		fmt.Fprintf(s.out, "Failed to remove expense: %v\n", err)
	default:
		fmt.Fprintln(s.out, "Expense removed successfully.")
	}
	return nil
}

func (s *Session) view(ctx context.Context) {
	expenses, err := s.store.View(ctx)
	if err != nil {
		fmt.Fprintf(s.out, "Could not reload saved expenses (%v); showing current session.\n", err)
	}

	if len(expenses) == 0 {
		fmt.Fprintln(s.out, "No expenses recorded.")
		return
	}

	fmt.Fprintln(s.out, "\nSaved Expenses:")
	for _, e := range expenses {
		fmt.Fprintf(s.out, "%s: %s\n", e.Name, core.DisplayPrice(e.Price))
	}
}

func (s *Session) total() {
	fmt.Fprintf(s.out, "\nTotal Monthly Expenses: %s\n", core.DisplayPrice(s.store.Total()))
}

func (s *Session) search(ctx context.Context) error {
	name, err := s.prompt(ctx, "Enter the name of the expense to search: ")
	if err != nil {
		return err
	}

	price, err := s.store.Find(name)
	if err != nil {
		fmt.Fprintln(s.out, "Expense not found.")
		return nil
	}
	fmt.Fprintf(s.out, "Found: %s costs %s\n", name, core.DisplayPrice(price))
	return nil
}

func (s *Session) export(ctx context.Context) {
	dest, err := s.store.Export(ctx)
	if dest != "" {
		fmt.Fprintf(s.out, "Expenses exported to %s successfully.\n", dest)
	}
	if err != nil {
		fmt.Fprintf(s.out, "Export failed: %v\n", err)
	}
}

func (s *Session) clear(ctx context.Context) error {
	confirmation, err := s.prompt(ctx, "Are you sure you want to clear all expenses? (yes/no): ")
	if err != nil {
		return err
	}

	err = s.store.Clear(ctx, confirmation)
	switch {
	case errors.Is(err, core.ErrCancelled):
		fmt.Fprintln(s.out, "Operation canceled.")
	case err != nil:
		fmt.Fprintf(s.out, "Failed to clear expenses: %v\n", err)
	default:
		fmt.Fprintln(s.out, "All expenses have been cleared.")
	}
	return nil
}

func (s *Session) exit(ctx context.Context) error {
	// The final save must not be skipped because ctx was cancelled.
	err := s.store.Save(context.WithoutCancel(ctx))
	if err != nil {
		s.logger.ErrorContext(ctx, "Final save failed", applog.FieldError, err)
		fmt.Fprintf(s.out, "Failed to save expenses: %v\n", err)
	}
	fmt.Fprintln(s.out, "Goodbye!")
	return err
}

func (s *Session) prompt(ctx context.Context, msg string) (string, error) {
	fmt.Fprint(s.out, msg)
	return s.readLine(ctx)
}

func (s *Session) readLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", errInputClosed
	case line, ok := <-s.lines:
		if !ok {
			return "", errInputClosed
		}
		return line, nil
	}
}

// readLines feeds input lines to the session so a blocked read does not
// keep a cancelled session alive. Lines have no length limit.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		br := bufio.NewReader(r)
		for {
			line, err := br.ReadString('\n')
			if line == "" && err != nil {
				return
			}
			line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return lines
}
