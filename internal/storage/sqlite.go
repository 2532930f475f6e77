package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"expenses/internal/core"
	applog "expenses/internal/log"

	_ "modernc.org/sqlite"
)

// SQLiteRepository keeps the set in a single expenses table.
type SQLiteRepository struct {
	db     *sql.DB
	logger *applog.Logger
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string, logger *applog.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := RunMigrations(dbPath, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:     db,
		logger: logger.WithComponent(applog.ComponentStorage),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load returns every stored row. Rows whose price no longer parses are skipped.
func (r *SQLiteRepository) Load(ctx context.Context) (core.ExpenseSet, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, price FROM expenses`)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	set := core.NewExpenseSet()
	for rows.Next() {
		var name, priceText string
		if err := rows.Scan(&name, &priceText); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		price, err := core.ParsePrice(priceText)
		if err != nil {
			r.logger.WarnContext(ctx, "Skipping malformed row",
				applog.FieldExpenseName, name,
				applog.FieldError, err)
			continue
		}
		set[name] = price
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}

	r.logger.DebugContext(ctx, "Loaded expenses from SQLite", applog.FieldCount, len(set))
	return set, nil
}

// Save replaces the table contents in one transaction.
func (r *SQLiteRepository) Save(ctx context.Context, s core.ExpenseSet) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM expenses`); err != nil {
		return fmt.Errorf("delete expenses: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO expenses (name, price) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range s.Sorted() {
		if _, err := stmt.ExecContext(ctx, e.Name, core.FormatPrice(e.Price)); err != nil {
			return fmt.Errorf("insert expense %q: %w", e.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	r.logger.DebugContext(ctx, "Saved expenses to SQLite", applog.FieldCount, len(s))
	return nil
}
