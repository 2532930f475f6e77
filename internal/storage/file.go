package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"expenses/internal/core"
	applog "expenses/internal/log"
)

// FileRepository stores the set as one `name|price` line per expense.
type FileRepository struct {
	path   string
	logger *applog.Logger
}

var _ Repository = (*FileRepository)(nil)

func NewFileRepository(path string, logger *applog.Logger) *FileRepository {
	if logger == nil {
		logger = applog.Discard()
	}
	return &FileRepository{
		path:   path,
		logger: logger.WithComponent(applog.ComponentStorage),
	}
}

// Load reads the backing file. Malformed lines are skipped.
func (r *FileRepository) Load(ctx context.Context) (core.ExpenseSet, error) {
	f, err := os.Open(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return core.NewExpenseSet(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open expenses file: %w", err)
	}
	defer f.Close()

	set, err := r.decode(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("read expenses file: %w", err)
	}

	r.logger.DebugContext(ctx, "Loaded expenses",
		applog.FieldPath, r.path,
		applog.FieldCount, len(set))
	return set, nil
}

// decode reads line by line with no length limit; a long line is parsed
// like any other.
func (r *FileRepository) decode(ctx context.Context, rd io.Reader) (core.ExpenseSet, error) {
	set := core.NewExpenseSet()
	br := bufio.NewReader(rd)
	lineNo := 0
	for {
		line, readErr := br.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, readErr
		}
		if line == "" && readErr != nil {
			break
		}

		lineNo++
		e, err := parseLine(strings.TrimSuffix(line, "\n"))
		if err != nil {
			r.logger.DebugContext(ctx, "Skipping malformed line",
				applog.FieldPath, r.path,
				applog.FieldLine, lineNo,
				applog.FieldError, err)
		} else {
			set[e.Name] = e.Price
		}

		if readErr != nil {
			break
		}
	}
	return set, nil
}

func parseLine(line string) (core.Expense, error) {
	line = strings.TrimSuffix(line, "\r")
	parts := strings.Split(line, core.Delimiter)
	if len(parts) != 2 {
		return core.Expense{}, fmt.Errorf("%w: want 2 fields, got %d", core.ErrMalformedLine, len(parts))
	}
	price, err := core.ParsePrice(parts[1])
	if err != nil {
		return core.Expense{}, fmt.Errorf("%w: %v", core.ErrMalformedLine, err)
	}
	return core.Expense{Name: parts[0], Price: price}, nil
}

func formatLine(e core.Expense) string {
	return e.Name + core.Delimiter + core.FormatPrice(e.Price)
}

// Save writes the set to a temporary file next to the backing file and
// renames it into place, so a failed write leaves the previous content intact.
func (r *FileRepository) Save(ctx context.Context, s core.ExpenseSet) error {
	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}

	w := bufio.NewWriter(tmp)
	for _, e := range s.Sorted() {
		if _, err := fmt.Fprintln(w, formatLine(e)); err != nil {
			return fmt.Errorf("write expense %q: %w", e.Name, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush expenses file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync expenses file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("replace expenses file: %w", err)
	}
	committed = true

	r.logger.DebugContext(ctx, "Saved expenses",
		applog.FieldPath, r.path,
		applog.FieldCount, len(s))
	return nil
}

func (r *FileRepository) Close() error {
	return nil
}
