package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"expenses/internal/core"
	applog "expenses/internal/log"
)

var csvHeader = []string{"Name", "Price"}

// CSVExporter writes `Name,Price` followed by one row per expense.
// Fields are quoted when they contain commas, quotes or line breaks.
type CSVExporter struct {
	path   string
	logger *applog.Logger
}

var _ Exporter = (*CSVExporter)(nil)

func NewCSVExporter(path string, logger *applog.Logger) *CSVExporter {
	if logger == nil {
		logger = applog.Discard()
	}
	return &CSVExporter{path: path, logger: logger.WithComponent(applog.ComponentExport)}
}

func (e *CSVExporter) Export(ctx context.Context, s core.ExpenseSet) (string, error) {
	f, err := os.Create(e.path)
	if err != nil {
		return "", fmt.Errorf("create csv file: %w", err)
	}

	if err := WriteCSV(f, s); err != nil {
		f.Close()
		return "", fmt.Errorf("write csv file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close csv file: %w", err)
	}

	e.logger.InfoContext(ctx, "Exported expenses to CSV",
		applog.FieldPath, e.path,
		applog.FieldCount, len(s))
	return e.path, nil
}

// WriteCSV renders the set, ordered by name, to w.
func WriteCSV(w io.Writer, s core.ExpenseSet) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range s.Sorted() {
		if err := writer.Write([]string{e.Name, core.FormatPrice(e.Price)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
