// Package export writes the expense set to spreadsheet-friendly destinations.
package export

import (
	"context"

	"expenses/internal/core"
)

// Exporter writes a snapshot of the set and returns a description of where it went.
type Exporter interface {
	Export(ctx context.Context, s core.ExpenseSet) (dest string, err error)
}
