package export

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"

	"expenses/internal/core"
)

// Multi runs several exporters in parallel. One failing destination does
// not stop the others; every failure is reported in the joined error.
type Multi struct {
	exporters []Exporter
}

var _ Exporter = (*Multi)(nil)

func NewMulti(exporters ...Exporter) *Multi {
	return &Multi{exporters: exporters}
}

// Export returns the comma-separated destinations that succeeded.
func (m *Multi) Export(ctx context.Context, s core.ExpenseSet) (string, error) {
	dests := make([]string, len(m.exporters))
	errs := make([]error, len(m.exporters))

	var g errgroup.Group
	for i, exp := range m.exporters {
		i, exp := i, exp
		g.Go(func() error {
			dests[i], errs[i] = exp.Export(ctx, s)
			return nil
		})
	}
	_ = g.Wait()

	done := make([]string, 0, len(dests))
	for i, d := range dests {
		if errs[i] == nil && d != "" {
			done = append(done, d)
		}
	}
	return strings.Join(done, ", "), errors.Join(errs...)
}
