package driven

import (
	"context"

	"github.com/attest-labs/reportgen/internal/core/domain"
)

// RunStore persists finished report runs. The store is append-only from the
// orchestrator's perspective: a run is written once, fully materialized, and
// never mutated afterward.
type RunStore interface {
	// Write stores a run atomically under its RunID.
	Write(ctx context.Context, run *domain.ReportRun) error

	// Read loads a run by id. Returns domain.ErrNotFound when absent.
	Read(ctx context.Context, runID string) (*domain.ReportRun, error)

	// List returns the ids of all persisted runs, newest first.
	List(ctx context.Context) ([]string, error)
}
