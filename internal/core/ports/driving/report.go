package driving

import (
	"context"

	"github.com/attest-labs/reportgen/internal/core/domain"
)

// ReportService generates and loads compliance-assessment report runs.
type ReportService interface {
	// Run executes one report generation to completion and returns the
	// persisted run.
	Run(ctx context.Context, req domain.ReportRequest) (*domain.ReportRun, error)

	// RunStream executes one report generation, emitting progress events
	// as they are produced. The channel is closed after a terminal event
	// (end or error); consumers always receive a well-formed terminal
	// event, never a bare channel close on failure.
	RunStream(ctx context.Context, req domain.ReportRequest) <-chan domain.ReportEvent

	// LoadRun reads a persisted run by id.
	LoadRun(ctx context.Context, runID string) (*domain.ReportRun, error)
}

// FindingsService evaluates a firm against a framework's requirement
// taxonomy, independent of section rendering.
type FindingsService interface {
	// BuildFindings produces the structured finding checklist.
	BuildFindings(ctx context.Context, framework, firm, scope string) ([]domain.Finding, error)
}
