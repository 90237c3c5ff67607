package driven

import (
	"context"

	"github.com/attest-labs/reportgen/internal/core/domain"
)

// EventSink receives stream events for push delivery to an external
// callback endpoint. Delivery is best-effort: a failed attempt must be
// logged and swallowed, never aborting the run that produced the event.
type EventSink interface {
	// Deliver sends one event. The returned error is informational;
	// callers log it and continue.
	Deliver(ctx context.Context, event domain.ReportEvent) error
}
