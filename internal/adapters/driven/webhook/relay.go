// Package webhook delivers stream events to an external callback endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/attest-labs/reportgen/internal/core/domain"
	"github.com/attest-labs/reportgen/internal/core/ports/driven"
	"github.com/attest-labs/reportgen/internal/logger"
)

// Ensure Relay implements the interface.
var _ driven.EventSink = (*Relay)(nil)

// DefaultTimeout bounds one delivery attempt.
const DefaultTimeout = 10 * time.Second

// Relay posts report events to a callback URL as JSON, one request per
// event. Delivery is best-effort: failures are logged and swallowed so a
// slow or broken consumer never aborts the run producing the events.
//
// After a successful end event, the relay confirms the run record is
// readable from the store and sends one extra persisted event.
type Relay struct {
	client *http.Client
	url    string
	runs   driven.RunStore
}

// NewRelay creates a relay for the given callback URL. The run store is
// optional; without it the persisted confirmation event is skipped.
func NewRelay(callbackURL string, runs driven.RunStore) (*Relay, error) {
	if callbackURL == "" {
		return nil, fmt.Errorf("%w: callback URL is required", domain.ErrInvalidInput)
	}

	return &Relay{
		client: &http.Client{Timeout: DefaultTimeout},
		url:    callbackURL,
		runs:   runs,
	}, nil
}

// Deliver sends one event to the callback endpoint. The returned error is
// informational; callers log it and continue.
func (r *Relay) Deliver(ctx context.Context, event domain.ReportEvent) error {
	if err := r.post(ctx, event); err != nil {
		logger.Warn("Callback delivery failed for %s event: %v", event.Event, err)
		return err
	}

	if event.Event == domain.EventEnd {
		r.confirmPersisted(ctx, event)
	}
	return nil
}

// confirmPersisted reads the run back and sends the informational
// persisted event. Both steps are best-effort.
func (r *Relay) confirmPersisted(ctx context.Context, end domain.ReportEvent) {
	if r.runs == nil {
		return
	}

	if _, err := r.runs.Read(ctx, end.RunID); err != nil {
		logger.Warn("Persisted confirmation skipped for run %s: %v", end.RunID, err)
		return
	}

	confirm := domain.ReportEvent{
		Event:     domain.EventPersisted,
		RunID:     end.RunID,
		Framework: end.Framework,
		Firm:      end.Firm,
		OK:        true,
	}
	if err := r.post(ctx, confirm); err != nil {
		logger.Warn("Callback delivery failed for persisted event: %v", err)
	}
}

// post sends one JSON-encoded event.
func (r *Relay) post(ctx context.Context, event domain.ReportEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("callback returned status %d", resp.StatusCode)
	}
	return nil
}
