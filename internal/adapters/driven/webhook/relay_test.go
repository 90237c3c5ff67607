package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attest-labs/reportgen/internal/core/domain"
)

// capturingServer records every event posted to it.
type capturingServer struct {
	mu     sync.Mutex
	events []domain.ReportEvent
	status int
	srv    *httptest.Server
}

func newCapturingServer(t *testing.T) *capturingServer {
	t.Helper()
	c := &capturingServer{status: http.StatusOK}
	c.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var ev domain.ReportEvent
		require.NoError(t, json.NewDecoder(r.Body).Decode(&ev))

		c.mu.Lock()
		c.events = append(c.events, ev)
		status := c.status
		c.mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(c.srv.Close)
	return c
}

func (c *capturingServer) received() []domain.ReportEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.ReportEvent, len(c.events))
	copy(out, c.events)
	return out
}

// memoryRuns is a RunStore stub holding a fixed set of run ids.
type memoryRuns struct {
	known map[string]*domain.ReportRun
}

func (m *memoryRuns) Write(_ context.Context, run *domain.ReportRun) error {
	m.known[run.RunID] = run
	return nil
}

func (m *memoryRuns) Read(_ context.Context, runID string) (*domain.ReportRun, error) {
	run, ok := m.known[runID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return run, nil
}

func (m *memoryRuns) List(_ context.Context) ([]string, error) { return nil, nil }

func TestRelayDeliver(t *testing.T) {
	ctx := context.Background()

	t.Run("posts each event as JSON", func(t *testing.T) {
		server := newCapturingServer(t)
		relay, err := NewRelay(server.srv.URL, nil)
		require.NoError(t, err)

		require.NoError(t, relay.Deliver(ctx, domain.ReportEvent{
			Event: domain.EventSectionText, RunID: "r1", SectionID: "exec_summary", Text: "body",
		}))

		events := server.received()
		require.Len(t, events, 1)
		assert.Equal(t, domain.EventSectionText, events[0].Event)
		assert.Equal(t, "exec_summary", events[0].SectionID)
		assert.Equal(t, "body", events[0].Text)
	})

	t.Run("end event confirms persistence", func(t *testing.T) {
		server := newCapturingServer(t)
		runs := &memoryRuns{known: map[string]*domain.ReportRun{
			"r-done": {RunID: "r-done"},
		}}
		relay, err := NewRelay(server.srv.URL, runs)
		require.NoError(t, err)

		require.NoError(t, relay.Deliver(ctx, domain.ReportEvent{
			Event: domain.EventEnd, RunID: "r-done", Framework: "osfi_b13", Firm: "acme", OK: true,
		}))

		events := server.received()
		require.Len(t, events, 2)
		assert.Equal(t, domain.EventEnd, events[0].Event)
		assert.Equal(t, domain.EventPersisted, events[1].Event)
		assert.Equal(t, "r-done", events[1].RunID)
		assert.Equal(t, "osfi_b13", events[1].Framework)
		assert.True(t, events[1].OK)
	})

	t.Run("unreadable run skips the confirmation", func(t *testing.T) {
		server := newCapturingServer(t)
		runs := &memoryRuns{known: map[string]*domain.ReportRun{}}
		relay, err := NewRelay(server.srv.URL, runs)
		require.NoError(t, err)

		require.NoError(t, relay.Deliver(ctx, domain.ReportEvent{
			Event: domain.EventEnd, RunID: "r-ghost", OK: true,
		}))

		events := server.received()
		require.Len(t, events, 1)
		assert.Equal(t, domain.EventEnd, events[0].Event)
	})

	t.Run("non-2xx response is reported", func(t *testing.T) {
		server := newCapturingServer(t)
		server.status = http.StatusBadGateway
		relay, err := NewRelay(server.srv.URL, nil)
		require.NoError(t, err)

		err = relay.Deliver(ctx, domain.ReportEvent{Event: domain.EventStart, RunID: "r1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("unreachable endpoint is reported", func(t *testing.T) {
		server := newCapturingServer(t)
		url := server.srv.URL
		server.srv.Close()

		relay, err := NewRelay(url, nil)
		require.NoError(t, err)

		err = relay.Deliver(ctx, domain.ReportEvent{Event: domain.EventStart, RunID: "r1"})
		require.Error(t, err)
	})

	t.Run("empty callback URL is rejected", func(t *testing.T) {
		_, err := NewRelay("", nil)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}
