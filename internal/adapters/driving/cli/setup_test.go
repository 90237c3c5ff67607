package cli

import (
	"context"
	"testing"

	configfile "github.com/attest-labs/reportgen/internal/adapters/driven/config/file"
	"github.com/attest-labs/reportgen/internal/core/domain"
)

// mockReportService records requests and replays canned results so that
// command tests never reach a model or the store.
type mockReportService struct {
	lastReq domain.ReportRequest
	run     *domain.ReportRun
	runErr  error
	events  []domain.ReportEvent
}

func (m *mockReportService) Run(_ context.Context, req domain.ReportRequest) (*domain.ReportRun, error) {
	m.lastReq = req
	if m.runErr != nil {
		return nil, m.runErr
	}
	return m.run, nil
}

func (m *mockReportService) RunStream(_ context.Context, req domain.ReportRequest) <-chan domain.ReportEvent {
	m.lastReq = req
	ch := make(chan domain.ReportEvent, len(m.events))
	for _, e := range m.events {
		ch <- e
	}
	close(ch)
	return ch
}

func (m *mockReportService) LoadRun(_ context.Context, runID string) (*domain.ReportRun, error) {
	if m.run != nil && m.run.RunID == runID {
		return m.run, nil
	}
	return nil, domain.ErrNotFound
}

// setupTestServices swaps the wired services for test doubles and returns
// the report mock plus a cleanup restoring the previous state. The prompt
// store is real and seeds into a temp directory, so section lookups behave
// as in production. initServices short-circuits while the mock is in place.
func setupTestServices(t *testing.T) (*mockReportService, func()) {
	t.Helper()

	prompts, err := configfile.NewPromptStore(t.TempDir())
	if err != nil {
		t.Fatalf("prompt store: %v", err)
	}

	prevSettings := appSettings
	prevPrompts := promptStore
	prevReport := reportService

	mock := &mockReportService{}
	appSettings = domain.AppSettings{DefaultProvider: domain.AIProviderOpenAI}
	promptStore = prompts
	reportService = mock

	return mock, func() {
		appSettings = prevSettings
		promptStore = prevPrompts
		reportService = prevReport
		resetCommandFlags()
	}
}

// resetCommandFlags clears flag-bound variables that persist between
// Execute calls on the shared root command.
func resetCommandFlags() {
	runScope = ""
	runSections = nil
	runOverrides = nil
	runGuidance = ""
	runProvider = ""
	runModel = ""
	runStrategy = ""
	runStream = false
	runCallback = ""
	runRAGDebug = false
	runID = ""
	sectionsJSON = false
	checkProvider = ""
	checkModel = ""
}
