package services

import (
	"context"
	"sync"

	"github.com/attest-labs/reportgen/internal/core/domain"
	"github.com/attest-labs/reportgen/internal/core/ports/driven"
)

// --- Mock implementations shared across the package tests ---

// mockSearcher implements driven.SimilaritySearcher with canned hits per
// pool. A pool with no entry returns empty results, like a pool that was
// never indexed.
type mockSearcher struct {
	hits     map[string][]driven.SearchHit
	errs     map[string]error
	queries  []string
	searched []string
}

func (m *mockSearcher) Search(_ context.Context, pool, query string, k int, _ domain.RetrievalStrategy) ([]driven.SearchHit, error) {
	m.queries = append(m.queries, query)
	m.searched = append(m.searched, pool)
	if err := m.errs[pool]; err != nil {
		return nil, err
	}
	hits := m.hits[pool]
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// mockChat implements driven.ChatService with scripted responses returned
// in order. When the script runs out, fallback is returned. failAfter
// injects an error once that many calls have succeeded (0 disables).
type mockChat struct {
	mu        sync.Mutex
	script    []string
	fallback  string
	failAfter int
	failErr   error
	calls     int
	prompts   []string
	closed    bool
}

func (m *mockChat) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, msg := range messages {
		if msg.Role == "user" {
			m.prompts = append(m.prompts, msg.Content)
		}
	}

	if m.failErr != nil && m.calls >= m.failAfter {
		return "", m.failErr
	}

	m.calls++
	if len(m.script) > 0 {
		next := m.script[0]
		m.script = m.script[1:]
		return next, nil
	}
	return m.fallback, nil
}

func (m *mockChat) ModelName() string { return "mock-chat" }

func (m *mockChat) Ping(_ context.Context) error { return nil }

func (m *mockChat) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// mockChatFactory implements driven.ChatFactory.
type mockChatFactory struct {
	chat      driven.ChatService
	createErr error
	provider  string
	model     string
}

func (m *mockChatFactory) Create(provider, model string) (driven.ChatService, error) {
	m.provider = provider
	m.model = model
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.chat, nil
}

// mockPromptStore implements driven.PromptStore.
type mockPromptStore struct {
	sections    map[string][]domain.SectionDirective
	overarching map[string]string
	taxonomies  map[string]*domain.Taxonomy
	frameworks  []string
}

func (m *mockPromptStore) Sections(framework string) ([]domain.SectionDirective, error) {
	s, ok := m.sections[framework]
	if !ok {
		return nil, domain.ErrUnknownFramework
	}
	return s, nil
}

func (m *mockPromptStore) Overarching(framework string) (string, error) {
	return m.overarching[framework], nil
}

func (m *mockPromptStore) Taxonomy(framework string) (*domain.Taxonomy, error) {
	tax, ok := m.taxonomies[framework]
	if !ok {
		return nil, domain.ErrUnknownFramework
	}
	return tax, nil
}

func (m *mockPromptStore) Frameworks() ([]string, error) {
	return m.frameworks, nil
}

// mockRunStore implements driven.RunStore over a map.
type mockRunStore struct {
	mu       sync.Mutex
	runs     map[string]*domain.ReportRun
	writeErr error
}

func newMockRunStore() *mockRunStore {
	return &mockRunStore{runs: make(map[string]*domain.ReportRun)}
}

func (m *mockRunStore) Write(_ context.Context, run *domain.ReportRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.runs[run.RunID] = run
	return nil
}

func (m *mockRunStore) Read(_ context.Context, runID string) (*domain.ReportRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[runID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return run, nil
}

func (m *mockRunStore) List(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.runs))
	for id := range m.runs {
		ids = append(ids, id)
	}
	return ids, nil
}

// --- Shared helpers ---

func scoreOf(v float64) *float64 {
	return &v
}

func hit(docID string, page int, text string, score float64) driven.SearchHit {
	return driven.SearchHit{
		Text:     text,
		Metadata: map[string]any{"doc_id": docID, "page": page},
		Score:    scoreOf(score),
	}
}
