package domain

import "time"

// ReportRun is the persisted artifact of one report-generation run.
// It is created whole by one orchestration, written once, and never
// updated in place.
type ReportRun struct {
	// RunID is the opaque unique identifier of the run.
	RunID string `json:"run_id"`

	// Framework is the regulatory framework key (e.g. "osfi_b13").
	Framework string `json:"framework"`

	// Firm is the assessed firm key.
	Firm string `json:"firm"`

	// Scope is optional free-text scoping supplied by the caller.
	Scope string `json:"scope,omitempty"`

	// SelectedSections lists section display names in output order.
	SelectedSections []string `json:"selected_sections"`

	// Sections maps section display name to the final narrative text.
	Sections map[string]string `json:"sections"`

	// Findings are the structured requirement-level findings for the run.
	Findings []Finding `json:"findings"`

	// RAGDebug maps section id to the evidence consulted while rendering
	// it. Populated only when debug output was requested.
	RAGDebug map[string][]EvidenceChunk `json:"rag_debug,omitempty"`

	// CreatedAt is when the run record was assembled.
	CreatedAt time.Time `json:"created_at"`
}

// ReportRequest carries everything one orchestration needs.
type ReportRequest struct {
	// Framework is the regulatory framework key.
	Framework string

	// Firm is the assessed firm key.
	Firm string

	// Scope is optional free-text scoping.
	Scope string

	// SelectedSectionIDs names the sections to render, by id. Order does
	// not matter; rendering follows each section's configured position.
	SelectedSectionIDs []string

	// PromptOverrides maps section id to an instruction that replaces the
	// section's stored default prompt.
	PromptOverrides map[string]string

	// OverarchingPrompt is operator guidance applied to every section.
	OverarchingPrompt string

	// Provider and Model select the chat-completion backend.
	Provider string
	Model    string

	// Strategy selects the retrieval ranking strategy.
	Strategy RetrievalStrategy

	// IncludeRAGDebug records the evidence trace per section.
	IncludeRAGDebug bool

	// RunID, when set, is used for the persisted record and every stream
	// event. Callers supply it to correlate asynchronous delivery.
	RunID string
}
