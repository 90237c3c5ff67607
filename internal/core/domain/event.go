package domain

// Stream event names. A consumer always receives a well-formed terminal
// event: either EventEnd or EventError.
const (
	// EventStart opens the stream once the run is outlined.
	EventStart = "start"

	// EventSectionStart marks the beginning of one section's rendering.
	EventSectionStart = "section_start"

	// EventSectionText carries a finalized section's full text.
	// Sections are not sub-token-streamed.
	EventSectionText = "section_text"

	// EventEnd closes the stream after the run is persisted.
	EventEnd = "end"

	// EventError closes the stream when generation failed.
	EventError = "error"

	// EventPersisted is the extra informational event emitted by push
	// delivery once the stored artifact has been confirmed.
	EventPersisted = "persisted"
)

// ReportEvent is one incremental progress event of a streaming run.
type ReportEvent struct {
	Event string `json:"event"`
	RunID string `json:"run_id"`

	// Framework and Firm are context fields, always set in push delivery.
	Framework string `json:"framework,omitempty"`
	Firm      string `json:"firm,omitempty"`

	// SectionID and SectionName are set on section-scoped events.
	SectionID   string `json:"section_id,omitempty"`
	SectionName string `json:"section_name,omitempty"`

	// Text is the section narrative on EventSectionText.
	Text string `json:"text,omitempty"`

	// Message is the human-readable failure description on EventError.
	Message string `json:"message,omitempty"`

	// OK is true on EventEnd.
	OK bool `json:"ok,omitempty"`
}
