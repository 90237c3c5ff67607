package domain

// SectionDirective describes one report section to render.
type SectionDirective struct {
	// ID is unique within a framework configuration.
	ID string `json:"id" yaml:"id"`

	// Name is the display title. Section output is keyed by this name.
	Name string `json:"name" yaml:"name"`

	// Position defines render and output order (ascending).
	Position int `json:"position" yaml:"position"`

	// Prompt is the effective instruction text for the section. A caller
	// override takes precedence over the stored default.
	Prompt string `json:"prompt" yaml:"default_prompt"`

	// Enabled marks the section as selectable. Filtering disabled sections
	// is the configuration layer's concern, not the orchestrator's.
	Enabled bool `json:"enabled" yaml:"enabled"`
}
