package domain

// Assessment labels form a small closed set.
const (
	// AssessmentMeets marks a requirement with supporting firm evidence.
	AssessmentMeets = "Meets"

	// AssessmentUnknown marks a requirement with no clear evidence.
	AssessmentUnknown = "Unknown"
)

// Finding is one evaluated regulatory micro-requirement. Findings are
// produced once per run and not mutated afterward.
type Finding struct {
	// ID is "<control_id>.<requirement_id>".
	ID string `json:"id"`

	// ControlID and ControlName identify the parent control.
	ControlID   string `json:"control_id"`
	ControlName string `json:"control_name"`

	// RequirementID identifies the micro-requirement within the control.
	RequirementID string `json:"micro_requirement_id"`

	// Claim is the requirement text or question being evaluated.
	Claim string `json:"claim"`

	// Assessment is one of the Assessment* labels.
	Assessment string `json:"assessment"`

	// Confidence is in [0,1].
	Confidence float64 `json:"confidence"`

	// FrameworkRefs point back at the guideline context.
	FrameworkRefs []string `json:"framework_refs,omitempty"`

	// Rationale explains the label.
	Rationale string `json:"rationale"`

	// EvidenceLinks reference the supporting passages, capped per finding.
	EvidenceLinks []EvidenceLink `json:"evidence_links"`
}

// EvidenceLink points a finding at one supporting passage.
type EvidenceLink struct {
	// DocumentID identifies the source file.
	DocumentID string `json:"doc_id"`

	// Page is the page or part number.
	Page int `json:"page"`

	// Snippet is a short text preview of the passage.
	Snippet string `json:"snippet"`
}

// Taxonomy is the requirement catalogue of one framework.
type Taxonomy struct {
	Controls []Control `yaml:"controls"`
}

// Control groups micro-requirements under one framework control.
type Control struct {
	ID                string             `yaml:"id"`
	Name              string             `yaml:"name"`
	MicroRequirements []MicroRequirement `yaml:"micro_requirements"`
}

// MicroRequirement is one evaluable requirement.
type MicroRequirement struct {
	ID       string   `yaml:"id"`
	Prompt   string   `yaml:"prompt"`
	Synonyms []string `yaml:"synonyms"`
}
