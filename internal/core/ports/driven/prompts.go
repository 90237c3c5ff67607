package driven

import "github.com/attest-labs/reportgen/internal/core/domain"

// PromptStore provides read-only access to per-framework configuration:
// section directives, overarching guidance and the requirement taxonomy.
type PromptStore interface {
	// Sections returns the framework's section directives ordered by
	// ascending position. Returns domain.ErrUnknownFramework when the
	// framework has no configuration.
	Sections(framework string) ([]domain.SectionDirective, error)

	// Overarching returns the framework's operator guidance text, empty
	// when none is configured.
	Overarching(framework string) (string, error)

	// Taxonomy returns the framework's requirement catalogue.
	Taxonomy(framework string) (*domain.Taxonomy, error)

	// Frameworks lists the configured framework keys.
	Frameworks() ([]string, error)
}
