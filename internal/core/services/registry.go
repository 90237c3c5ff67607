package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/attest-labs/reportgen/internal/core/domain"
	"github.com/attest-labs/reportgen/internal/core/ports/driven"
)

// Assessor is the per-framework findings capability. Each framework binds a
// taxonomy source to a findings pass.
type Assessor interface {
	// Framework returns the framework key this assessor serves.
	Framework() string

	// BuildFindings evaluates the firm against the framework taxonomy.
	BuildFindings(ctx context.Context, firm, scope string) ([]domain.Finding, error)
}

// AssessorRegistry is an explicit mapping from framework identifier to its
// assessor, resolved once at startup. Unknown frameworks surface before any
// generation work begins.
type AssessorRegistry struct {
	assessors map[string]Assessor
}

// NewAssessorRegistry builds the registry from the prompt store's configured
// frameworks, each backed by the shared findings builder.
func NewAssessorRegistry(prompts driven.PromptStore, searcher driven.SimilaritySearcher) (*AssessorRegistry, error) {
	frameworks, err := prompts.Frameworks()
	if err != nil {
		return nil, fmt.Errorf("list frameworks: %w", err)
	}

	builder := NewFindingsBuilder(prompts, searcher)
	r := &AssessorRegistry{assessors: make(map[string]Assessor, len(frameworks))}
	for _, fw := range frameworks {
		r.assessors[fw] = &taxonomyAssessor{framework: fw, builder: builder}
	}
	return r, nil
}

// Register adds or replaces an assessor. Intended for frameworks that need
// behaviour beyond the shared taxonomy heuristic.
func (r *AssessorRegistry) Register(a Assessor) {
	r.assessors[a.Framework()] = a
}

// Resolve returns the assessor for a framework.
func (r *AssessorRegistry) Resolve(framework string) (Assessor, error) {
	a, ok := r.assessors[framework]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", domain.ErrUnknownFramework, framework, r.Frameworks())
	}
	return a, nil
}

// Frameworks lists the registered framework keys, sorted.
func (r *AssessorRegistry) Frameworks() []string {
	out := make([]string, 0, len(r.assessors))
	for fw := range r.assessors {
		out = append(out, fw)
	}
	sort.Strings(out)
	return out
}

// taxonomyAssessor is the default assessor: the shared findings builder
// applied to one framework's taxonomy.
type taxonomyAssessor struct {
	framework string
	builder   *FindingsBuilder
}

func (a *taxonomyAssessor) Framework() string {
	return a.framework
}

func (a *taxonomyAssessor) BuildFindings(ctx context.Context, firm, scope string) ([]domain.Finding, error) {
	return a.builder.BuildFindings(ctx, a.framework, firm, scope)
}
