package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/attest-labs/reportgen/internal/core/domain"
	"github.com/attest-labs/reportgen/internal/core/ports/driven"
	"github.com/attest-labs/reportgen/internal/core/ports/driving"
	"github.com/attest-labs/reportgen/internal/logger"
)

// Ensure FindingsBuilder implements the interface.
var _ driving.FindingsService = (*FindingsBuilder)(nil)

const (
	// Per-requirement retrieval sizes: a few guideline hits for context,
	// more from the firm's own material.
	findingsGuidelineK  = 3
	findingsAssessmentK = 4
	findingsEvidenceK   = 6

	// maxEvidenceLinks caps links per finding.
	maxEvidenceLinks = 6

	// snippetChars is the per-link text preview length.
	snippetChars = 160

	confidenceMeets   = 0.75
	confidenceUnknown = 0.2
)

// FindingsBuilder evaluates a firm against a framework's requirement
// taxonomy by matching each micro-requirement's prompt against the evidence
// pools.
//
// The labelling is an explicit heuristic, not a scored classifier: any firm
// assessment or evidence hit yields "Meets" at fixed moderate confidence,
// none yields "Unknown" at fixed low confidence.
type FindingsBuilder struct {
	prompts  driven.PromptStore
	searcher driven.SimilaritySearcher
}

// NewFindingsBuilder creates a findings builder.
func NewFindingsBuilder(prompts driven.PromptStore, searcher driven.SimilaritySearcher) *FindingsBuilder {
	return &FindingsBuilder{prompts: prompts, searcher: searcher}
}

// BuildFindings produces one finding per micro-requirement in the
// framework's taxonomy.
func (b *FindingsBuilder) BuildFindings(ctx context.Context, framework, firm, scope string) ([]domain.Finding, error) {
	tax, err := b.prompts.Taxonomy(framework)
	if err != nil {
		return nil, fmt.Errorf("load taxonomy for %q: %w", framework, err)
	}

	logger.Section("Findings")
	logger.Debug("Framework %q, firm %q: evaluating taxonomy", framework, firm)

	fwPool := domain.PoolForFramework(framework)
	assessPool := domain.AssessmentPool(firm)
	evidPool := domain.EvidencePool(firm)

	var findings []domain.Finding
	for _, ctrl := range tax.Controls {
		for _, mr := range ctrl.MicroRequirements {
			query := mr.Prompt
			if len(mr.Synonyms) > 0 {
				query += " | " + strings.Join(mr.Synonyms, " | ")
			}

			fwHits := b.search(ctx, fwPool, query, findingsGuidelineK)
			assessHits := b.search(ctx, assessPool, query, findingsAssessmentK)
			evidHits := b.search(ctx, evidPool, query, findingsEvidenceK)

			var links []domain.EvidenceLink
			for _, h := range append(assessHits, evidHits...) {
				snippet := h.Text
				if len(snippet) > snippetChars {
					snippet = snippet[:snippetChars]
				}
				docID := metaString(h.Metadata, "doc_id")
				if docID == "" {
					docID = metaString(h.Metadata, "source_pdf")
				}
				links = append(links, domain.EvidenceLink{
					DocumentID: docID,
					Page:       metaInt(h.Metadata, "page"),
					Snippet:    snippet,
				})
			}
			if len(links) > maxEvidenceLinks {
				links = links[:maxEvidenceLinks]
			}

			assessment := domain.AssessmentUnknown
			confidence := confidenceUnknown
			rationale := "No clear evidence retrieved."
			if len(links) > 0 {
				assessment = domain.AssessmentMeets
				confidence = confidenceMeets
				rationale = "Evidence retrieved that aligns with the control intent."
			}

			refs := []string{fmt.Sprintf("[%s] control %s", framework, ctrl.ID)}
			if len(fwHits) > 0 {
				refs = append(refs, "[guideline context present]")
			}

			findings = append(findings, domain.Finding{
				ID:            ctrl.ID + "." + mr.ID,
				ControlID:     ctrl.ID,
				ControlName:   ctrl.Name,
				RequirementID: mr.ID,
				Claim:         mr.Prompt,
				Assessment:    assessment,
				Confidence:    confidence,
				FrameworkRefs: refs,
				Rationale:     rationale,
				EvidenceLinks: links,
			})
		}
	}

	logger.Info("Built %d findings for %s/%s", len(findings), framework, firm)
	return findings, nil
}

// search absorbs backend failures as zero hits; a missing pool never fails
// the findings pass.
func (b *FindingsBuilder) search(ctx context.Context, pool, query string, k int) []driven.SearchHit {
	hits, err := b.searcher.Search(ctx, pool, query, k, domain.StrategySimilarity)
	if err != nil {
		logger.Warn("Findings search in pool %q failed: %v", pool, err)
		return nil
	}
	return hits
}
