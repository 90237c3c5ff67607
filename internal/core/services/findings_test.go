package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attest-labs/reportgen/internal/core/domain"
	"github.com/attest-labs/reportgen/internal/core/ports/driven"
)

func testTaxonomy() *domain.Taxonomy {
	return &domain.Taxonomy{Controls: []domain.Control{
		{
			ID:   "GOV-1",
			Name: "Governance",
			MicroRequirements: []domain.MicroRequirement{
				{ID: "1.1", Prompt: "Board oversees technology risk", Synonyms: []string{"board oversight", "tech governance"}},
				{ID: "1.2", Prompt: "Risk appetite is documented"},
			},
		},
	}}
}

func TestFindingsBuilder_BuildFindings(t *testing.T) {
	ctx := context.Background()

	t.Run("firm evidence yields Meets at fixed confidence", func(t *testing.T) {
		searcher := &mockSearcher{hits: map[string][]driven.SearchHit{
			"fw_osfi_b13":     {hit("guideline.pdf", 1, "boards must oversee", 0.9)},
			"assessment_acme": {hit("charter.pdf", 2, "the board reviews technology risk quarterly", 0.8)},
		}}
		prompts := &mockPromptStore{taxonomies: map[string]*domain.Taxonomy{"osfi_b13": testTaxonomy()}}

		findings, err := NewFindingsBuilder(prompts, searcher).BuildFindings(ctx, "osfi_b13", "acme", "")

		require.NoError(t, err)
		require.Len(t, findings, 2)

		first := findings[0]
		assert.Equal(t, "GOV-1.1.1", first.ID)
		assert.Equal(t, "GOV-1", first.ControlID)
		assert.Equal(t, "Governance", first.ControlName)
		assert.Equal(t, domain.AssessmentMeets, first.Assessment)
		assert.InDelta(t, 0.75, first.Confidence, 1e-9)
		require.Len(t, first.EvidenceLinks, 1)
		assert.Equal(t, "charter.pdf", first.EvidenceLinks[0].DocumentID)
		assert.Contains(t, first.FrameworkRefs, "[osfi_b13] control GOV-1")
		assert.Contains(t, first.FrameworkRefs, "[guideline context present]")
	})

	t.Run("no firm hits yields Unknown at low confidence", func(t *testing.T) {
		searcher := &mockSearcher{hits: map[string][]driven.SearchHit{
			"fw_osfi_b13": {hit("guideline.pdf", 1, "guidance only", 0.9)},
		}}
		prompts := &mockPromptStore{taxonomies: map[string]*domain.Taxonomy{"osfi_b13": testTaxonomy()}}

		findings, err := NewFindingsBuilder(prompts, searcher).BuildFindings(ctx, "osfi_b13", "acme", "")

		require.NoError(t, err)
		for _, f := range findings {
			assert.Equal(t, domain.AssessmentUnknown, f.Assessment)
			assert.InDelta(t, 0.2, f.Confidence, 1e-9)
			assert.Empty(t, f.EvidenceLinks)
		}
	})

	t.Run("synonyms join the retrieval query", func(t *testing.T) {
		searcher := &mockSearcher{}
		prompts := &mockPromptStore{taxonomies: map[string]*domain.Taxonomy{"osfi_b13": testTaxonomy()}}

		_, err := NewFindingsBuilder(prompts, searcher).BuildFindings(ctx, "osfi_b13", "acme", "")

		require.NoError(t, err)
		require.NotEmpty(t, searcher.queries)
		assert.Equal(t, "Board oversees technology risk | board oversight | tech governance", searcher.queries[0])
	})

	t.Run("caps evidence links and trims snippets", func(t *testing.T) {
		long := strings.Repeat("evidence text ", 30)
		var hits []driven.SearchHit
		for i := 0; i < 8; i++ {
			hits = append(hits, hit("doc.pdf", i, long, 0.5))
		}
		searcher := &mockSearcher{hits: map[string][]driven.SearchHit{
			"evidence_acme": hits,
		}}
		prompts := &mockPromptStore{taxonomies: map[string]*domain.Taxonomy{"osfi_b13": testTaxonomy()}}

		findings, err := NewFindingsBuilder(prompts, searcher).BuildFindings(ctx, "osfi_b13", "acme", "")

		require.NoError(t, err)
		require.NotEmpty(t, findings)
		assert.Len(t, findings[0].EvidenceLinks, 6)
		for _, link := range findings[0].EvidenceLinks {
			assert.LessOrEqual(t, len(link.Snippet), 160)
		}
	})

	t.Run("unknown framework surfaces", func(t *testing.T) {
		prompts := &mockPromptStore{taxonomies: map[string]*domain.Taxonomy{}}

		_, err := NewFindingsBuilder(prompts, &mockSearcher{}).BuildFindings(ctx, "nope", "acme", "")

		assert.ErrorIs(t, err, domain.ErrUnknownFramework)
	})
}
