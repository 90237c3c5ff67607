package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/attest-labs/reportgen/internal/core/domain"
	"github.com/attest-labs/reportgen/internal/core/ports/driven"
	"github.com/attest-labs/reportgen/internal/logger"
)

const (
	// retrieveK is the number of evidence chunks requested per section.
	retrieveK = 8

	// excerptMaxChars caps each evidence excerpt shown to the model.
	excerptMaxChars = 800

	// debugPreviewChars caps the per-chunk preview kept in the debug trace.
	debugPreviewChars = 400

	renderTemperature = 0.3
	renderMaxTokens   = 1100
)

// SectionResult is the output of rendering one section.
type SectionResult struct {
	// Text is the section narrative.
	Text string

	// Consumed lists the evidence keys shown to the model. Consumption is
	// tracked at prompt-construction time: a chunk included in the prompt
	// counts as consumed whether or not the model ended up citing it.
	Consumed []domain.EvidenceKey

	// Trace is the evidence consulted, for debug inspection.
	Trace []domain.EvidenceChunk
}

// Renderer produces the narrative text for one section from its directive,
// the accumulated rolling memory and freshly retrieved evidence.
type Renderer struct {
	retriever *Retriever
	llm       driven.ChatService
}

// NewRenderer creates a section renderer.
func NewRenderer(retriever *Retriever, llm driven.ChatService) *Renderer {
	return &Renderer{retriever: retriever, llm: llm}
}

// RenderInput carries the run-scoped context a section render needs.
type RenderInput struct {
	Framework   string
	Firm        string
	Scope       string
	Section     domain.SectionDirective
	Overarching string
	Memory      *domain.RollingMemory
	Strategy    domain.RetrievalStrategy
}

// Render produces one section. A chat-completion failure propagates to the
// caller; no partial text is returned.
func (r *Renderer) Render(ctx context.Context, in RenderInput) (*SectionResult, error) {
	scope := in.Scope
	if scope == "" {
		scope = "full"
	}
	query := fmt.Sprintf("%s: %s\nFirm: %s\nScope: %s", in.Section.Name, in.Section.Prompt, in.Firm, scope)

	pools := []string{
		domain.PoolForFramework(in.Framework),
		domain.AssessmentPool(in.Firm),
		domain.EvidencePool(in.Firm),
	}
	chunks, err := r.retriever.Retrieve(ctx, pools, query, in.Memory.CitedKeys(), retrieveK, in.Strategy)
	if err != nil {
		return nil, fmt.Errorf("retrieve evidence: %w", err)
	}

	evLines := make([]string, 0, len(chunks))
	consumed := make([]domain.EvidenceKey, 0, len(chunks))
	trace := make([]domain.EvidenceChunk, 0, len(chunks))
	for _, c := range chunks {
		excerpt := c.Text
		if len(excerpt) > excerptMaxChars {
			excerpt = excerpt[:excerptMaxChars]
		}
		evLines = append(evLines, fmt.Sprintf("[%s p.%d] %s", c.DocumentID, c.Page, excerpt))
		consumed = append(consumed, c.Key())

		preview := c.Text
		if len(preview) > debugPreviewChars {
			preview = preview[:debugPreviewChars]
		}
		traced := c
		traced.Text = strings.TrimSpace(strings.ReplaceAll(preview, "\n", " "))
		trace = append(trace, traced)
	}

	system := fmt.Sprintf(
		"You are generating the '%s' section of a compliance report for '%s'. "+
			"Maintain coherence and avoid repeating earlier points.\n\n"+
			"Global Guidance:\n%s",
		in.Section.Name, in.Firm, strings.TrimSpace(in.Overarching))

	user := fmt.Sprintf(
		"Section directive:\n%s\n\n%s\n\n"+
			"Use the retrieved evidence to ground claims (quote minimally, synthesize conclusions):\n%s",
		strings.TrimSpace(in.Section.Prompt), in.Memory.PromptBlock(), strings.Join(evLines, "\n---\n"))

	logger.Debug("Rendering section %q with %d evidence chunks", in.Section.Name, len(chunks))

	text, err := r.llm.Chat(ctx, []driven.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}, driven.ChatOptions{
		Temperature: renderTemperature,
		MaxTokens:   renderMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("render section %q: %w", in.Section.Name, err)
	}

	return &SectionResult{Text: text, Consumed: consumed, Trace: trace}, nil
}
