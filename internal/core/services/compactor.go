package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/attest-labs/reportgen/internal/core/ports/driven"
	"github.com/attest-labs/reportgen/internal/logger"
)

const (
	// memSummaryTokens is the target length of the rolling narrative,
	// in tokens. The stored summary is capped at roughly six characters
	// per token.
	memSummaryTokens = 350

	compactTemperature = 0.2
	compactMaxTokens   = 600
)

// maxSummaryChars bounds the stored rolling summary.
const maxSummaryChars = memSummaryTokens * 6

// CompactResult is the structured output of one compaction.
type CompactResult struct {
	Narrative string   `json:"narrative"`
	Bullets   []string `json:"bullets"`
}

// Compactor distills section text into a short narrative and a bounded
// bullet list for the rolling memory.
type Compactor struct {
	llm driven.ChatService
}

// NewCompactor creates a compactor over the given chat service.
func NewCompactor(llm driven.ChatService) *Compactor {
	return &Compactor{llm: llm}
}

const compactInstruction = "Summarize the following section into: " +
	"1) one 150-250 token narrative paragraph (no new facts), and " +
	"2) 5-7 concise bullets. " +
	"Return ONLY valid JSON with keys: narrative (string), bullets (array of strings)."

// Compact summarizes text into a narrative plus bullets. A model output
// that fails to parse degrades to an empty result instead of an error:
// losing memory fidelity for one section is preferable to aborting the run.
func (c *Compactor) Compact(ctx context.Context, text string) CompactResult {
	messages := []driven.ChatMessage{
		{Role: "system", Content: "You are a precise summarizer for an audit report. Return only JSON."},
		{Role: "user", Content: compactInstruction + "\n\n---\n" + strings.TrimSpace(text)},
	}

	resp, err := c.llm.Chat(ctx, messages, driven.ChatOptions{
		Temperature: compactTemperature,
		MaxTokens:   compactMaxTokens,
		JSONOutput:  true,
	})
	if err != nil {
		logger.Warn("Compaction call failed, continuing with degraded memory: %v", err)
		return CompactResult{}
	}

	var out CompactResult
	if err := json.Unmarshal([]byte(resp), &out); err != nil {
		logger.Warn("Compaction output did not parse, continuing with degraded memory: %v", err)
		return CompactResult{}
	}
	return out
}

// Recompact combines the previous rolling summary with a newly compacted
// narrative and compacts the combination again. This bounds summary growth
// to one compaction cycle's worth of tokens no matter how many sections
// have been processed.
func (c *Compactor) Recompact(ctx context.Context, previous, narrative string) string {
	combined := strings.TrimSpace(previous + "\n" + narrative)
	if combined == "" {
		return ""
	}
	summary := c.Compact(ctx, combined).Narrative
	if len(summary) > maxSummaryChars {
		summary = summary[:maxSummaryChars]
	}
	return summary
}
