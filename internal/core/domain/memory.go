package domain

import (
	"fmt"
	"strings"
)

const (
	// MaxKeyPoints caps the bullets carried forward between sections.
	MaxKeyPoints = 12

	// maxCitedInPrompt caps how many cited-evidence references are listed
	// in the prompt block. A trailing ellipsis marks the rest.
	maxCitedInPrompt = 15
)

// RollingMemory accumulates compacted narrative state across the sections of
// one report run. It is owned by exactly one run and is never shared between
// concurrent runs.
type RollingMemory struct {
	// NarrativeSummary is the compacted narrative of everything written so far.
	NarrativeSummary string

	// KeyPoints are the bullets carried forward, in first-seen order,
	// capped at MaxKeyPoints.
	KeyPoints []string

	// citedOrder preserves insertion order of cited evidence so the prompt
	// block renders deterministically.
	citedOrder []EvidenceKey
	cited      map[EvidenceKey]struct{}
}

// NewRollingMemory creates an empty memory accumulator.
func NewRollingMemory() *RollingMemory {
	return &RollingMemory{cited: make(map[EvidenceKey]struct{})}
}

// Cited reports whether the evidence key has already been cited this run.
func (m *RollingMemory) Cited(key EvidenceKey) bool {
	_, ok := m.cited[key]
	return ok
}

// CitedKeys returns the set of cited evidence keys.
func (m *RollingMemory) CitedKeys() map[EvidenceKey]struct{} {
	return m.cited
}

// CitedCount returns the number of distinct cited evidence keys.
func (m *RollingMemory) CitedCount() int {
	return len(m.citedOrder)
}

// AddCitations records evidence consumed by a section. Adding a key twice
// is a no-op; the set only grows within a run.
func (m *RollingMemory) AddCitations(keys []EvidenceKey) {
	for _, k := range keys {
		if _, ok := m.cited[k]; ok {
			continue
		}
		m.cited[k] = struct{}{}
		m.citedOrder = append(m.citedOrder, k)
	}
}

// AddPoints appends bullets, deduplicating by exact string equality and
// preserving first-seen order, then truncates to MaxKeyPoints. Points past
// the cap are dropped, not rotated: this is append-then-truncate, not LRU.
func (m *RollingMemory) AddPoints(points []string) {
	seen := make(map[string]struct{}, len(m.KeyPoints)+len(points))
	merged := make([]string, 0, len(m.KeyPoints)+len(points))
	for _, p := range append(append([]string{}, m.KeyPoints...), points...) {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		merged = append(merged, p)
	}
	if len(merged) > MaxKeyPoints {
		merged = merged[:MaxKeyPoints]
	}
	m.KeyPoints = merged
}

// SetSummary replaces the rolling narrative summary.
func (m *RollingMemory) SetSummary(summary string) {
	m.NarrativeSummary = summary
}

// PromptBlock renders the memory as a prompt fragment. Each part is included
// only when non-empty, separated by blank lines.
func (m *RollingMemory) PromptBlock() string {
	var parts []string

	if m.NarrativeSummary != "" {
		parts = append(parts, "Context so far (do not repeat): "+m.NarrativeSummary)
	}

	if len(m.KeyPoints) > 0 {
		bullets := make([]string, 0, MaxKeyPoints)
		for i, p := range m.KeyPoints {
			if i >= MaxKeyPoints {
				break
			}
			bullets = append(bullets, "- "+p)
		}
		parts = append(parts, "Key points already covered (avoid repetition):\n"+strings.Join(bullets, "\n"))
	}

	if len(m.citedOrder) > 0 {
		refs := make([]string, 0, maxCitedInPrompt)
		for i, k := range m.citedOrder {
			if i >= maxCitedInPrompt {
				break
			}
			refs = append(refs, fmt.Sprintf("%s@p%d", k.DocumentID, k.Page))
		}
		line := "Evidence already cited (avoid reusing unless critical): " + strings.Join(refs, ", ")
		if len(m.citedOrder) > maxCitedInPrompt {
			line += ", …"
		}
		parts = append(parts, line)
	}

	return strings.Join(parts, "\n\n")
}
