package domain

// EvidenceChunk is an immutable unit of retrieved text used to ground
// report narrative.
type EvidenceChunk struct {
	// DocumentID identifies the source file the text came from.
	DocumentID string `json:"doc_id"`

	// Page is the page or part number within the document (>= 0).
	Page int `json:"page"`

	// Text is the chunk content.
	Text string `json:"text"`

	// Score is the relevance score from the retrieval call that produced
	// this chunk. Nil when the backend returned no score. Scores are only
	// comparable within a single retrieval call.
	Score *float64 `json:"score,omitempty"`

	// SourcePool names the collection this chunk came from
	// (framework guideline, firm assessment or firm evidence).
	SourcePool string `json:"source,omitempty"`
}

// EvidenceKey identifies a chunk for citation-tracking purposes.
type EvidenceKey struct {
	DocumentID string
	Page       int
}

// Key returns the citation identity of the chunk.
func (c EvidenceChunk) Key() EvidenceKey {
	return EvidenceKey{DocumentID: c.DocumentID, Page: c.Page}
}

// dedupeHeadLen is how much leading text participates in the dedupe key.
// It distinguishes multiple chunks that share a page.
const dedupeHeadLen = 120

// DedupeKey identifies a chunk for cross-pool deduplication. Two pools can
// return the same passage under different labels; the text head catches that.
type DedupeKey struct {
	DocumentID string
	Page       int
	TextHead   string
}

// Dedupe returns the deduplication identity of the chunk.
func (c EvidenceChunk) Dedupe() DedupeKey {
	head := c.Text
	if len(head) > dedupeHeadLen {
		head = head[:dedupeHeadLen]
	}
	return DedupeKey{DocumentID: c.DocumentID, Page: c.Page, TextHead: head}
}

// RetrievalStrategy selects how the similarity backend ranks candidates.
type RetrievalStrategy string

const (
	// StrategySimilarity is plain cosine similarity ranking.
	StrategySimilarity RetrievalStrategy = "similarity"

	// StrategyMMR diversifies results with maximal marginal relevance.
	StrategyMMR RetrievalStrategy = "mmr"

	// StrategyHybrid fuses vector and keyword rankings.
	StrategyHybrid RetrievalStrategy = "hybrid"
)

// Valid reports whether s is a known strategy. The empty string is valid
// and means the backend default.
func (s RetrievalStrategy) Valid() bool {
	switch s {
	case "", StrategySimilarity, StrategyMMR, StrategyHybrid:
		return true
	}
	return false
}

// PoolForFramework returns the guideline pool name for a framework.
func PoolForFramework(framework string) string {
	return "fw_" + framework
}

// AssessmentPool returns the firm assessment pool name.
func AssessmentPool(firm string) string {
	return "assessment_" + firm
}

// EvidencePool returns the firm evidence pool name.
func EvidencePool(firm string) string {
	return "evidence_" + firm
}
