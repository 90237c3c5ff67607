package driven

import (
	"context"

	"github.com/attest-labs/reportgen/internal/core/domain"
)

// SimilaritySearcher provides ranked passage retrieval over named pools.
type SimilaritySearcher interface {
	// Search returns up to k ranked hits for the query in one pool.
	// A pool that does not exist yet contributes an empty result,
	// not an error.
	Search(ctx context.Context, pool, query string, k int, strategy domain.RetrievalStrategy) ([]SearchHit, error)
}

// SearchHit is one raw result from the similarity backend, before
// normalization into a domain.EvidenceChunk.
type SearchHit struct {
	// Text is the passage content.
	Text string

	// Metadata carries source attributes. Recognised keys are "doc_id",
	// "source_pdf" and "page".
	Metadata map[string]any

	// Score is the backend's relevance score, nil when unavailable.
	Score *float64
}

// PoolIndexer populates evidence pools. Ingestion is a separate path from
// report generation; the orchestrator only reads pools.
type PoolIndexer interface {
	// Add indexes chunks with their embeddings into a pool, creating the
	// pool on first use.
	Add(ctx context.Context, pool string, chunks []IndexedChunk) error
}

// IndexedChunk is one unit of text being added to a pool.
type IndexedChunk struct {
	// ID uniquely identifies the chunk within the pool.
	ID string

	// DocumentID identifies the source file.
	DocumentID string

	// Page is the page or part number within the document.
	Page int

	// Text is the chunk content.
	Text string

	// Embedding is the chunk's vector representation.
	Embedding []float32
}
