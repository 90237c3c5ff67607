package services

import (
	"context"
	"sort"

	"github.com/attest-labs/reportgen/internal/core/domain"
	"github.com/attest-labs/reportgen/internal/core/ports/driven"
	"github.com/attest-labs/reportgen/internal/logger"
)

// missingScore sorts unscored chunks after every scored one.
// Backends are not required to return scores; retrieval never fails on a
// missing one.
const missingScore = -1e9

// Retriever merges ranked passages from multiple evidence pools,
// deduplicates them across pools, and prefers chunks that have not been
// cited earlier in the run.
type Retriever struct {
	searcher driven.SimilaritySearcher
}

// NewRetriever creates a retriever over the given similarity backend.
func NewRetriever(searcher driven.SimilaritySearcher) *Retriever {
	return &Retriever{searcher: searcher}
}

// Retrieve returns up to k evidence chunks for the query across the named
// pools. Chunks whose key is in excluded are returned only to pad the result
// when fewer than k fresh chunks exist, so repetition pressure falls as a
// run progresses without ever starving a section of grounding text.
func (r *Retriever) Retrieve(
	ctx context.Context,
	pools []string,
	query string,
	excluded map[domain.EvidenceKey]struct{},
	k int,
	strategy domain.RetrievalStrategy,
) ([]domain.EvidenceChunk, error) {
	var pool []domain.EvidenceChunk

	for _, name := range pools {
		// Ask for more than needed from each pool; merge -> dedupe -> trim.
		hits, err := r.searcher.Search(ctx, name, query, k*2, strategy)
		if err != nil {
			// The pool may not exist yet, or the backend is degraded.
			// Either way it contributes zero candidates.
			logger.Warn("Retrieval from pool %q failed: %v", name, err)
			continue
		}
		for _, h := range hits {
			pool = append(pool, normalizeHit(h, name))
		}
	}

	seen := make(map[domain.DedupeKey]struct{}, len(pool))
	var fresh, cited []domain.EvidenceChunk
	for _, c := range pool {
		dk := c.Dedupe()
		if _, ok := seen[dk]; ok {
			continue
		}
		seen[dk] = struct{}{}

		if _, ok := excluded[c.Key()]; ok {
			cited = append(cited, c)
		} else {
			fresh = append(fresh, c)
		}
	}

	sortByScore(fresh)
	sortByScore(cited)

	out := fresh
	if len(out) > k {
		out = out[:k]
	}
	if len(out) < k {
		pad := k - len(out)
		if pad > len(cited) {
			pad = len(cited)
		}
		out = append(out, cited[:pad]...)
	}

	logger.Debug("Retrieved %d chunks (%d fresh, %d previously cited) from %d pools",
		len(out), len(fresh), len(cited), len(pools))
	return out, nil
}

// normalizeHit converts a raw backend hit into an EvidenceChunk, deriving
// the document id from metadata with the pool name as the last resort.
func normalizeHit(h driven.SearchHit, pool string) domain.EvidenceChunk {
	docID := metaString(h.Metadata, "doc_id")
	if docID == "" {
		docID = metaString(h.Metadata, "source_pdf")
	}
	if docID == "" {
		docID = pool
	}

	return domain.EvidenceChunk{
		DocumentID: docID,
		Page:       metaInt(h.Metadata, "page"),
		Text:       h.Text,
		Score:      h.Score,
		SourcePool: pool,
	}
}

// sortByScore orders chunks by descending relevance. The sort is stable so
// equal (or equally missing) scores keep their merge order, which keeps
// retrieval deterministic for testing.
func sortByScore(chunks []domain.EvidenceChunk) {
	sort.SliceStable(chunks, func(i, j int) bool {
		return chunkScore(chunks[i]) > chunkScore(chunks[j])
	})
}

func chunkScore(c domain.EvidenceChunk) float64 {
	if c.Score == nil {
		return missingScore
	}
	return *c.Score
}

func metaString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func metaInt(m map[string]any, key string) int {
	if m == nil {
		return 0
	}
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
