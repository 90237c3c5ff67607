package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/attest-labs/reportgen/internal/core/domain"
	"github.com/attest-labs/reportgen/internal/core/ports/driven"
	"github.com/attest-labs/reportgen/internal/core/ports/driving"
	"github.com/attest-labs/reportgen/internal/logger"
)

// Ensure Ingestor implements the interface.
var _ driving.IngestService = (*Ingestor)(nil)

// Ingestor populates evidence pools: extract text, chunk it, embed the
// chunks and index them into the named pool. Report generation only reads
// pools; this is the separate write path.
type Ingestor struct {
	normalisers []driven.Normaliser
	chunker     driven.Chunker
	embedder    driven.EmbeddingService
	indexer     driven.PoolIndexer
}

// NewIngestor creates an ingestor. Normalisers are tried in order; the
// first one that supports the file wins.
func NewIngestor(
	normalisers []driven.Normaliser,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	indexer driven.PoolIndexer,
) *Ingestor {
	return &Ingestor{
		normalisers: normalisers,
		chunker:     chunker,
		embedder:    embedder,
		indexer:     indexer,
	}
}

// IngestFile extracts, chunks, embeds and indexes one file into the pool.
func (s *Ingestor) IngestFile(ctx context.Context, pool, path string) (int, error) {
	if s.embedder == nil {
		return 0, domain.ErrEmbeddingUnavailable
	}

	var norm driven.Normaliser
	for _, n := range s.normalisers {
		if n.Supports(path) {
			norm = n
			break
		}
	}
	if norm == nil {
		return 0, fmt.Errorf("%w: no normaliser for %q", domain.ErrInvalidInput, filepath.Ext(path))
	}

	pages, err := norm.Extract(path)
	if err != nil {
		return 0, fmt.Errorf("extract %s: %w", path, err)
	}

	docID := filepath.Base(path)
	var chunks []driven.IndexedChunk
	var texts []string
	for _, page := range pages {
		for _, piece := range s.chunker.Split(page.Text) {
			if strings.TrimSpace(piece) == "" {
				continue
			}
			chunks = append(chunks, driven.IndexedChunk{
				ID:         uuid.New().String(),
				DocumentID: docID,
				Page:       page.Page,
				Text:       piece,
			})
			texts = append(texts, piece)
		}
	}
	if len(chunks) == 0 {
		logger.Warn("No indexable text in %s", path)
		return 0, nil
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed %d chunks: %w", len(chunks), err)
	}
	if len(embeddings) != len(chunks) {
		return 0, fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(embeddings))
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}

	if err := s.indexer.Add(ctx, pool, chunks); err != nil {
		return 0, fmt.Errorf("index into pool %q: %w", pool, err)
	}

	logger.Info("Indexed %d chunks from %s into pool %q", len(chunks), docID, pool)
	return len(chunks), nil
}
