package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attest-labs/reportgen/internal/core/domain"
	"github.com/attest-labs/reportgen/internal/core/ports/driven"
	"github.com/attest-labs/reportgen/internal/normalisers/plaintext"
	"github.com/attest-labs/reportgen/internal/postprocessors/chunker"
)

// mockEmbedder returns a fixed-size vector per input text.
type mockEmbedder struct {
	batchErr error
	short    bool
	batches  [][]string
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.batches = append(m.batches, texts)
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	n := len(texts)
	if m.short {
		n--
	}
	out := make([][]float32, n)
	for i := range out {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return 3 }
func (m *mockEmbedder) ModelName() string            { return "mock-embedder" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockIndexer records added chunks per pool.
type mockIndexer struct {
	pools  map[string][]driven.IndexedChunk
	addErr error
}

func (m *mockIndexer) Add(_ context.Context, pool string, chunks []driven.IndexedChunk) error {
	if m.addErr != nil {
		return m.addErr
	}
	if m.pools == nil {
		m.pools = make(map[string][]driven.IndexedChunk)
	}
	m.pools[pool] = append(m.pools[pool], chunks...)
	return nil
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIngestorIngestFile(t *testing.T) {
	ctx := context.Background()
	normalisers := []driven.Normaliser{plaintext.New()}

	t.Run("indexes every chunk of a text file", func(t *testing.T) {
		embedder := &mockEmbedder{}
		indexer := &mockIndexer{}
		ingestor := NewIngestor(normalisers, chunker.New(chunker.WithChunkSize(40), chunker.WithOverlap(10)), embedder, indexer)

		path := writeTempFile(t, "policy.txt",
			"The board approves the technology risk framework annually and reviews incident reports each quarter.")

		count, err := ingestor.IngestFile(ctx, "evidence_acme", path)
		require.NoError(t, err)
		assert.Greater(t, count, 1)

		chunks := indexer.pools["evidence_acme"]
		require.Len(t, chunks, count)
		for _, c := range chunks {
			assert.Equal(t, "policy.txt", c.DocumentID)
			assert.Equal(t, 0, c.Page)
			assert.NotEmpty(t, c.ID)
			assert.NotEmpty(t, c.Text)
			assert.Len(t, c.Embedding, 3)
		}

		// One batch covering all chunk texts.
		require.Len(t, embedder.batches, 1)
		assert.Len(t, embedder.batches[0], count)
	})

	t.Run("empty file indexes nothing", func(t *testing.T) {
		indexer := &mockIndexer{}
		ingestor := NewIngestor(normalisers, chunker.New(), &mockEmbedder{}, indexer)

		path := writeTempFile(t, "blank.txt", "   \n\n  ")

		count, err := ingestor.IngestFile(ctx, "evidence_acme", path)
		require.NoError(t, err)
		assert.Zero(t, count)
		assert.Empty(t, indexer.pools)
	})

	t.Run("unsupported extension is rejected", func(t *testing.T) {
		ingestor := NewIngestor(normalisers, chunker.New(), &mockEmbedder{}, &mockIndexer{})

		_, err := ingestor.IngestFile(ctx, "evidence_acme", "report.docx")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Contains(t, err.Error(), ".docx")
	})

	t.Run("missing embedder is rejected up front", func(t *testing.T) {
		ingestor := NewIngestor(normalisers, chunker.New(), nil, &mockIndexer{})

		_, err := ingestor.IngestFile(ctx, "evidence_acme", "policy.txt")
		require.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})

	t.Run("embedding failure aborts before indexing", func(t *testing.T) {
		indexer := &mockIndexer{}
		ingestor := NewIngestor(normalisers, chunker.New(), &mockEmbedder{batchErr: errors.New("quota exceeded")}, indexer)

		path := writeTempFile(t, "policy.txt", "Access reviews run monthly.")

		_, err := ingestor.IngestFile(ctx, "evidence_acme", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "quota exceeded")
		assert.Empty(t, indexer.pools)
	})

	t.Run("vector count mismatch aborts before indexing", func(t *testing.T) {
		indexer := &mockIndexer{}
		ingestor := NewIngestor(normalisers, chunker.New(), &mockEmbedder{short: true}, indexer)

		path := writeTempFile(t, "policy.txt", "Access reviews run monthly.")

		_, err := ingestor.IngestFile(ctx, "evidence_acme", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mismatch")
		assert.Empty(t, indexer.pools)
	})
}
