package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/attest-labs/reportgen/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/attest-labs/reportgen/internal/core/domain"
	"github.com/attest-labs/reportgen/internal/core/ports/driven"
)

// rrfK is the Reciprocal Rank Fusion constant. Prevents the top ranks of
// either list from dominating the merged ordering.
const rrfK = 60

// mmrLambda balances relevance against diversity in MMR re-ranking.
const mmrLambda = 0.5

// Store is a unified SQLite-based storage that provides access to
// the evidence pool and run persistence interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.reportgen/data/reportgen.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".reportgen", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "reportgen.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Indexer returns a PoolIndexer interface backed by this store.
func (s *Store) Indexer() driven.PoolIndexer {
	return &poolIndexer{store: s}
}

// Searcher returns a SimilaritySearcher backed by this store. The embedder
// is used to vectorize queries; it must match the model that produced the
// stored chunk embeddings.
func (s *Store) Searcher(embedder driven.EmbeddingService) driven.SimilaritySearcher {
	return &searcher{store: s, embedder: embedder}
}

// RunStore returns a RunStore interface backed by this store.
func (s *Store) RunStore() driven.RunStore {
	return &runStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Pool Indexer ====================

// poolIndexer implements driven.PoolIndexer.
type poolIndexer struct {
	store *Store
}

var _ driven.PoolIndexer = (*poolIndexer)(nil)

// Add indexes chunks with their embeddings into a pool.
func (p *poolIndexer) Add(ctx context.Context, pool string, chunks []driven.IndexedChunk) error {
	if pool == "" {
		return fmt.Errorf("%w: empty pool name", domain.ErrInvalidInput)
	}
	if len(chunks) == 0 {
		return nil
	}

	tx, err := p.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (pool, id, document_id, page, content, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(pool, id) DO UPDATE SET
			document_id = excluded.document_id,
			page = excluded.page,
			content = excluded.content,
			embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		embeddingBlob := float32SliceToBytes(chunk.Embedding)

		if _, err := stmt.ExecContext(ctx, pool, chunk.ID, chunk.DocumentID,
			chunk.Page, chunk.Text, embeddingBlob); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ==================== Similarity Searcher ====================

// searcher implements driven.SimilaritySearcher with brute-force cosine
// ranking over the chunks of one pool. Pools here hold at most a few
// thousand chunks, so a linear scan beats maintaining an index.
type searcher struct {
	store    *Store
	embedder driven.EmbeddingService
}

var _ driven.SimilaritySearcher = (*searcher)(nil)

// poolChunk is one chunk row loaded for ranking.
type poolChunk struct {
	id         string
	documentID string
	page       int
	content    string
	embedding  []float32
}

// Search returns up to k ranked hits for the query in one pool. A pool
// with no rows contributes an empty result, not an error.
func (s *searcher) Search(
	ctx context.Context, pool, query string, k int, strategy domain.RetrievalStrategy,
) ([]driven.SearchHit, error) {
	if k <= 0 {
		return nil, nil
	}
	if strategy == "" {
		strategy = domain.StrategySimilarity
	}
	if !strategy.Valid() {
		return nil, fmt.Errorf("%w: strategy %q", domain.ErrInvalidInput, strategy)
	}

	chunks, err := s.loadPool(ctx, pool)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	switch strategy {
	case domain.StrategyMMR:
		return s.mmrSearch(chunks, queryVec, k), nil
	case domain.StrategyHybrid:
		return s.hybridSearch(chunks, queryVec, query, k), nil
	default:
		return s.similaritySearch(chunks, queryVec, k), nil
	}
}

// loadPool reads all chunk rows for a pool.
func (s *searcher) loadPool(ctx context.Context, pool string) ([]poolChunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_id, page, content, embedding
		FROM chunks WHERE pool = ?
	`, pool)
	if err != nil {
		return nil, fmt.Errorf("querying pool %s: %w", pool, err)
	}
	defer rows.Close()

	var chunks []poolChunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var c poolChunk
		var embeddingBlob []byte
		if err := rows.Scan(&c.id, &c.documentID, &c.page, &c.content, &embeddingBlob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		c.embedding = bytesToFloat32Slice(embeddingBlob)
		chunks = append(chunks, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pool %s: %w", pool, err)
	}

	return chunks, nil
}

// similaritySearch ranks chunks by cosine similarity to the query vector.
func (s *searcher) similaritySearch(chunks []poolChunk, queryVec []float32, k int) []driven.SearchHit {
	ranked := rankByCosine(chunks, queryVec)
	if len(ranked) > k {
		ranked = ranked[:k]
	}

	hits := make([]driven.SearchHit, 0, len(ranked))
	for _, r := range ranked {
		hits = append(hits, toHit(r.chunk, r.score))
	}
	return hits
}

// mmrSearch re-ranks with maximal marginal relevance: each pick trades
// query relevance against similarity to chunks already selected.
func (s *searcher) mmrSearch(chunks []poolChunk, queryVec []float32, k int) []driven.SearchHit {
	candidates := rankByCosine(chunks, queryVec)
	if len(candidates) == 0 {
		return nil
	}

	selected := make([]rankedChunk, 0, k)
	remaining := make([]rankedChunk, len(candidates))
	copy(remaining, candidates)

	for len(selected) < k && len(remaining) > 0 {
		bestIdx := 0
		bestScore := math.Inf(-1)
		for i, cand := range remaining {
			maxSim := 0.0
			for _, sel := range selected {
				sim := cosineSimilarity(cand.chunk.embedding, sel.chunk.embedding)
				if sim > maxSim {
					maxSim = sim
				}
			}
			score := mmrLambda*cand.score - (1-mmrLambda)*maxSim
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	hits := make([]driven.SearchHit, 0, len(selected))
	for _, r := range selected {
		hits = append(hits, toHit(r.chunk, r.score))
	}
	return hits
}

// hybridSearch merges vector and keyword rankings using Reciprocal Rank
// Fusion. The fused score replaces the raw cosine score.
func (s *searcher) hybridSearch(chunks []poolChunk, queryVec []float32, query string, k int) []driven.SearchHit {
	vectorRanked := rankByCosine(chunks, queryVec)
	keywordRanked := rankByKeyword(chunks, query)

	byID := make(map[string]poolChunk, len(chunks))
	for _, c := range chunks {
		byID[c.id] = c
	}

	scores := make(map[string]float64)
	for rank, r := range vectorRanked {
		scores[r.chunk.id] += 1.0 / float64(rrfK+rank+1)
	}
	for rank, r := range keywordRanked {
		scores[r.chunk.id] += 1.0 / float64(rrfK+rank+1)
	}

	merged := make([]rankedChunk, 0, len(scores))
	for id, score := range scores {
		merged = append(merged, rankedChunk{chunk: byID[id], score: score})
	}
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].score != merged[j].score {
			return merged[i].score > merged[j].score
		}
		return merged[i].chunk.id < merged[j].chunk.id
	})

	if len(merged) > k {
		merged = merged[:k]
	}

	hits := make([]driven.SearchHit, 0, len(merged))
	for _, r := range merged {
		hits = append(hits, toHit(r.chunk, r.score))
	}
	return hits
}

// rankedChunk pairs a chunk with its relevance score.
type rankedChunk struct {
	chunk poolChunk
	score float64
}

// rankByCosine scores every chunk against the query vector and sorts
// descending. Chunks without an embedding are excluded.
func rankByCosine(chunks []poolChunk, queryVec []float32) []rankedChunk {
	ranked := make([]rankedChunk, 0, len(chunks))
	for _, c := range chunks {
		if len(c.embedding) == 0 {
			continue
		}
		ranked = append(ranked, rankedChunk{
			chunk: c,
			score: cosineSimilarity(queryVec, c.embedding),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].chunk.id < ranked[j].chunk.id
	})
	return ranked
}

// rankByKeyword scores chunks by the count of query terms they contain.
// Chunks matching no term are excluded.
func rankByKeyword(chunks []poolChunk, query string) []rankedChunk {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil
	}

	ranked := make([]rankedChunk, 0, len(chunks))
	for _, c := range chunks {
		content := strings.ToLower(c.content)
		matches := 0
		for _, term := range terms {
			if strings.Contains(content, term) {
				matches++
			}
		}
		if matches == 0 {
			continue
		}
		ranked = append(ranked, rankedChunk{chunk: c, score: float64(matches)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].chunk.id < ranked[j].chunk.id
	})
	return ranked
}

// toHit converts a ranked chunk into the port's hit shape.
func toHit(c poolChunk, score float64) driven.SearchHit {
	s := score
	return driven.SearchHit{
		Text: c.content,
		Metadata: map[string]any{
			"doc_id": c.documentID,
			"page":   c.page,
		},
		Score: &s,
	}
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched or zero-length vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// ==================== Run Store ====================

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// Write stores a run atomically under its RunID. The record is a single
// JSON document; one INSERT makes the write all-or-nothing.
func (r *runStore) Write(ctx context.Context, run *domain.ReportRun) error {
	if run == nil || run.RunID == "" {
		return fmt.Errorf("%w: run id is required", domain.ErrInvalidInput)
	}

	record, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshalling run: %w", err)
	}

	_, err = r.store.db.ExecContext(ctx, `
		INSERT INTO runs (id, record, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			record = excluded.record,
			created_at = excluded.created_at
	`, run.RunID, string(record), run.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// Read loads a run by id.
func (r *runStore) Read(ctx context.Context, runID string) (*domain.ReportRun, error) {
	row := r.store.db.QueryRowContext(ctx,
		"SELECT record FROM runs WHERE id = ?", runID)

	var record string
	if err := row.Scan(&record); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	var run domain.ReportRun
	if err := json.Unmarshal([]byte(record), &run); err != nil {
		return nil, fmt.Errorf("unmarshaling run: %w", err)
	}
	return &run, nil
}

// List returns the ids of all persisted runs, newest first.
func (r *runStore) List(ctx context.Context) ([]string, error) {
	rows, err := r.store.db.QueryContext(ctx,
		"SELECT id FROM runs ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var ids []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning run id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	return ids, nil
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
