package driving

import "context"

// IngestService populates evidence pools from local files. Ingestion is a
// separate path from report generation.
type IngestService interface {
	// IngestFile extracts, chunks, embeds and indexes one file into the
	// named pool. Returns the number of chunks indexed.
	IngestFile(ctx context.Context, pool, path string) (int, error)
}
