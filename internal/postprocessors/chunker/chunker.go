// Package chunker provides fixed-size text chunking with overlap.
package chunker

import (
	"github.com/attest-labs/reportgen/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Ensure Chunker implements the interface.
var _ driven.Chunker = (*Chunker)(nil)

// Chunker splits text into fixed-size chunks with overlap so that
// passages cut at a chunk boundary still appear whole in one chunk.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a new chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Ensure overlap doesn't exceed chunk size
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// Split breaks text into overlapping chunks.
func (c *Chunker) Split(text string) []string {
	if text == "" {
		return nil
	}

	textLen := len(text)
	estimated := (textLen / (c.chunkSize - c.overlap)) + 1
	chunks := make([]string, 0, estimated)

	start := 0
	for start < textLen {
		end := start + c.chunkSize
		if end > textLen {
			end = textLen
		}

		chunks = append(chunks, text[start:end])

		// Move start forward by (chunkSize - overlap)
		start += c.chunkSize - c.overlap

		// Avoid infinite loop for edge cases
		if c.chunkSize <= c.overlap {
			break
		}
	}

	return chunks
}
