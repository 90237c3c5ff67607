package driven

// Normaliser extracts plain text from one kind of source file.
type Normaliser interface {
	// Supports reports whether the normaliser handles the file.
	Supports(path string) bool

	// Extract returns the file's text, page by page. Formats without a
	// page structure return a single part numbered 0.
	Extract(path string) ([]PageText, error)
}

// PageText is the extracted text of one page or part.
type PageText struct {
	// Page is the zero-based page or part number.
	Page int

	// Text is the page content.
	Text string
}

// Chunker splits extracted text into indexable units.
type Chunker interface {
	// Split breaks text into overlapping chunks.
	Split(text string) []string
}
