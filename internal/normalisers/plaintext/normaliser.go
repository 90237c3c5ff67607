// Package plaintext handles plain text and markdown evidence documents.
package plaintext

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/attest-labs/reportgen/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// supportedExtensions are the file types treated as plain text.
var supportedExtensions = map[string]bool{
	".txt": true,
	".md":  true,
	".csv": true,
	".log": true,
}

// Normaliser handles plain text documents. Text formats have no page
// structure, so the whole file becomes a single part numbered 0.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Supports reports whether the file is a known text format.
func (n *Normaliser) Supports(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// Extract returns the file content as one part.
func (n *Normaliser) Extract(path string) ([]driven.PageText, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, nil
	}

	return []driven.PageText{{Page: 0, Text: text}}, nil
}
