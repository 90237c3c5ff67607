// Package pdf extracts page-wise text from PDF evidence documents.
package pdf

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/attest-labs/reportgen/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles PDF documents. Text is extracted per page so chunk
// citations can carry real page numbers.
type Normaliser struct{}

// New creates a new PDF normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Supports reports whether the file looks like a PDF.
func (n *Normaliser) Supports(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// Extract returns the PDF's text page by page. Pages whose text cannot
// be decoded are skipped rather than failing the whole document.
func (n *Normaliser) Extract(path string) ([]driven.PageText, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	numPages := r.NumPage()
	pages := make([]driven.PageText, 0, numPages)

	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		pages = append(pages, driven.PageText{
			Page: i - 1,
			Text: text,
		})
	}

	return pages, nil
}
