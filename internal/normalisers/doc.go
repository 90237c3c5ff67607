// Package normalisers contains file-format normalisers that extract
// plain text from evidence documents before chunking and indexing.
//
// Each format lives in its own subpackage implementing driven.Normaliser.
// The ingest service tries normalisers in registration order and uses the
// first one that supports the file.
package normalisers
