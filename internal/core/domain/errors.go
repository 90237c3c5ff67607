package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownFramework indicates the framework has no configuration.
	ErrUnknownFramework = errors.New("unknown framework")

	// ErrUnknownSection indicates a selected section id is not configured
	// for the framework.
	ErrUnknownSection = errors.New("unknown section")

	// ErrUnknownProvider indicates the requested LLM provider is not registered.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrLLMUnavailable indicates the chat-completion service is not configured.
	// Report generation cannot run without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Similarity search and ingestion are disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRateLimited indicates the provider rate limit was exceeded and
	// retries were exhausted.
	ErrRateLimited = errors.New("rate limited")

	// ErrNoSections indicates a report was requested with no sections selected.
	ErrNoSections = errors.New("no sections selected")
)
