// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - ChatService: Chat-completion transport against an LLM provider
//   - SimilaritySearcher: Ranked passage retrieval over named pools
//   - PromptStore: Per-framework section directives and guidance
//   - RunStore: Persistence of finished report runs
//
// # Optional Interfaces
//
//   - EmbeddingService: Generates vector embeddings. Required for
//     ingestion; retrieval backends that embed internally may not need it.
//   - PoolIndexer: Evidence pool population (the ingestion path)
//   - EventSink: Push delivery of stream events to a callback endpoint
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
