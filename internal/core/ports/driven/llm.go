package driven

import "context"

// ChatService is the raw chat-completion transport against one LLM provider.
//
// Implementations must retry transient provider failures (rate limiting,
// 5xx-class errors) with backoff up to a bounded attempt count, and fail
// hard after exhausting retries or on non-retryable errors such as missing
// credentials or a malformed request.
//
// Implementations may include:
//   - OpenAI (gpt-4o and friends)
//   - xAI (Grok)
type ChatService interface {
	// Chat sends an ordered message sequence and returns the completion text.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request. Used at startup to surface credential problems before
	// any generation work begins.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures a completion request.
type ChatOptions struct {
	// MaxTokens bounds the generated output length.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64

	// JSONOutput hints that the model should return a JSON object.
	// Providers without native structured-output support ignore it;
	// callers enforce JSON via the prompt in that case.
	JSONOutput bool
}
