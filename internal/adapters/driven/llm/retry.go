// Package llm holds shared transport behaviour for chat-completion adapters.
package llm

import (
	"context"
	"time"

	"github.com/attest-labs/reportgen/internal/logger"
)

const (
	// MaxAttempts bounds retries of one logical request.
	MaxAttempts = 4

	// backoffBase is the first retry delay; delays double per attempt.
	backoffBase = 800 * time.Millisecond

	// backoffCap bounds any single delay.
	backoffCap = 8 * time.Second
)

// Retryable reports whether an HTTP status indicates a transient provider
// failure worth retrying: rate limiting and server-side errors. A zero
// status (no response at all) is also retried, covering timeouts and
// connection resets.
func Retryable(status int) bool {
	switch status {
	case 0, 429, 500, 502, 503, 504, 520, 522, 524, 529:
		return true
	}
	return false
}

// WithRetry runs attempt up to MaxAttempts times with exponential backoff,
// retrying only transient failures. The attempt reports the HTTP status of
// the response (0 when none was received) for classification. Non-retryable
// failures and exhausted retries propagate to the caller.
func WithRetry(ctx context.Context, attempt func() (string, int, error)) (string, error) {
	var lastErr error
	for i := 1; i <= MaxAttempts; i++ {
		text, status, err := attempt()
		if err == nil {
			return text, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !Retryable(status) || i == MaxAttempts {
			break
		}

		delay := backoffBase << (i - 1)
		if delay > backoffCap {
			delay = backoffCap
		}
		logger.Warn("Transient LLM failure (attempt %d/%d, status %d), retrying in %s: %v",
			i, MaxAttempts, status, delay, err)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}
	return "", lastErr
}
