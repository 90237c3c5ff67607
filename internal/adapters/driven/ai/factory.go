// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	openaiembed "github.com/attest-labs/reportgen/internal/adapters/driven/embedding/openai"
	openaillm "github.com/attest-labs/reportgen/internal/adapters/driven/llm/openai"
	xaillm "github.com/attest-labs/reportgen/internal/adapters/driven/llm/xai"
	"github.com/attest-labs/reportgen/internal/core/domain"
	"github.com/attest-labs/reportgen/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Ensure Factory implements the interface.
var _ driven.ChatFactory = (*Factory)(nil)

// Factory resolves provider/model selections into chat services using
// the application settings for credentials and defaults.
type Factory struct {
	settings domain.AppSettings
}

// NewFactory creates a chat service factory bound to the given settings.
func NewFactory(settings domain.AppSettings) *Factory {
	return &Factory{settings: settings}
}

// Create returns a chat service for the named provider. An empty provider
// selects the configured default; an empty model selects the provider's
// configured default model.
func (f *Factory) Create(provider, model string) (driven.ChatService, error) {
	p := domain.AIProvider(provider)
	if p == "" {
		p = f.settings.DefaultProvider
	}
	if !p.IsValid() {
		return nil, fmt.Errorf("%w: %q (want openai or xai)", domain.ErrUnknownProvider, provider)
	}

	settings, _ := f.settings.ChatSettingsFor(p)
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: no API key configured for %s", domain.ErrLLMUnavailable, p)
	}
	if model == "" {
		model = settings.Model
	}

	switch p {
	case domain.AIProviderOpenAI:
		return openaillm.NewChatService(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   model,
		})

	case domain.AIProviderXAI:
		return xaillm.NewChatService(xaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   model,
		})

	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownProvider, provider)
	}
}

// CreateEmbeddingService creates the embedding service from the settings.
// Only OpenAI embeddings are supported.
func CreateEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: no embedding API key configured", domain.ErrEmbeddingUnavailable)
	}

	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: settings.Dimensions,
	})
}

// CreateAndValidateEmbeddingService creates an embedding service and
// validates connectivity before handing it back.
func CreateAndValidateEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}

// ValidateChatConfig creates a chat service for the provider and pings it.
// Intended for pre-flight checks before a long report run.
func (f *Factory) ValidateChatConfig(provider, model string) error {
	svc, err := f.Create(provider, model)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}
