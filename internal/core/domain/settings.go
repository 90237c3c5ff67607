package domain

// AIProvider identifies a chat-completion or embedding provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderXAI is the xAI (Grok) cloud API.
	AIProviderXAI AIProvider = "xai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOpenAI, AIProviderXAI:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// ChatSettings holds configuration for one chat-completion provider.
type ChatSettings struct {
	// Model is the default model for the provider.
	Model string

	// BaseURL is the API endpoint. Empty selects the provider default.
	BaseURL string

	// APIKey is the API key.
	APIKey string
}

// IsConfigured returns true if the provider can be used.
func (c ChatSettings) IsConfigured() bool {
	return c.APIKey != ""
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint. Empty selects the provider default.
	BaseURL string

	// APIKey is the API key.
	APIKey string

	// Dimensions overrides the model's default vector size.
	Dimensions int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	return e.APIKey != ""
}

// RetrievalSettings holds retrieval behaviour configuration.
type RetrievalSettings struct {
	// Strategy is the default retrieval strategy for report runs.
	Strategy RetrievalStrategy
}

// AppSettings holds all application settings.
type AppSettings struct {
	// DefaultProvider selects the chat provider when a request names none.
	DefaultProvider AIProvider

	// OpenAI holds the OpenAI chat provider settings.
	OpenAI ChatSettings

	// XAI holds the xAI chat provider settings.
	XAI ChatSettings

	// Embedding holds the embedding provider settings (OpenAI only).
	Embedding EmbeddingSettings

	// Retrieval holds retrieval behaviour settings.
	Retrieval RetrievalSettings

	// DataDir is the root directory for the store and prompt packs.
	DataDir string
}

// ChatSettingsFor returns the settings block for the given provider.
func (s AppSettings) ChatSettingsFor(provider AIProvider) (ChatSettings, bool) {
	switch provider {
	case AIProviderOpenAI:
		return s.OpenAI, true
	case AIProviderXAI:
		return s.XAI, true
	default:
		return ChatSettings{}, false
	}
}

// DefaultAppSettings returns settings with sensible defaults.
// Providers are left unconfigured; keys come from the config file.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		DefaultProvider: AIProviderOpenAI,
		Retrieval: RetrievalSettings{
			Strategy: StrategySimilarity,
		},
	}
}
