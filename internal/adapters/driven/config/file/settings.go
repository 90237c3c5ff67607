package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/attest-labs/reportgen/internal/core/domain"
)

// settingsFile is the on-disk TOML shape of the application settings.
type settingsFile struct {
	DefaultProvider string `toml:"default_provider"`
	DataDir         string `toml:"data_dir"`

	OpenAI providerSection `toml:"openai"`
	XAI    providerSection `toml:"xai"`

	Embedding struct {
		Model      string `toml:"model"`
		BaseURL    string `toml:"base_url"`
		APIKey     string `toml:"api_key"`
		Dimensions int    `toml:"dimensions"`
	} `toml:"embedding"`

	Retrieval struct {
		Strategy string `toml:"strategy"`
	} `toml:"retrieval"`
}

// providerSection holds one chat provider's credentials and defaults.
type providerSection struct {
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

// DefaultSettingsPath returns the default config file location,
// ~/.reportgen/config.toml.
func DefaultSettingsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".reportgen", "config.toml"), nil
}

// LoadSettings reads application settings from a TOML file. A missing
// file yields the defaults rather than an error so a fresh install can
// run read-only commands before any configuration exists.
func LoadSettings(path string) (domain.AppSettings, error) {
	settings := domain.DefaultAppSettings()

	if path == "" {
		var err error
		path, err = DefaultSettingsPath()
		if err != nil {
			return settings, err
		}
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("read config %s: %w", path, err)
	}

	var raw settingsFile
	if err := toml.Unmarshal(data, &raw); err != nil {
		return settings, fmt.Errorf("parse config %s: %w", path, err)
	}

	if raw.DefaultProvider != "" {
		provider := domain.AIProvider(raw.DefaultProvider)
		if !provider.IsValid() {
			return settings, fmt.Errorf("%w: default_provider %q",
				domain.ErrInvalidInput, raw.DefaultProvider)
		}
		settings.DefaultProvider = provider
	}
	if raw.DataDir != "" {
		settings.DataDir = raw.DataDir
	}

	settings.OpenAI = domain.ChatSettings{
		Model:   raw.OpenAI.Model,
		BaseURL: raw.OpenAI.BaseURL,
		APIKey:  raw.OpenAI.APIKey,
	}
	settings.XAI = domain.ChatSettings{
		Model:   raw.XAI.Model,
		BaseURL: raw.XAI.BaseURL,
		APIKey:  raw.XAI.APIKey,
	}
	settings.Embedding = domain.EmbeddingSettings{
		Model:      raw.Embedding.Model,
		BaseURL:    raw.Embedding.BaseURL,
		APIKey:     raw.Embedding.APIKey,
		Dimensions: raw.Embedding.Dimensions,
	}

	if raw.Retrieval.Strategy != "" {
		strategy := domain.RetrievalStrategy(raw.Retrieval.Strategy)
		if !strategy.Valid() {
			return settings, fmt.Errorf("%w: retrieval strategy %q",
				domain.ErrInvalidInput, raw.Retrieval.Strategy)
		}
		settings.Retrieval.Strategy = strategy
	}

	return settings, nil
}
