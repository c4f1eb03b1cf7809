// Package config loads application settings from a TOML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"

	"github.com/verdict-systems/clausewise/internal/core/domain"
)

// Default values applied when the config file omits a field.
const (
	DefaultServerAddr        = ":8080"
	DefaultEmbeddingProvider = "openai"
	DefaultEmbeddingModel    = "text-embedding-3-small"
	DefaultLLMProvider       = "openai"
	DefaultLLMModel          = "gpt-4o-mini"
	DefaultTopK              = 5
	DefaultEmbedRatePerSec   = 10
)

// Config is the full application configuration.
type Config struct {
	// DataDir holds the SQLite database. Empty means ~/.clausewise/data.
	DataDir string `toml:"data_dir"`

	// PromptDir holds editable prompt files. Empty means ~/.clausewise/prompts.
	PromptDir string `toml:"prompt_dir"`

	Server    ServerConfig   `toml:"server"`
	Embedding ProviderConfig `toml:"embedding"`
	LLM       ProviderConfig `toml:"llm"`
	QA        QAConfig       `toml:"qa"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `toml:"addr"`
}

// ProviderConfig names an AI provider and model.
type ProviderConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

// QAConfig tunes retrieval and embedding throughput.
type QAConfig struct {
	// TopK is the number of clauses retrieved per question.
	TopK int `toml:"top_k"`

	// EmbedRatePerSec throttles embedding calls during ingestion.
	EmbedRatePerSec int `toml:"embed_rate_per_sec"`
}

// DefaultPath returns the default config file location,
// ~/.clausewise/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".clausewise", "config.toml"), nil
}

// Load reads the config file at path, applies defaults and environment
// overrides, and returns the result. A missing file is not an error;
// defaults and environment variables alone make a working config.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Fall through to defaults.
	case err != nil:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = DefaultEmbeddingProvider
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = DefaultEmbeddingModel
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = DefaultLLMProvider
	}
	if c.LLM.Model == "" {
		c.LLM.Model = DefaultLLMModel
	}
	if c.QA.TopK <= 0 {
		c.QA.TopK = DefaultTopK
	}
	if c.QA.EmbedRatePerSec <= 0 {
		c.QA.EmbedRatePerSec = DefaultEmbedRatePerSec
	}
}

// applyEnv overlays environment variables on the file values.
// OPENAI_API_KEY feeds both providers when they point at OpenAI, so a
// bare environment is enough to get started without a config file.
func (c *Config) applyEnv() {
	if v := os.Getenv("CLAUSEWISE_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("CLAUSEWISE_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		if c.Embedding.Provider == string(domain.AIProviderOpenAI) && c.Embedding.APIKey == "" {
			c.Embedding.APIKey = v
		}
		if c.LLM.Provider == string(domain.AIProviderOpenAI) && c.LLM.APIKey == "" {
			c.LLM.APIKey = v
		}
	}
	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		if c.Embedding.Provider == string(domain.AIProviderOllama) && c.Embedding.BaseURL == "" {
			c.Embedding.BaseURL = v
		}
		if c.LLM.Provider == string(domain.AIProviderOllama) && c.LLM.BaseURL == "" {
			c.LLM.BaseURL = v
		}
	}
	if v := os.Getenv("CLAUSEWISE_TOP_K"); v != "" {
		if k, err := strconv.Atoi(v); err == nil && k > 0 {
			c.QA.TopK = k
		}
	}
}

// EmbeddingSettings converts the embedding section to domain settings.
func (c *Config) EmbeddingSettings() *domain.EmbeddingSettings {
	return &domain.EmbeddingSettings{
		Provider: domain.AIProvider(c.Embedding.Provider),
		Model:    c.Embedding.Model,
		APIKey:   c.Embedding.APIKey,
		BaseURL:  c.Embedding.BaseURL,
	}
}

// LLMSettings converts the llm section to domain settings.
func (c *Config) LLMSettings() *domain.LLMSettings {
	return &domain.LLMSettings{
		Provider: domain.AIProvider(c.LLM.Provider),
		Model:    c.LLM.Model,
		APIKey:   c.LLM.APIKey,
		BaseURL:  c.LLM.BaseURL,
	}
}
