package domain

// AIProvider identifies a supported AI service provider.
type AIProvider string

// Supported providers.
const (
	AIProviderOpenAI AIProvider = "openai"
	AIProviderOllama AIProvider = "ollama"
)

// EmbeddingSettings configures the embedding provider.
type EmbeddingSettings struct {
	Provider AIProvider
	Model    string
	APIKey   string
	BaseURL  string
}

// IsConfigured reports whether the settings name a usable provider.
func (s *EmbeddingSettings) IsConfigured() bool {
	if s == nil || s.Provider == "" {
		return false
	}
	if s.Provider == AIProviderOpenAI && s.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings configures the answer-generation provider.
type LLMSettings struct {
	Provider AIProvider
	Model    string
	APIKey   string
	BaseURL  string
}

// IsConfigured reports whether the settings name a usable provider.
func (s *LLMSettings) IsConfigured() bool {
	if s == nil || s.Provider == "" {
		return false
	}
	if s.Provider == AIProviderOpenAI && s.APIKey == "" {
		return false
	}
	return true
}

// EmbeddingDimensions returns the known vector sizes per model.
// Models absent from the map fall back to provider defaults.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		"nomic-embed-text":       768,
		"all-minilm":             384,
		"mxbai-embed-large":      1024,
	}
}
