package embedding

import (
	"fmt"
	"time"

	"research/config"
	"research/internal/domain"
	"research/internal/port"
)

// NewFromConfig builds the embedder selected by cfg.Provider.
func NewFromConfig(cfg config.EmbeddingConfig) (port.Embedder, error) {
	switch cfg.Provider {
	case "local", "":
		return NewLocalEmbedder(cfg.Dimension), nil
	case "mock":
		return NewMockEmbedder(cfg.Dimension), nil
	case "openai", "deepseek", "jina", "ollama":
		return NewHTTPEmbedder(HTTPConfig{
			BaseURL:   baseURLFor(cfg),
			APIKeyEnv: apiKeyEnvFor(cfg),
			Model:     modelFor(cfg),
			Dimension: cfg.Dimension,
			Timeout:   time.Duration(cfg.TimeoutSecs) * time.Second,
			BatchSize: cfg.BatchSize,
		})
	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider: %s", domain.ErrProviderUnavailable, cfg.Provider)
	}
}

// NewLazyFromConfig defers NewFromConfig until the first embedding request.
func NewLazyFromConfig(cfg config.EmbeddingConfig) *Lazy {
	name := cfg.Provider
	if model := modelFor(cfg); model != "" {
		name = cfg.Provider + "/" + model
	}
	return NewLazy(name, func() (port.Embedder, error) {
		return NewFromConfig(cfg)
	})
}

func baseURLFor(cfg config.EmbeddingConfig) string {
	if cfg.BaseURL != "" {
		return cfg.BaseURL
	}
	switch cfg.Provider {
	case "deepseek":
		return DeepSeekBaseURL
	case "jina":
		return JinaBaseURL
	case "ollama":
		return OllamaBaseURL
	default:
		return OpenAIBaseURL
	}
}

func apiKeyEnvFor(cfg config.EmbeddingConfig) string {
	if cfg.Provider == "ollama" {
		return ""
	}
	if cfg.APIKeyEnv != "" {
		return cfg.APIKeyEnv
	}
	switch cfg.Provider {
	case "deepseek":
		return "DEEPSEEK_API_KEY"
	case "jina":
		return "JINA_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

// modelFor returns the configured model or the provider's default one.
// Local and mock embedders have no model to choose.
func modelFor(cfg config.EmbeddingConfig) string {
	if cfg.Model != "" {
		return cfg.Model
	}
	switch cfg.Provider {
	case "openai":
		return "text-embedding-3-small"
	case "deepseek":
		return "deepseek-embedding"
	case "jina":
		return "jina-embeddings-v3"
	case "ollama":
		return "nomic-embed-text"
	default:
		return ""
	}
}
