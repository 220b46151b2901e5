package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the research vector service.
type Config struct {
	Store     StoreConfig     `yaml:"store"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Cache     CacheConfig     `yaml:"cache"`
	Import    ImportConfig    `yaml:"import"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// StoreConfig holds vector store persistence configuration.
type StoreConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"` // "json", "bolt", "sqlite", "memory"
	// Dimension fixes the embedding length; 0 infers it from the first record.
	Dimension int `yaml:"dimension"`
	// OwnerScopedUpsert keys upserts by (id, owner) instead of id alone.
	OwnerScopedUpsert bool `yaml:"owner_scoped_upsert"`
}

// EmbeddingConfig holds embedding provider configuration.
type EmbeddingConfig struct {
	Provider    string `yaml:"provider"` // "local", "openai", "deepseek", "jina", "ollama", "mock"
	Model       string `yaml:"model"`
	APIKeyEnv   string `yaml:"api_key_env"`
	BaseURL     string `yaml:"base_url"`
	Dimension   int    `yaml:"dimension"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	BatchSize   int    `yaml:"batch_size"`
}

// SearchConfig holds retrieval configuration.
type SearchConfig struct {
	TopK            int     `yaml:"top_k"`
	MinScore        float64 `yaml:"min_score"` // context builder drops hits below this (0 = disabled)
	ContextMaxChars int     `yaml:"context_max_chars"`
}

// CacheConfig holds search result cache configuration.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	MaxSize int           `yaml:"max_size"`
	TTL     time.Duration `yaml:"ttl"`
}

// ImportConfig holds bulk import configuration.
type ImportConfig struct {
	Includes     []string `yaml:"includes"`
	Excludes     []string `yaml:"excludes"`
	MaxTextChars int      `yaml:"max_text_chars"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Path:   filepath.Join(".research", "vectors.json"),
			Format: "json",
		},
		Embedding: EmbeddingConfig{
			// model, key variable and dimension follow the provider when unset
			Provider:    "local",
			TimeoutSecs: 60,
			BatchSize:   100,
		},
		Search: SearchConfig{
			TopK:            5,
			ContextMaxChars: 2000,
		},
		Cache: CacheConfig{
			Enabled: true,
			MaxSize: 100,
			TTL:     5 * time.Minute,
		},
		Import: ImportConfig{
			Includes:     []string{"**/*.md", "**/*.txt"},
			Excludes:     []string{"**/.git/**", "**/node_modules/**", "**/.research/**"},
			MaxTextChars: 20000,
		},
		Server: ServerConfig{
			Addr: ":8000",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for research.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "research.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".research", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// StorePath resolves the store path against dir when it is relative.
func (c *Config) StorePath(dir string) string {
	if filepath.IsAbs(c.Store.Path) {
		return c.Store.Path
	}
	return filepath.Join(dir, c.Store.Path)
}
