package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Store.Format != "json" {
		t.Errorf("expected Format=json, got %s", cfg.Store.Format)
	}
	if cfg.Store.OwnerScopedUpsert {
		t.Error("expected OwnerScopedUpsert=false by default")
	}
	if cfg.Embedding.Provider != "local" {
		t.Errorf("expected Provider=local, got %s", cfg.Embedding.Provider)
	}
	if cfg.Embedding.Dimension != 0 || cfg.Embedding.Model != "" {
		t.Errorf("expected provider-derived model and dimension, got %q/%d", cfg.Embedding.Model, cfg.Embedding.Dimension)
	}
	if cfg.Search.TopK != 5 {
		t.Errorf("expected TopK=5, got %d", cfg.Search.TopK)
	}
	if cfg.Search.ContextMaxChars != 2000 {
		t.Errorf("expected ContextMaxChars=2000, got %d", cfg.Search.ContextMaxChars)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "research.yaml")

	content := `
store:
  format: bolt
  path: data/vectors.db
  owner_scoped_upsert: true
search:
  top_k: 10
cache:
  ttl: 30s
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Store.Format != "bolt" {
		t.Errorf("expected Format=bolt, got %s", cfg.Store.Format)
	}
	if !cfg.Store.OwnerScopedUpsert {
		t.Error("expected OwnerScopedUpsert=true")
	}
	if cfg.Search.TopK != 10 {
		t.Errorf("expected TopK=10, got %d", cfg.Search.TopK)
	}
	if cfg.Cache.TTL != 30*time.Second {
		t.Errorf("expected TTL=30s, got %s", cfg.Cache.TTL)
	}
	// untouched sections keep defaults
	if cfg.Embedding.Provider != "local" {
		t.Errorf("expected Provider=local, got %s", cfg.Embedding.Provider)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "research.yaml")
	if err := os.WriteFile(configPath, []byte("store: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(configPath); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, ".research"), 0755); err != nil {
		t.Fatal(err)
	}
	content := `
embedding:
  provider: mock
  dimension: 8
`
	if err := os.WriteFile(filepath.Join(tmpDir, ".research", "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Embedding.Provider != "mock" || cfg.Embedding.Dimension != 8 {
		t.Errorf("expected mock/8, got %s/%d", cfg.Embedding.Provider, cfg.Embedding.Dimension)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "research.yaml")
	cfg := DefaultConfig()
	cfg.Server.Addr = ":9090"
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Addr != ":9090" {
		t.Errorf("expected Addr=:9090, got %s", loaded.Server.Addr)
	}
}

func TestStorePath(t *testing.T) {
	cfg := DefaultConfig()
	expected := filepath.Join("/home/user/project", ".research", "vectors.json")
	if path := cfg.StorePath("/home/user/project"); path != expected {
		t.Errorf("expected %s, got %s", expected, path)
	}

	cfg.Store.Path = "/var/lib/research/vectors.json"
	if path := cfg.StorePath("/home/user/project"); path != cfg.Store.Path {
		t.Errorf("expected absolute path kept, got %s", path)
	}
}
