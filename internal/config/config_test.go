package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const minimalYAML = `
database:
  url: postgres://localhost/clipvault
redis:
  addr: localhost:6379
ai:
  openai_key: sk-test
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeTemp(t, minimalYAML), false)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("log defaults = %q/%q", cfg.Log.Level, cfg.Log.Format)
	}
	if cfg.Queue.VisibilityTimeout != 30*time.Minute {
		t.Errorf("visibility timeout default = %v", cfg.Queue.VisibilityTimeout)
	}
	if cfg.Chunking.MaxChars != 500 {
		t.Errorf("chunking default = %d", cfg.Chunking.MaxChars)
	}
	if cfg.AI.EmbeddingDim != 768 {
		t.Errorf("embedding dim default = %d", cfg.AI.EmbeddingDim)
	}
	if cfg.Retrieval.TopK != 5 {
		t.Errorf("top_k default = %d", cfg.Retrieval.TopK)
	}
}

func TestLoadConfigRequiresDatabase(t *testing.T) {
	_, err := LoadConfig(writeTemp(t, "redis:\n  addr: localhost:6379\n"), false)
	if err == nil {
		t.Fatal("expected error for missing database.url")
	}
}

func TestLoadConfigRequiresAIProviderUnlessDev(t *testing.T) {
	yml := "database:\n  url: postgres://x\nredis:\n  addr: localhost:6379\n"
	if _, err := LoadConfig(writeTemp(t, yml), false); err == nil {
		t.Fatal("expected error for missing AI provider")
	}
	if _, err := LoadConfig(writeTemp(t, yml), true); err != nil {
		t.Fatalf("dev mode should not require an AI provider: %v", err)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	yml := minimalYAML + `
queue:
  visibility_timeout: 1h
watcher:
  poll_interval: 1m
retrieval:
  min_similarity: 0.4
`
	cfg, err := LoadConfig(writeTemp(t, yml), false)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Queue.VisibilityTimeout != time.Hour {
		t.Errorf("visibility timeout = %v", cfg.Queue.VisibilityTimeout)
	}
	if cfg.Watcher.PollInterval != time.Minute {
		t.Errorf("poll interval = %v", cfg.Watcher.PollInterval)
	}
	if cfg.Retrieval.MinSimilarity != 0.4 {
		t.Errorf("min similarity = %v", cfg.Retrieval.MinSimilarity)
	}
}
