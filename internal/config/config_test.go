package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
storage:
  database_path: "test.db"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Storage.DatabasePath == "" {
		t.Error("database_path should be set")
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "localhost"
  port: 8080
storage:
  database_path: "./data/kb/chunks.db"
  cards_path: "./data/cards.json"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	wantDB := filepath.Join(dir, "data", "kb", "chunks.db")
	if cfg.Storage.DatabasePath != wantDB {
		t.Errorf("database_path = %q, want %q", cfg.Storage.DatabasePath, wantDB)
	}
	wantCards := filepath.Join(dir, "data", "cards.json")
	if cfg.Storage.CardsPath != wantCards {
		t.Errorf("cards_path = %q, want %q", cfg.Storage.CardsPath, wantCards)
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)

	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d", cfg.Server.Port)
	}
	if cfg.Chunking.ChunkSize != 1000 || cfg.Chunking.Overlap != 200 {
		t.Errorf("default chunking = %+v", cfg.Chunking)
	}
	if cfg.Embedding.Dimensions == 0 || cfg.Embedding.MaxTokens == 0 {
		t.Errorf("embedding defaults not applied: %+v", cfg.Embedding)
	}
	if cfg.Generation.Temperature != 0.1 || cfg.Generation.TopP != 0.85 || cfg.Generation.MaxTokens != 1200 {
		t.Errorf("generation defaults = %+v", cfg.Generation)
	}
	if cfg.Dedup.FrontWeight != 0.6 || cfg.Dedup.BackWeight != 0.4 {
		t.Errorf("dedup weights = %+v", cfg.Dedup)
	}
	if cfg.Dedup.SimilarThreshold != 0.85 || cfg.Dedup.VerySimilarThreshold != 0.95 {
		t.Errorf("dedup thresholds = %+v", cfg.Dedup)
	}
}

func TestApplyDefaults_keepsExplicitValues(t *testing.T) {
	cfg := Config{
		Server:   ServerConfig{Port: 9999},
		Chunking: ChunkingConfig{ChunkSize: 500, Overlap: 50},
	}
	ApplyDefaults(&cfg)
	if cfg.Server.Port != 9999 {
		t.Errorf("explicit port overwritten: %d", cfg.Server.Port)
	}
	if cfg.Chunking.ChunkSize != 500 || cfg.Chunking.Overlap != 50 {
		t.Errorf("explicit chunking overwritten: %+v", cfg.Chunking)
	}
}
