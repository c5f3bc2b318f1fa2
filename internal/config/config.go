// Package config provides configuration loading and structs for the study assistant.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Chunking   ChunkingConfig   `yaml:"chunking"`
	Ingest     IngestConfig     `yaml:"ingest"`
	Generation GenerationConfig `yaml:"generation"`
	Dedup      DedupConfig      `yaml:"dedup"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the knowledge base and flashcard stores.
type StorageConfig struct {
	DatabasePath    string `yaml:"database_path"`     // sqlite chunk records
	VectorIndexPath string `yaml:"vector_index_path"` // text collection vectors
	ImageIndexPath  string `yaml:"image_index_path"`  // image collection vectors
	CardsPath       string `yaml:"cards_path"`        // flashcard JSON collection
	SessionsPath    string `yaml:"sessions_path"`     // review session log
	CardIndexPath   string `yaml:"card_index_path"`   // bleve index over cards
	LedgerPath      string `yaml:"ledger_path"`       // processed-file ledger
}

// EmbeddingConfig holds embedder settings. The same model must serve the add
// and search paths for the life of a collection.
type EmbeddingConfig struct {
	ModelPath  string `yaml:"model_path"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size"`
}

// ChunkingConfig holds section chunking settings, in characters.
type ChunkingConfig struct {
	ChunkSize int `yaml:"chunk_size"`
	Overlap   int `yaml:"overlap"`
}

// IngestConfig holds batch pacing for document ingestion. The pause bounds
// peak memory and embedder load, not correctness.
type IngestConfig struct {
	BatchSize    int `yaml:"batch_size"`
	BatchPauseMS int `yaml:"batch_pause_ms"`
}

// GenerationConfig holds the text-generation backend settings.
type GenerationConfig struct {
	BackendURL  string  `yaml:"backend_url"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	TopP        float64 `yaml:"top_p"`
	MaxTokens   int     `yaml:"max_tokens"`
	TopK        int     `yaml:"top_k"` // retrieval depth, 3..10
}

// DedupConfig holds deduplication weights and thresholds. Values mirror the
// tuning the card collection was built with; kept configurable rather than
// hard-coded.
type DedupConfig struct {
	FrontWeight          float64 `yaml:"front_weight"`
	BackWeight           float64 `yaml:"back_weight"`
	SimilarThreshold     float64 `yaml:"similar_threshold"`
	VerySimilarThreshold float64 `yaml:"very_similar_threshold"`
}

// Load reads and parses the config file at path, expands paths, and applies
// defaults. Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.VectorIndexPath = expandPath(cfg.Storage.VectorIndexPath, configDir)
	cfg.Storage.ImageIndexPath = expandPath(cfg.Storage.ImageIndexPath, configDir)
	cfg.Storage.CardsPath = expandPath(cfg.Storage.CardsPath, configDir)
	cfg.Storage.SessionsPath = expandPath(cfg.Storage.SessionsPath, configDir)
	cfg.Storage.CardIndexPath = expandPath(cfg.Storage.CardIndexPath, configDir)
	cfg.Storage.LedgerPath = expandPath(cfg.Storage.LedgerPath, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are
// relative to configDir; other relative paths are relative to the home
// directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
