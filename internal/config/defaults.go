package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "data/kb/chunks.db"
	}
	if cfg.Storage.VectorIndexPath == "" {
		cfg.Storage.VectorIndexPath = "data/kb/texts.vec"
	}
	if cfg.Storage.ImageIndexPath == "" {
		cfg.Storage.ImageIndexPath = "data/kb/images.vec"
	}
	if cfg.Storage.CardsPath == "" {
		cfg.Storage.CardsPath = "data/flashcards/cards.json"
	}
	if cfg.Storage.SessionsPath == "" {
		cfg.Storage.SessionsPath = "data/flashcards/sessions.json"
	}
	if cfg.Storage.CardIndexPath == "" {
		cfg.Storage.CardIndexPath = "data/flashcards/cards.bleve"
	}
	if cfg.Storage.LedgerPath == "" {
		cfg.Storage.LedgerPath = "data/processed_files.json"
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "data/models/all-MiniLM-L6-v2.onnx"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Chunking.ChunkSize == 0 {
		cfg.Chunking.ChunkSize = 1000
	}
	if cfg.Chunking.Overlap == 0 {
		cfg.Chunking.Overlap = 200
	}
	if cfg.Ingest.BatchSize == 0 {
		cfg.Ingest.BatchSize = 16
	}
	if cfg.Generation.BackendURL == "" {
		cfg.Generation.BackendURL = "http://localhost:11434"
	}
	if cfg.Generation.Model == "" {
		cfg.Generation.Model = "llama3.1:8b"
	}
	if cfg.Generation.Temperature == 0 {
		cfg.Generation.Temperature = 0.1 // low for medical accuracy
	}
	if cfg.Generation.TopP == 0 {
		cfg.Generation.TopP = 0.85
	}
	if cfg.Generation.MaxTokens == 0 {
		cfg.Generation.MaxTokens = 1200
	}
	if cfg.Generation.TopK == 0 {
		cfg.Generation.TopK = 5
	}
	if cfg.Dedup.FrontWeight == 0 {
		cfg.Dedup.FrontWeight = 0.6
	}
	if cfg.Dedup.BackWeight == 0 {
		cfg.Dedup.BackWeight = 0.4
	}
	if cfg.Dedup.SimilarThreshold == 0 {
		cfg.Dedup.SimilarThreshold = 0.85
	}
	if cfg.Dedup.VerySimilarThreshold == 0 {
		cfg.Dedup.VerySimilarThreshold = 0.95
	}
}
