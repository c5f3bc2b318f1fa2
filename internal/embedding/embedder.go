// Package embedding turns chunk text into dense vectors for semantic search.
// The real embedder runs a sentence-transformer ONNX model; a deterministic
// mock covers tests and machines without onnxruntime.
package embedding

import "context"

// Embedder produces fixed-dimension vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
