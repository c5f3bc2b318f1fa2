//go:build !cgo
// +build !cgo

package embedding

import (
	"context"
	"errors"
)

// ONNXEmbedder placeholder for builds without CGO; see onnx.go.
type ONNXEmbedder struct{}

// NewONNXEmbedder fails when built without CGO.
func NewONNXEmbedder(_ string, _, _, _ int) (*ONNXEmbedder, error) {
	return nil, errors.New("ONNX embedder requires CGO; build with CGO_ENABLED=1 and onnxruntime installed")
}

var errNoCGO = errors.New("ONNX embedder requires CGO")

// Embed is unreachable: NewONNXEmbedder always fails without CGO.
func (e *ONNXEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return nil, errNoCGO
}

// EmbedBatch is unreachable: NewONNXEmbedder always fails without CGO.
func (e *ONNXEmbedder) EmbedBatch(_ context.Context, _ []string) ([][]float32, error) {
	return nil, errNoCGO
}

// Dimensions is unreachable: NewONNXEmbedder always fails without CGO.
func (e *ONNXEmbedder) Dimensions() int { return 0 }

// Close is unreachable: NewONNXEmbedder always fails without CGO.
func (e *ONNXEmbedder) Close() error { return nil }
