// Package rag answers questions by retrieving knowledge base chunks and
// prompting a local LLM, with a keyword fallback when the backend is down.
package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/config"
)

// BackendError wraps a generation backend failure so the orchestrator can
// distinguish it from retrieval errors and fall back.
type BackendError struct {
	Backend string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("generation backend %s: %v", e.Backend, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// Generator produces an answer from a system prompt and user prompt.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
	Name() string
}

// OllamaGenerator calls a local Ollama server's chat endpoint.
type OllamaGenerator struct {
	baseURL string
	model   string
	opts    chatOptions
	client  *http.Client
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	NumPredict  int     `json:"num_predict"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  chatOptions   `json:"options"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Error   string      `json:"error,omitempty"`
}

// NewOllamaGenerator builds a generator from the generation config.
func NewOllamaGenerator(cfg config.GenerationConfig) *OllamaGenerator {
	return &OllamaGenerator{
		baseURL: cfg.BackendURL,
		model:   cfg.Model,
		opts: chatOptions{
			Temperature: cfg.Temperature,
			TopP:        cfg.TopP,
			NumPredict:  cfg.MaxTokens,
		},
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

// Name identifies the backend in logs and errors.
func (g *OllamaGenerator) Name() string { return "ollama" }

// Generate sends a non-streaming chat request and returns the answer text.
// Any transport or server failure comes back as a *BackendError.
func (g *OllamaGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Stream:  false,
		Options: g.opts,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", &BackendError{Backend: g.Name(), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", &BackendError{Backend: g.Name(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", &BackendError{Backend: g.Name(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &BackendError{Backend: g.Name(), Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &BackendError{
			Backend: g.Name(),
			Err:     fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(body)),
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &BackendError{Backend: g.Name(), Err: fmt.Errorf("decode response: %w", err)}
	}
	if parsed.Error != "" {
		return "", &BackendError{Backend: g.Name(), Err: fmt.Errorf("%s", parsed.Error)}
	}
	return parsed.Message.Content, nil
}
