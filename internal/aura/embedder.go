package aura

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Embedder maps texts to fixed-length vectors, one per input text, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// OllamaEmbedder calls the batch embeddings API of an Ollama-compatible server
type OllamaEmbedder struct {
	client *resty.Client
	model  string
}

// Ensure OllamaEmbedder implements Embedder
var _ Embedder = (*OllamaEmbedder)(nil)

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Model      string      `json:"model"`
	Embeddings [][]float64 `json:"embeddings"`
}

// NewOllamaEmbedder creates an embedder for baseURL (e.g. http://localhost:11434)
func NewOllamaEmbedder(baseURL, model string) *OllamaEmbedder {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(5 * time.Minute)

	return &OllamaEmbedder{client: client, model: model}
}

// Embed returns one vector per text
func (e *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(&embedRequest{Model: e.model, Input: texts}).
		Post("/api/embed")
	if err != nil {
		return nil, fmt.Errorf("embedding request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("embedding service status %d: %s", resp.StatusCode(), resp.String())
	}

	var er embedResponse
	if err := json.Unmarshal(resp.Body(), &er); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(er.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding service returned %d vectors for %d texts", len(er.Embeddings), len(texts))
	}

	return er.Embeddings, nil
}
