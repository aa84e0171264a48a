package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lecternhq/lectern/internal/config"
	"github.com/lecternhq/lectern/pkg/retry"
)

// Embedder calls an EmbeddingGood-compatible HTTP API:
// POST /embed with { "input": string|[]string, "type": "query"|"document",
// "dimension": n }, response { "embeddings": [][]float, "dimension": n }.
type Embedder struct {
	client    *http.Client
	retrier   *retry.Retrier
	baseURL   string
	apiKey    string
	dimension int
}

func NewEmbedder(cfg *config.RAGConfig) (*Embedder, error) {
	if cfg.EmbeddingURL == "" {
		return nil, fmt.Errorf("embedding URL is not set")
	}
	return &Embedder{
		client:    &http.Client{Timeout: 30 * time.Second},
		retrier:   retry.NewDefaultRetrier(),
		baseURL:   strings.TrimSuffix(cfg.EmbeddingURL, "/"),
		apiKey:    cfg.EmbeddingAPIKey,
		dimension: cfg.EmbeddingDimension,
	}, nil
}

type embedRequest struct {
	Input     any    `json:"input"`
	Type      string `json:"type"`
	Dimension int    `json:"dimension"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	Dimension  int         `json:"dimension"`
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.embed(ctx, text, "query")
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embedding API returned no vectors")
	}
	return vecs[0], nil
}

func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vecs, err := e.embed(ctx, texts, "document")
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("embedding API returned %d vectors for %d inputs", len(vecs), len(texts))
	}
	return vecs, nil
}

func (e *Embedder) embed(ctx context.Context, input any, embedType string) ([][]float32, error) {
	body, err := json.Marshal(embedRequest{
		Input:     input,
		Type:      embedType,
		Dimension: e.dimension,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	var result embedResponse
	err = e.retrier.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embed", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if e.apiKey != "" {
			req.Header.Set("x-api-key", e.apiKey)
		}

		resp, err := e.client.Do(req)
		if err != nil {
			return fmt.Errorf("request: %w", err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
		}

		result = embedResponse{}
		if err := json.Unmarshal(data, &result); err != nil {
			return fmt.Errorf("decode: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result.Embeddings, nil
}
