// Package embedding implements the semantic encoder against any
// OpenAI-compatible embeddings endpoint serving a multilingual model.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"

	"github.com/neuralsearch/backend/config"
	"github.com/neuralsearch/backend/pkg/log"
)

// Client implements domain.Embedder on top of langchaingo's OpenAI-compatible
// embeddings client. Requests are rate limited client-side so a large catalog
// train cannot starve interactive queries of provider quota.
type Client struct {
	embedder embeddings.Embedder
	limiter  *rate.Limiter
}

// NewClient creates an embedding client from configuration.
func NewClient(cfg config.EmbeddingConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("embedding base URL required")
	}
	if cfg.Model == "" {
		return nil, errors.New("embedding model required")
	}

	// Local OpenAI-compatible servers accept any token
	token := cfg.APIKey
	if token == "" {
		token = "none"
	}

	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(token),
		openai.WithEmbeddingModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("creating embedding backend: %w", err)
	}

	opts := []embeddings.Option{embeddings.WithStripNewLines(true)}
	if cfg.BatchSize > 0 {
		opts = append(opts, embeddings.WithBatchSize(cfg.BatchSize))
	}
	embedder, err := embeddings.NewEmbedder(llm, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 10
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 20
	}

	return &Client{
		embedder: embedder,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
	}, nil
}

// EmbedText generates an embedding for a single query string.
func (c *Client) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	vector, err := c.embedder.EmbedQuery(ctx, text)
	if err != nil {
		log.Errorw("embedding query failed", "error", err)
		return nil, err
	}
	if len(vector) == 0 {
		return nil, errors.New("embedding backend returned an empty vector")
	}
	return Normalize(vector), nil
}

// EmbedTexts generates embeddings for a batch of texts, in input order.
func (c *Client) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	vectors, err := c.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		log.Errorw("embedding batch failed", "count", len(texts), "error", err)
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: expected %d, received %d", len(texts), len(vectors))
	}
	for i := range vectors {
		vectors[i] = Normalize(vectors[i])
	}
	return vectors, nil
}

// Normalize scales a vector to unit length so cosine similarity reduces to a
// dot product. Zero vectors are returned unchanged.
func Normalize(vector []float32) []float32 {
	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares == 0 {
		return vector
	}
	norm := float32(1 / math.Sqrt(sumSquares))
	for i := range vector {
		vector[i] *= norm
	}
	return vector
}
