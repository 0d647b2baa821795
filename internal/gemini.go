package internal

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const (
	DefaultGeminiModel     = "gemini-embedding-001"
	DefaultGeminiDimension = 768
)

type GeminiConfig struct {
	APIKey    string
	Model     string
	Dimension int
}

var _ Embedder = (*GeminiEmbedder)(nil)

type GeminiEmbedder struct {
	client    *genai.Client
	model     string
	dimension int
}

func NewGeminiEmbedder(ctx context.Context, cfg GeminiConfig) (*GeminiEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini embedder: api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	e := &GeminiEmbedder{
		client:    client,
		model:     cfg.Model,
		dimension: cfg.Dimension,
	}
	if e.model == "" {
		e.model = DefaultGeminiModel
	}
	if e.dimension == 0 {
		e.dimension = DefaultGeminiDimension
	}

	return e, nil
}

func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	dim := int32(e.dimension)
	resp, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), &genai.EmbedContentConfig{
		OutputDimensionality: &dim,
	})
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, fmt.Errorf("embed content: empty response")
	}

	return resp.Embeddings[0].Values, nil
}

func (e *GeminiEmbedder) Dimension() int {
	return e.dimension
}

func (e *GeminiEmbedder) Name() string {
	return BackendGemini + ":" + e.model
}

func (e *GeminiEmbedder) Close() error {
	return nil
}
