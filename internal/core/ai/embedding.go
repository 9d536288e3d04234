package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/mktu/recipe-app/internal/infrastructure/config"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// EmbeddingClient generates text embeddings through the Gemini REST API.
type EmbeddingClient struct {
	config *config.EmbeddingConfig
	client *resty.Client
}

// NewEmbeddingClient creates a Gemini embedding client.
func NewEmbeddingClient(cfg *config.EmbeddingConfig) *EmbeddingClient {
	client := resty.New().
		SetBaseURL(geminiBaseURL).
		SetTimeout(cfg.Timeout).
		SetQueryParam("key", cfg.APIKey)

	return &EmbeddingClient{
		config: cfg,
		client: client,
	}
}

type embedContent struct {
	Parts []struct {
		Text string `json:"text"`
	} `json:"parts"`
}

type embedRequest struct {
	Model   string       `json:"model"`
	Content embedContent `json:"content"`
}

type batchEmbedRequest struct {
	Requests []embedRequest `json:"requests"`
}

type embeddingValues struct {
	Values []float64 `json:"values"`
}

type batchEmbedResponse struct {
	Embeddings []embeddingValues `json:"embeddings"`
}

func (c *EmbeddingClient) newRequest(text string) embedRequest {
	req := embedRequest{Model: "models/" + c.config.Model}
	req.Content.Parts = append(req.Content.Parts, struct {
		Text string `json:"text"`
	}{Text: text})
	return req
}

// Embed generates the embedding vector for a single text.
func (c *EmbeddingClient) Embed(ctx context.Context, text string) ([]float64, error) {
	vectors, err := c.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding response")
	}
	return vectors[0], nil
}

// EmbedMany generates embedding vectors for a batch of texts in one call.
// The result has one vector per input, in input order.
func (c *EmbeddingClient) EmbedMany(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body := batchEmbedRequest{}
	for _, text := range texts {
		body.Requests = append(body.Requests, c.newRequest(text))
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		Post(fmt.Sprintf("/models/%s:batchEmbedContents", c.config.Model))

	if err != nil {
		return nil, fmt.Errorf("failed to send embedding request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("embedding API returned %d: %s", resp.StatusCode(), resp.String())
	}

	var result batchEmbedResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse embedding response: %w", err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(result.Embeddings), len(texts))
	}

	vectors := make([][]float64, 0, len(result.Embeddings))
	for _, e := range result.Embeddings {
		vectors = append(vectors, e.Values)
	}
	return vectors, nil
}
