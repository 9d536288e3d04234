package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/mktu/recipe-app/internal/infrastructure/config"
	"github.com/mktu/recipe-app/internal/pkg/common"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// Client talks to OpenRouter's chat-completions API and decodes structured
// JSON answers into caller-provided types.
type Client struct {
	config *config.OpenRouterConfig
	client *resty.Client
}

// NewClient creates an OpenRouter client.
func NewClient(cfg *config.OpenRouterConfig) *Client {
	client := resty.New().
		SetBaseURL(openRouterBaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("HTTP-Referer", "https://recipe-app.example.com").
		SetHeader("X-Title", "Recipe App")

	return &Client{
		config: cfg,
		client: client,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string                 `json:"model"`
	Messages       []chatMessage          `json:"messages"`
	MaxTokens      int                    `json:"max_tokens,omitempty"`
	ResponseFormat map[string]interface{} `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// GenerateObject asks the model for a JSON answer and unmarshals it into out.
// Fenced code blocks and unquoted keys in the raw answer are tolerated.
func (c *Client) GenerateObject(ctx context.Context, prompt string, out interface{}) error {
	req := chatRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		MaxTokens: c.config.MaxTokens,
		ResponseFormat: map[string]interface{}{
			"type": "json_object",
		},
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/chat/completions")

	if err != nil {
		return fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("OpenRouter API returned %d: %s", resp.StatusCode(), resp.String())
	}

	var result chatResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return fmt.Errorf("failed to parse OpenRouter response: %w", err)
	}
	if len(result.Choices) == 0 {
		return fmt.Errorf("no choices in OpenRouter response")
	}

	common.LogDebug("OpenRouter completion",
		zap.String("model", c.config.Model),
		zap.Int("total_tokens", result.Usage.TotalTokens))

	content := common.StripJSONFences(result.Choices[0].Message.Content)
	content = common.QuoteJSONKeys(content)
	if err := common.ParseJSON(content, out); err != nil {
		return fmt.Errorf("failed to parse model answer: %w", err)
	}
	return nil
}
