package oracle

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiConfig configures a GeminiClient.
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float32
}

// GeminiClient is an Oracle backed by the Gemini API.
type GeminiClient struct {
	name   string
	model  string
	client *genai.Client
	config *genai.GenerateContentConfig
}

// NewGeminiClient creates a client with its own API connection.
func NewGeminiClient(ctx context.Context, name string, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini %s: api key required", name)
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client %s: %w", name, err)
	}

	temperature := cfg.Temperature
	return &GeminiClient{
		name:   name,
		model:  cfg.Model,
		client: client,
		config: &genai.GenerateContentConfig{
			Temperature:      &temperature,
			ResponseMIMEType: "application/json",
		},
	}, nil
}

func (c *GeminiClient) Name() string {
	return c.name
}

func (c *GeminiClient) Assess(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), c.config)
	if err != nil {
		return "", fmt.Errorf("%w: %s: generate content: %w", ErrAssessFailed, c.name, err)
	}
	return resp.Text(), nil
}
