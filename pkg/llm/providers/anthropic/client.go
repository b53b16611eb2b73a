// Package anthropic implements the provider adapter for Anthropic's native
// Messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nsundt-ai/evaluator-v16/pkg/llm/providers"
)

const (
	// DefaultBaseURL is the default Anthropic API endpoint.
	DefaultBaseURL = "https://api.anthropic.com/v1"
	// APIVersion is the required Anthropic API version header.
	APIVersion = "2023-06-01"
)

// Client implements providers.Provider for Anthropic.
type Client struct {
	*providers.BaseClient
	apiKey  string
	baseURL string
}

// NewClient creates a new Anthropic client. An empty apiKey produces an
// unavailable provider the gateway skips.
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseClient: providers.NewBaseClient(90 * time.Second),
		apiKey:     apiKey,
		baseURL:    baseURL,
	}
}

// Name returns the canonical provider name.
func (c *Client) Name() string { return "anthropic" }

// Available reports whether credentials are configured.
func (c *Client) Available() bool { return c.apiKey != "" }

// Generate performs a single Messages API call.
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string, opts providers.CallOptions) (*providers.Result, error) {
	if c.apiKey == "" {
		return nil, providers.ErrNotConfigured
	}

	reqBody := Request{
		Model:       opts.Model,
		Messages:    []Message{{Role: "user", Content: userPrompt}},
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		System:      systemPrompt,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", APIVersion)

	body, err := c.Do(ctx, req, "anthropic")
	if err != nil {
		return nil, err
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse anthropic response: %w", err)
	}

	if resp.StopReason == "refusal" {
		return nil, providers.ErrSafetyBlocked
	}

	var content string
	for _, item := range resp.Content {
		if item.Type == "text" {
			content += item.Text
		}
	}
	if content == "" {
		return nil, fmt.Errorf("anthropic: %w", providers.ErrEmptyContent)
	}

	return &providers.Result{
		Content:      content,
		Model:        resp.Model,
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	}, nil
}
