// Package openai implements the provider adapter for OpenAI's Chat
// Completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nsundt-ai/evaluator-v16/pkg/llm/providers"
)

// DefaultBaseURL is the default OpenAI API endpoint.
const DefaultBaseURL = "https://api.openai.com/v1"

// Client implements providers.Provider for OpenAI.
type Client struct {
	*providers.BaseClient
	apiKey  string
	baseURL string
}

// NewClient creates a new OpenAI client. An empty apiKey produces an
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
func (c *Client) Name() string { return "openai" }

// Available reports whether credentials are configured.
func (c *Client) Available() bool { return c.apiKey != "" }

// Generate performs a single chat completion call.
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string, opts providers.CallOptions) (*providers.Result, error) {
	if c.apiKey == "" {
		return nil, providers.ErrNotConfigured
	}

	messages := make([]Message, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, Message{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, Message{Role: "user", Content: userPrompt})

	payload, err := json.Marshal(Request{
		Model:       opts.Model,
		Messages:    messages,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	body, err := c.Do(ctx, req, "openai")
	if err != nil {
		return nil, err
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse openai response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: %w", providers.ErrEmptyContent)
	}

	choice := resp.Choices[0]
	if choice.FinishReason == "content_filter" {
		return nil, providers.ErrSafetyBlocked
	}
	if choice.Message.Content == "" {
		return nil, fmt.Errorf("openai: %w", providers.ErrEmptyContent)
	}

	return &providers.Result{
		Content:      choice.Message.Content,
		Model:        resp.Model,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}
