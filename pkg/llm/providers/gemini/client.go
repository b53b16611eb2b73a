// Package gemini implements the provider adapter for Google's Gemini
// GenerateContent API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nsundt-ai/evaluator-v16/pkg/llm/providers"
)

// DefaultBaseURL is the default Gemini API endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client implements providers.Provider for Google Gemini.
type Client struct {
	*providers.BaseClient
	apiKey  string
	baseURL string
}

// NewClient creates a new Gemini client. An empty apiKey produces an
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
func (c *Client) Name() string { return "google" }

// Available reports whether credentials are configured.
func (c *Client) Available() bool { return c.apiKey != "" }

// Generate performs a single GenerateContent call.
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string, opts providers.CallOptions) (*providers.Result, error) {
	if c.apiKey == "" {
		return nil, providers.ErrNotConfigured
	}

	reqBody := Request{
		Contents: []Content{
			{Role: "user", Parts: []Part{{Text: userPrompt}}},
		},
		GenerationConfig: &GenerationConfig{
			Temperature:     opts.Temperature,
			MaxOutputTokens: opts.MaxTokens,
		},
	}
	if systemPrompt != "" {
		reqBody.SystemInstruction = &SystemInstruction{Parts: []Part{{Text: systemPrompt}}}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, opts.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	body, err := c.Do(ctx, req, "gemini")
	if err != nil {
		return nil, err
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse gemini response: %w", err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("%w: %s", providers.ErrSafetyBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("gemini: %w", providers.ErrEmptyContent)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == "SAFETY" {
		return nil, providers.ErrSafetyBlocked
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		sb.WriteString(part.Text)
	}
	content := sb.String()
	if content == "" {
		return nil, fmt.Errorf("gemini: %w", providers.ErrEmptyContent)
	}

	model := resp.ModelVersion
	if model == "" {
		model = opts.Model
	}
	return &providers.Result{
		Content:      content,
		Model:        model,
		InputTokens:  resp.UsageMetadata.PromptTokenCount,
		OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
	}, nil
}
