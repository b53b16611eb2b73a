package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// BaseClient provides the HTTP plumbing common to all adapters. There is no
// per-request retry here: the gateway's ordered fallback is the retry
// mechanism.
type BaseClient struct {
	HTTPClient *http.Client
}

// NewBaseClient creates a base client. The client-level timeout is a
// backstop; per-call timeouts arrive via the request context.
func NewBaseClient(timeout time.Duration) *BaseClient {
	return &BaseClient{
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// Do executes the request and returns the response body. Non-2xx statuses
// are returned as errors with the provider's error message extracted when
// possible.
func (b *BaseClient) Do(ctx context.Context, req *http.Request, provider string) ([]byte, error) {
	resp, err := b.HTTPClient.Do(req.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", provider, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s response read failed: %w", provider, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, b.apiError(provider, resp.StatusCode, body)
	}
	return body, nil
}

// apiError builds an error from a non-2xx API response, surfacing the
// provider's own message when the body carries one.
func (b *BaseClient) apiError(provider string, status int, body []byte) error {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return fmt.Errorf("%s API error (status %d): %s", provider, status, envelope.Error.Message)
	}
	return fmt.Errorf("%s API error: status %d", provider, status)
}
