// Package providers defines the provider contract shared by the LLM
// adapters and the common HTTP client they build on.
package providers

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotConfigured indicates the provider has no credentials.
	ErrNotConfigured = errors.New("provider not configured")

	// ErrEmptyContent indicates the provider returned no usable text.
	ErrEmptyContent = errors.New("empty response content")

	// ErrSafetyBlocked indicates the provider refused the request on
	// safety/policy grounds. Treated as a provider failure by the gateway.
	ErrSafetyBlocked = errors.New("content blocked by safety filter")
)

// CallOptions are the per-call generation parameters, resolved from the
// phase configuration before the adapter is invoked.
type CallOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Result is a successful provider response. Token counts are zero when the
// provider does not report usage.
type Result struct {
	Content      string
	Model        string
	InputTokens  int
	OutputTokens int
}

// Provider is one LLM backend adapter.
type Provider interface {
	// Name returns the canonical provider name used in configuration.
	Name() string

	// Available reports whether credentials are configured and the client
	// constructed without error.
	Available() bool

	// Generate performs a single completion call. The context carries the
	// per-call timeout.
	Generate(ctx context.Context, systemPrompt, userPrompt string, opts CallOptions) (*Result, error)
}
