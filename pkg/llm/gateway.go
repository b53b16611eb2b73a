// Package llm provides the provider-agnostic LLM gateway: one call surface
// over an ordered chain of provider adapters with fallback, response
// sanitization, and cost estimation.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/nsundt-ai/evaluator-v16/pkg/config"
	"github.com/nsundt-ai/evaluator-v16/pkg/eventlog"
	"github.com/nsundt-ai/evaluator-v16/pkg/llm/providers"
)

// Request is one gateway call.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	// Phase selects per-phase provider overrides from llm_settings.
	Phase string
	// ExpectedSchema is the declared output schema. The gateway does not
	// send it to providers or copy it into the response.
	ExpectedSchema map[string]any
}

// Response is the gateway's uniform result. Success is false only after
// every provider in the chain has failed.
type Response struct {
	Content      string         `json:"content"`
	Provider     string         `json:"provider"`
	Model        string         `json:"model"`
	Success      bool           `json:"success"`
	TokensUsed   int            `json:"tokens_used"`
	CostEstimate float64        `json:"cost_estimate"`
	DurationMs   int64          `json:"duration_ms"`
	Error        string         `json:"error,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Gateway fans out to the configured providers with ordered fallback.
// Safe for concurrent use; responses are never cached.
type Gateway struct {
	cfg       *config.Store
	events    *eventlog.Logger
	providers map[string]providers.Provider
}

// NewGateway creates a gateway over the given adapters. Adapters are keyed
// by their Name(); unavailable ones stay registered and are skipped per call.
func NewGateway(cfg *config.Store, events *eventlog.Logger, adapters ...providers.Provider) *Gateway {
	byName := make(map[string]providers.Provider, len(adapters))
	for _, p := range adapters {
		byName[p.Name()] = p
	}
	return &Gateway{
		cfg:       cfg,
		events:    events,
		providers: byName,
	}
}

// AvailableProviders lists the providers that could currently serve a call.
func (g *Gateway) AvailableProviders() []string {
	var names []string
	for _, name := range g.cfg.FallbackChain() {
		if p, ok := g.providers[name]; ok && p.Available() {
			names = append(names, name)
		}
	}
	return names
}

// Call iterates the fallback chain until one provider returns non-empty
// sanitized content. Unavailable providers are skipped; failures advance to
// the next provider. No provider is called twice.
func (g *Gateway) Call(ctx context.Context, req Request) *Response {
	start := time.Now()
	chain := g.cfg.FallbackChain()

	var lastErr error
	for i, name := range chain {
		provider, ok := g.providers[name]
		if !ok || !provider.Available() {
			g.events.LogProviderEvent(eventlog.EventProviderUnavailable, name, req.Phase,
				"provider not configured")
			continue
		}

		phaseCfg, err := g.cfg.PhaseConfig(name, req.Phase)
		if err != nil {
			lastErr = err
			g.events.LogProviderEvent(eventlog.EventProviderFailed, name, req.Phase,
				fmt.Sprintf("no configuration for provider: %v", err))
			continue
		}

		result, err := g.callProvider(ctx, provider, phaseCfg, req)
		if err != nil {
			lastErr = err
			g.events.LogProviderEvent(eventlog.EventProviderFailed, name, req.Phase, err.Error())
			continue
		}

		content := CleanJSONResponse(result.Content)
		if content == "" {
			lastErr = fmt.Errorf("%s: %w", name, providers.ErrEmptyContent)
			g.events.LogProviderEvent(eventlog.EventProviderFailed, name, req.Phase, lastErr.Error())
			continue
		}

		if i == 0 {
			g.events.LogProviderEvent(eventlog.EventPrimarySuccess, name, req.Phase, "")
		} else {
			g.events.LogProviderEvent(eventlog.EventFallbackSuccess, name, req.Phase, "")
		}

		tokens, cost := g.estimateCost(name, result)
		return &Response{
			Content:      content,
			Provider:     name,
			Model:        result.Model,
			Success:      true,
			TokensUsed:   tokens,
			CostEstimate: cost,
			DurationMs:   time.Since(start).Milliseconds(),
			Metadata: map[string]any{
				"input_tokens":  result.InputTokens,
				"output_tokens": result.OutputTokens,
			},
		}
	}

	errMsg := "all LLM providers failed"
	if lastErr != nil {
		errMsg = fmt.Sprintf("all LLM providers failed, last error: %v", lastErr)
	}
	g.events.LogError("llm_gateway", eventlog.KindLLMAggregate, errMsg,
		map[string]any{"phase": req.Phase, "chain": chain})

	return &Response{
		Provider:   "none",
		Model:      "none",
		Success:    false,
		Error:      errMsg,
		DurationMs: time.Since(start).Milliseconds(),
	}
}

// callProvider invokes one adapter under the phase timeout.
func (g *Gateway) callProvider(ctx context.Context, provider providers.Provider, cfg config.ProviderConfig, req Request) (*providers.Result, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return provider.Generate(callCtx, req.SystemPrompt, req.UserPrompt, providers.CallOptions{
		Model:       cfg.DefaultModel,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     timeout,
	})
}

// Conservative token estimates used when a provider omits usage counts.
const (
	defaultInputTokenEstimate  = 1000
	defaultOutputTokenEstimate = 500
)

// estimateCost computes the call cost from the provider rate table. When
// the provider reported no usage, the rough 1000/500 default applies to the
// cost but TokensUsed stays zero.
func (g *Gateway) estimateCost(provider string, result *providers.Result) (int, float64) {
	rate, ok := g.cfg.CostRate(provider)
	if !ok {
		return result.InputTokens + result.OutputTokens, 0
	}
	input, output := result.InputTokens, result.OutputTokens
	reported := input+output > 0
	if !reported {
		input, output = defaultInputTokenEstimate, defaultOutputTokenEstimate
	}
	cost := float64(input)/1000*rate.InputPer1K + float64(output)/1000*rate.OutputPer1K
	if !reported {
		return 0, cost
	}
	return result.InputTokens + result.OutputTokens, cost
}
