package config

// Canonical LLM provider names used in configuration documents, the
// fallback chain, and cost rates.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGoogle    = "google"
)

// ProviderConfig defines one LLM provider's default call parameters.
type ProviderConfig struct {
	Name           string  `json:"name,omitempty"`
	DefaultModel   string  `json:"default_model"`
	Temperature    float64 `json:"temperature"`
	MaxTokens      int     `json:"max_tokens"`
	TimeoutSeconds int     `json:"timeout_seconds"`
}

// ProviderOverride carries per-phase overrides for a provider. Nil fields
// inherit the provider default.
type ProviderOverride struct {
	DefaultModel   *string  `json:"default_model,omitempty"`
	Temperature    *float64 `json:"temperature,omitempty"`
	MaxTokens      *int     `json:"max_tokens,omitempty"`
	TimeoutSeconds *int     `json:"timeout_seconds,omitempty"`
}

// CostRate is the per-1K-token pricing used for cost estimation.
type CostRate struct {
	InputPer1K  float64 `json:"input_per_1k"`
	OutputPer1K float64 `json:"output_per_1k"`
}

// FallbackConfiguration fixes the ordered provider chain.
type FallbackConfiguration struct {
	FallbackOrder []string `json:"fallback_order"`
}

// LLMSettings is the llm_settings.json document: provider defaults,
// phase × provider overrides, fallback order, and cost rates.
type LLMSettings struct {
	Providers map[string]ProviderConfig              `json:"providers"`
	Phases    map[string]map[string]ProviderOverride `json:"phases,omitempty"`
	Fallback  FallbackConfiguration                  `json:"fallback_configuration"`
	CostRates map[string]CostRate                    `json:"cost_rates,omitempty"`
}

// resolvePhase merges a provider's defaults with the overrides declared for
// the given phase. Unknown phases return the provider defaults unchanged.
func (s *LLMSettings) resolvePhase(provider, phase string) (ProviderConfig, bool) {
	cfg, ok := s.Providers[provider]
	if !ok {
		return ProviderConfig{}, false
	}
	if phase == "" {
		return cfg, true
	}
	overrides, ok := s.Phases[phase]
	if !ok {
		return cfg, true
	}
	ov, ok := overrides[provider]
	if !ok {
		return cfg, true
	}
	if ov.DefaultModel != nil {
		cfg.DefaultModel = *ov.DefaultModel
	}
	if ov.Temperature != nil {
		cfg.Temperature = *ov.Temperature
	}
	if ov.MaxTokens != nil {
		cfg.MaxTokens = *ov.MaxTokens
	}
	if ov.TimeoutSeconds != nil {
		cfg.TimeoutSeconds = *ov.TimeoutSeconds
	}
	return cfg, true
}
