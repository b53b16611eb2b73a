package config

func float64Ptr(v float64) *float64 { return &v }
func intPtr(v int) *int             { return &v }

// defaultLLMSettings is used when llm_settings.json is absent.
func defaultLLMSettings() *LLMSettings {
	return &LLMSettings{
		Providers: map[string]ProviderConfig{
			ProviderAnthropic: {
				Name:           "Anthropic",
				DefaultModel:   "claude-sonnet-4-20250514",
				Temperature:    0.1,
				MaxTokens:      4000,
				TimeoutSeconds: 60,
			},
			ProviderOpenAI: {
				Name:           "OpenAI",
				DefaultModel:   "gpt-4.1-mini",
				Temperature:    0.1,
				MaxTokens:      4000,
				TimeoutSeconds: 60,
			},
			ProviderGoogle: {
				Name:           "Google",
				DefaultModel:   "gemini-2.5-flash",
				Temperature:    0.05,
				MaxTokens:      4000,
				TimeoutSeconds: 60,
			},
		},
		Phases: map[string]map[string]ProviderOverride{
			"combined_evaluation": {
				ProviderAnthropic: {Temperature: float64Ptr(0.1), MaxTokens: intPtr(6000)},
				ProviderOpenAI:    {Temperature: float64Ptr(0.1), MaxTokens: intPtr(6000)},
				ProviderGoogle:    {Temperature: float64Ptr(0.1), MaxTokens: intPtr(6000)},
			},
			"intelligent_feedback": {
				ProviderAnthropic: {Temperature: float64Ptr(0.7), MaxTokens: intPtr(4000)},
				ProviderOpenAI:    {Temperature: float64Ptr(0.7), MaxTokens: intPtr(4000)},
				ProviderGoogle:    {Temperature: float64Ptr(0.7), MaxTokens: intPtr(4000)},
			},
			"trend_analysis": {
				ProviderAnthropic: {Temperature: float64Ptr(0.5), MaxTokens: intPtr(1500)},
				ProviderOpenAI:    {Temperature: float64Ptr(0.5), MaxTokens: intPtr(1500)},
				ProviderGoogle:    {Temperature: float64Ptr(0.5), MaxTokens: intPtr(1500)},
			},
		},
		Fallback: FallbackConfiguration{
			FallbackOrder: []string{ProviderOpenAI, ProviderAnthropic, ProviderGoogle},
		},
		CostRates: map[string]CostRate{
			ProviderAnthropic: {InputPer1K: 0.003, OutputPer1K: 0.015},
			ProviderOpenAI:    {InputPer1K: 0.00015, OutputPer1K: 0.0006},
			ProviderGoogle:    {InputPer1K: 0.00015, OutputPer1K: 0.0006},
		},
	}
}

// defaultScoringConfig is used when scoring_config.json is absent.
func defaultScoringConfig() *ScoringConfig {
	return &ScoringConfig{
		ScoringParameters: ScoringParameters{
			DecayFactor: 0.9,
			PriorMean:   0.0,
		},
		GateThresholds: GateThresholds{
			Performance: PerformanceThresholds{
				AtLevel:     0.75,
				Approaching: 0.65,
				Developing:  0.50,
			},
			Evidence: EvidenceThresholds{
				Sufficient:  30.0,
				Approaching: 20.0,
				Developing:  10.0,
			},
		},
	}
}
