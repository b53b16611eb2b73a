package config

// ScoringParameters are the cumulative-score algorithm settings.
type ScoringParameters struct {
	DecayFactor float64 `json:"decay_factor"`
	PriorMean   float64 `json:"prior_mean"`
}

// PerformanceThresholds are the Gate 1 bands applied to cumulative_score.
type PerformanceThresholds struct {
	AtLevel     float64 `json:"at_level"`
	Approaching float64 `json:"approaching"`
	Developing  float64 `json:"developing"`
}

// EvidenceThresholds are the Gate 2 bands applied to total adjusted evidence.
type EvidenceThresholds struct {
	Sufficient  float64 `json:"sufficient"`
	Approaching float64 `json:"approaching"`
	Developing  float64 `json:"developing"`
}

// GateThresholds groups both gates.
type GateThresholds struct {
	Performance PerformanceThresholds `json:"performance"`
	Evidence    EvidenceThresholds    `json:"evidence"`
}

// ScoringConfig is the scoring_config.json document.
type ScoringConfig struct {
	ScoringParameters ScoringParameters `json:"scoring_parameters"`
	GateThresholds    GateThresholds    `json:"gate_thresholds"`
}
