package pipeline

// Schema-valid default payloads injected when a phase fails, so downstream
// consumers and the UI always have a renderable result.

// defaultCombinedResult is the combined-evaluation fallback: neutral score,
// full validity, textual fields marked unavailable.
func defaultCombinedResult(reason string) map[string]any {
	return map[string]any{
		"aspect_scores":              []any{},
		"overall_score":              0.5,
		"rationale":                  "Combined evaluation unavailable: " + reason,
		"validity_modifier":          1.0,
		"validity_analysis":          "unavailable",
		"validity_reason":            reason,
		"evidence_quality":           "unavailable",
		"assistance_impact":          "unavailable",
		"evidence_volume_assessment": "unavailable",
		"assessment_confidence":      "unavailable",
		"key_observations":           []any{"Combined evaluation failed: " + reason},
	}
}

// defaultIntelligentFeedbackResult is the intelligent-feedback fallback.
func defaultIntelligentFeedbackResult(reason string) map[string]any {
	return map[string]any{
		"intelligent_feedback": map[string]any{
			"backend_intelligence": map[string]any{
				"overview":         "Analysis unavailable: " + reason,
				"strengths":        []any{},
				"weaknesses":       []any{},
				"subskill_ratings": []any{},
			},
			"learner_feedback": map[string]any{
				"overall":       "Feedback is temporarily unavailable for this submission.",
				"strengths":     "unavailable",
				"opportunities": "unavailable",
			},
		},
	}
}

// defaultScoringResult is the scoring-phase fallback.
func defaultScoringResult(targetEvidence float64, reason string) map[string]any {
	return map[string]any{
		"activity_score":           0.0,
		"target_evidence_volume":   targetEvidence,
		"validity_modifier":        1.0,
		"adjusted_evidence_volume": targetEvidence,
		"final_score":              0.0,
		"aspect_scores":            []any{},
		"scoring_rationale":        "Scoring failed: " + reason,
	}
}

// trendDisabledResult is the fixed payload of the permanently-disabled
// trend phase. Its real semantics are undefined upstream; the constant
// keeps the pipeline structure intact at zero LLM cost.
func trendDisabledResult() map[string]any {
	return map[string]any{
		"trend_analysis": map[string]any{
			"performance_trajectory": "stable",
			"trend_analysis":         "Trend analysis is disabled.",
			"growth_patterns":        []any{},
			"learning_velocity": map[string]any{
				"current_velocity": "stable",
				"velocity_trend":   "no_change",
				"velocity_factors": []any{"feature_disabled"},
			},
			"improvement_areas": []any{"feature_disabled"},
			"strength_areas":    []any{"feature_disabled"},
			"recommendations":   []any{"Trend analysis is disabled."},
		},
	}
}
