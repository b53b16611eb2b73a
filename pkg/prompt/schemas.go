package prompt

// Output schemas declared per phase. The pipeline passes the schema to the
// gateway, which does not use it; the pipeline decodes payloads into the
// typed models.

func combinedSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"aspect_scores", "overall_score", "rationale", "validity_modifier", "validity_analysis"},
		"properties": map[string]any{
			"aspect_scores": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []string{"aspect_id", "aspect_name", "score", "rationale"},
					"properties": map[string]any{
						"aspect_id":           map[string]any{"type": "string"},
						"aspect_name":         map[string]any{"type": "string"},
						"score":               map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
						"rationale":           map[string]any{"type": "string"},
						"evidence_references": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						"subskill_evidence":   map[string]any{"type": "object"},
					},
				},
			},
			"overall_score":              map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
			"rationale":                  map[string]any{"type": "string"},
			"validity_modifier":          map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
			"validity_analysis":          map[string]any{"type": "string"},
			"validity_reason":            map[string]any{"type": "string"},
			"evidence_quality":           map[string]any{"type": "string"},
			"assistance_impact":          map[string]any{"type": "string"},
			"evidence_volume_assessment": map[string]any{"type": "string"},
			"assessment_confidence":      map[string]any{"type": "string"},
			"key_observations":           map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
	}
}

func intelligentFeedbackSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"intelligent_feedback"},
		"properties": map[string]any{
			"intelligent_feedback": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"backend_intelligence": map[string]any{
						"type":     "object",
						"required": []string{"overview", "strengths", "weaknesses", "subskill_ratings"},
						"properties": map[string]any{
							"overview":   map[string]any{"type": "string"},
							"strengths":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
							"weaknesses": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
							"subskill_ratings": map[string]any{
								"type": "array",
								"items": map[string]any{
									"type": "object",
									"properties": map[string]any{
										"subskill_name":        map[string]any{"type": "string"},
										"performance_level":    map[string]any{"type": "string", "enum": []string{"proficient", "developing", "needs_improvement"}},
										"development_priority": map[string]any{"type": "string", "enum": []string{"high", "medium", "low"}},
									},
								},
							},
						},
					},
					"learner_feedback": map[string]any{
						"type":     "object",
						"required": []string{"overall", "strengths", "opportunities"},
						"properties": map[string]any{
							"overall":       map[string]any{"type": "string"},
							"strengths":     map[string]any{"type": "string"},
							"opportunities": map[string]any{"type": "string"},
						},
					},
				},
			},
		},
	}
}

func trendSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"trend_analysis"},
		"properties": map[string]any{
			"trend_analysis": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"performance_trajectory": map[string]any{"type": "string"},
					"trend_analysis":         map[string]any{"type": "string"},
					"growth_patterns":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"improvement_areas":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"strength_areas":         map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"recommendations":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
			},
		},
	}
}

// outputSchemas maps phase name to its declared schema.
func outputSchemas() map[string]func() map[string]any {
	return map[string]func() map[string]any{
		PhaseCombined:            combinedSchema,
		PhaseIntelligentFeedback: intelligentFeedbackSchema,
		PhaseTrend:               trendSchema,
	}
}
