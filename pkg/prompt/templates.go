package prompt

// template describes one phase × activity-type prompt configuration:
// the ordered system components, the required user-prompt variables, and
// the user-prompt template with {variable} placeholders.
type template struct {
	systemComponents  []string
	requiredVariables []string
	userTemplate      string
}

// Component keys resolved by buildSystemPrompt. "type:<kind>" entries pull
// the activity-type-specific paragraph for that content kind.
const (
	compSystemRole           = "system_role"
	compEvaluationPhilosophy = "evaluation_philosophy"
	compDomainFocus          = "domain_focus"
	compSingleSkillFocus     = "single_skill_focus"
	compCombinedDescription  = "combined_description"
	compFeedbackDescription  = "intelligent_feedback_description"
	compTrendDescription     = "trend_description"
	compCriticalGuidelines   = "critical_guidelines"
	compJSONFormatWarning    = "json_format_warning"
)

const combinedUserTemplate = `ACTIVITY: {activity_spec}
RESPONSE: {activity_transcript}
SKILL: {target_skill_context}
RUBRIC: {rubric_details}
ASSISTANCE: {assistance_log}
ANALYSIS: {response_analysis}

COMBINED EVALUATION TASK:
1. Evaluate the learner's response against the rubric, scoring each aspect with specific evidence
2. Simultaneously assess validity and evidence quality, considering assistance impact
3. Provide integrated insights about evidence sufficiency and assessment confidence
4. Note evidence volume concerns directly through the evaluation process

Return ONLY a JSON object with this exact structure:
{
  "aspect_scores": [
    {
      "aspect_id": "string",
      "aspect_name": "string",
      "score": 0.0-1.0,
      "rationale": "string",
      "evidence_references": ["string"],
      "subskill_evidence": {}
    }
  ],
  "overall_score": 0.0-1.0,
  "rationale": "string",
  "validity_modifier": 0.0-1.0,
  "validity_analysis": "string",
  "validity_reason": "string",
  "evidence_quality": "string",
  "assistance_impact": "string",
  "evidence_volume_assessment": "string",
  "assessment_confidence": "string",
  "key_observations": ["string"]
}`

const intelligentFeedbackUserTemplate = `ACTIVITY SPECIFICATION:
{activity_spec}

LEARNER RESPONSE:
{activity_transcript}

RUBRIC EVALUATION RESULTS:
{rubric_evaluation_results}

VALIDITY ANALYSIS RESULTS:
{validity_analysis_results}

TARGET SKILL CONTEXT:
{target_skill_context}

PREREQUISITE RELATIONSHIPS:
{prerequisite_relationships}

PERFORMANCE CONTEXT:
{performance_context}

MOTIVATIONAL CONTEXT:
{motivational_context}

INTELLIGENT FEEDBACK TASK:
Please perform a combined analysis that includes:

1. BACKEND INTELLIGENCE (FOR EVALUATION VIEW):
   - Provide an analytical overview of performance
   - Identify specific strengths with evidence
   - Identify specific weaknesses with evidence
   - Create a subskill ratings table with performance levels
   - Use third person ('the learner') and maintain an objective, analytical tone

2. LEARNER FEEDBACK (FOR BOTH EVALUATION AND LEARNER VIEWS):
   - Generate student-friendly, motivational feedback in second person ('you')
   - Provide one clear overall assessment
   - Include strengths and opportunities as flowing, non-bulleted paragraphs
   - Use growth mindset language and an encouraging tone

Return ONLY a JSON object with this exact structure:
{
  "intelligent_feedback": {
    "backend_intelligence": {
      "overview": "string",
      "strengths": ["string"],
      "weaknesses": ["string"],
      "subskill_ratings": [
        {
          "subskill_name": "string",
          "performance_level": "proficient|developing|needs_improvement",
          "development_priority": "high|medium|low"
        }
      ]
    },
    "learner_feedback": {
      "overall": "string",
      "strengths": "string",
      "opportunities": "string"
    }
  }
}`

const trendUserTemplate = `CURRENT ACTIVITY:
{activity_spec}

CURRENT RESPONSE:
{activity_transcript}

HISTORICAL PERFORMANCE DATA:
{historical_performance_data}

TEMPORAL CONTEXT:
{temporal_context}

TREND ANALYSIS TASK: Please analyze performance trends over time and generate personalized recommendations based on historical patterns and current performance.`

// buildTemplates registers the live phase × activity-type configurations.
// Deprecated phases (rubric, validity, diagnostic, feedback) have no
// templates; Build rejects them with a "no template" error.
func buildTemplates() map[string]template {
	templates := make(map[string]template)
	allTypes := []string{"CR", "COD", "RP", "SR", "BR"}

	for _, at := range allTypes {
		templates[at+"_"+PhaseCombined] = template{
			systemComponents: []string{
				compSystemRole,
				compEvaluationPhilosophy,
				compDomainFocus,
				compSingleSkillFocus,
				compCombinedDescription,
				"type:combined",
				compCriticalGuidelines,
				compJSONFormatWarning,
			},
			requiredVariables: []string{
				"activity_spec", "activity_transcript", "domain_model", "target_skill_context",
				"rubric_details", "leveling_framework", "assistance_log", "response_analysis",
			},
			userTemplate: combinedUserTemplate,
		}

		templates[at+"_"+PhaseIntelligentFeedback] = template{
			systemComponents: []string{
				compSystemRole,
				compEvaluationPhilosophy,
				compDomainFocus,
				compSingleSkillFocus,
				compFeedbackDescription,
				"type:diagnostic",
				"type:feedback",
				compCriticalGuidelines,
				compJSONFormatWarning,
			},
			requiredVariables: []string{
				"activity_spec", "activity_transcript", "rubric_evaluation_results",
				"validity_analysis_results", "target_skill_context", "prerequisite_relationships",
				"performance_context", "motivational_context",
			},
			userTemplate: intelligentFeedbackUserTemplate,
		}

		templates[at+"_"+PhaseTrend] = template{
			systemComponents: []string{
				compSystemRole,
				compEvaluationPhilosophy,
				compDomainFocus,
				compTrendDescription,
				"type:trend",
				compCriticalGuidelines,
				compJSONFormatWarning,
			},
			requiredVariables: []string{
				"activity_spec", "activity_transcript",
				"historical_performance_data", "temporal_context",
			},
			userTemplate: trendUserTemplate,
		}
	}

	return templates
}
