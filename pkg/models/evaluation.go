package models

// Pipeline phase names as they appear in phase results and event logs.
const (
	PhaseCombinedEvaluation  = "combined_evaluation"
	PhaseScoring             = "scoring"
	PhaseIntelligentFeedback = "intelligent_feedback"
	PhaseTrendAnalysis       = "trend_analysis"
)

// PhaseResult is the outcome of a single pipeline phase. A phase that ran
// and failed still carries a schema-valid default Result; a phase skipped
// by cancellation carries only its Error, with a nil Result.
type PhaseResult struct {
	Phase           string         `json:"phase"`
	Success         bool           `json:"success"`
	Result          map[string]any `json:"result,omitempty"`
	Error           string         `json:"error,omitempty"`
	ExecutionTimeMs int64          `json:"execution_time_ms"`
	TokensUsed      int            `json:"tokens_used"`
	CostEstimate    float64        `json:"cost_estimate"`
}

// EvaluationResult is the aggregate outcome of one pipeline run.
// OverallSuccess is true iff every phase succeeded.
type EvaluationResult struct {
	EvaluationID         string                 `json:"evaluation_id"`
	ActivityID           string                 `json:"activity_id"`
	LearnerID            string                 `json:"learner_id"`
	EvaluationTimestamp  string                 `json:"evaluation_timestamp"`
	PipelinePhases       []PhaseResult          `json:"pipeline_phases"`
	FinalSkillScores     map[string]*SkillScore `json:"final_skill_scores"`
	OverallSuccess       bool                   `json:"overall_success"`
	TotalExecutionTimeMs int64                  `json:"total_execution_time_ms"`
	TotalCostEstimate    float64                `json:"total_cost_estimate"`
	ErrorSummary         string                 `json:"error_summary,omitempty"`
}

// Phase lookup returns the result entry for the named phase, or nil.
func (r *EvaluationResult) Phase(name string) *PhaseResult {
	for i := range r.PipelinePhases {
		if r.PipelinePhases[i].Phase == name {
			return &r.PipelinePhases[i]
		}
	}
	return nil
}

// SkillScore is the scoring outcome for one skill within one evaluation.
type SkillScore struct {
	SkillID               string  `json:"skill_id"`
	SkillName             string  `json:"skill_name"`
	CumulativeScore       float64 `json:"cumulative_score"`
	TotalAdjustedEvidence float64 `json:"total_adjusted_evidence"`
	ActivityCount         int     `json:"activity_count"`
	Gate1Status           string  `json:"gate_1_status"`
	Gate2Status           string  `json:"gate_2_status"`
	OverallStatus         string  `json:"overall_status"`
	StandardError         float64 `json:"standard_error"`
	ConfidenceLower       float64 `json:"confidence_interval_lower"`
	ConfidenceUpper       float64 `json:"confidence_interval_upper"`
	LastUpdated           string  `json:"last_updated"`
}

// ScoringResult is the complete scoring outcome for one activity.
type ScoringResult struct {
	ActivityID           string                 `json:"activity_id"`
	LearnerID            string                 `json:"learner_id"`
	SkillScores          map[string]*SkillScore `json:"skill_scores"`
	Timestamp            string                 `json:"timestamp"`
	TotalSkillsEvaluated int                    `json:"total_skills_evaluated"`
	SkillsMastered       int                    `json:"skills_mastered"`
	OverallProgress      float64                `json:"overall_progress"`
}
