package models

import "encoding/json"

// ActivityHistoryRow is the canonical per-(learner, skill, activity) ledger
// entry used for all cumulative computations. Rows are unique on
// (learner_id, activity_id, skill_id); re-evaluating an activity replaces
// the prior row. decay_factor records the engine setting at insertion time.
type ActivityHistoryRow struct {
	ID                          int64           `db:"id" json:"id"`
	LearnerID                   string          `db:"learner_id" json:"learner_id"`
	ActivityID                  string          `db:"activity_id" json:"activity_id"`
	SkillID                     string          `db:"skill_id" json:"skill_id"`
	CompletionTimestamp         string          `db:"completion_timestamp" json:"completion_timestamp"`
	ActivityType                string          `db:"activity_type" json:"activity_type"`
	ActivityTitle               string          `db:"activity_title" json:"activity_title"`
	PerformanceScore            float64         `db:"performance_score" json:"performance_score"`
	TargetEvidenceVolume        float64         `db:"target_evidence_volume" json:"target_evidence_volume"`
	ValidityModifier            float64         `db:"validity_modifier" json:"validity_modifier"`
	AdjustedEvidenceVolume      float64         `db:"adjusted_evidence_volume" json:"adjusted_evidence_volume"`
	CumulativeEvidenceWeight    float64         `db:"cumulative_evidence_weight" json:"cumulative_evidence_weight"`
	DecayFactor                 float64         `db:"decay_factor" json:"decay_factor"`
	DecayAdjustedEvidenceVolume float64         `db:"decay_adjusted_evidence_volume" json:"decay_adjusted_evidence_volume"`
	CumulativePerformance       float64         `db:"cumulative_performance" json:"cumulative_performance"`
	CumulativeEvidence          float64         `db:"cumulative_evidence" json:"cumulative_evidence"`
	EvaluationResult            json.RawMessage `db:"evaluation_result" json:"evaluation_result,omitempty"`
	ActivityTranscript          json.RawMessage `db:"activity_transcript" json:"activity_transcript,omitempty"`
}
