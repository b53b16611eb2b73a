// Package models defines the core domain entities shared across services,
// the scoring engine, and the evaluation pipeline.
package models

import "time"

// Learner status values.
const (
	LearnerStatusActive   = "active"
	LearnerStatusInactive = "inactive"
)

// LearnerProfile is a registered learner. Profiles are created once and
// mutated by edits; they are never destroyed — deactivation flips Status.
type LearnerProfile struct {
	LearnerID       string `db:"learner_id" json:"learner_id"`
	Name            string `db:"name" json:"name"`
	Email           string `db:"email" json:"email"`
	EnrollmentDate  string `db:"enrollment_date" json:"enrollment_date"`
	Status          string `db:"status" json:"status"`
	Background      string `db:"background" json:"background"`
	ExperienceLevel string `db:"experience_level" json:"experience_level"`
	Created         string `db:"created" json:"created"`
	LastUpdated     string `db:"last_updated" json:"last_updated"`
}

// SkillProgress is the per-(skill, learner) mastery state, upserted after
// every scored activity.
type SkillProgress struct {
	SkillID               string  `db:"skill_id" json:"skill_id"`
	LearnerID             string  `db:"learner_id" json:"learner_id"`
	SkillName             string  `db:"skill_name" json:"skill_name"`
	CumulativeScore       float64 `db:"cumulative_score" json:"cumulative_score"`
	TotalAdjustedEvidence float64 `db:"total_adjusted_evidence" json:"total_adjusted_evidence"`
	ActivityCount         int     `db:"activity_count" json:"activity_count"`
	Gate1Status           string  `db:"gate_1_status" json:"gate_1_status"`
	Gate2Status           string  `db:"gate_2_status" json:"gate_2_status"`
	OverallStatus         string  `db:"overall_status" json:"overall_status"`
	ConfidenceLower       float64 `db:"confidence_interval_lower" json:"confidence_interval_lower"`
	ConfidenceUpper       float64 `db:"confidence_interval_upper" json:"confidence_interval_upper"`
	StandardError         float64 `db:"standard_error" json:"standard_error"`
	LastUpdated           string  `db:"last_updated" json:"last_updated"`
}

// NowUTC returns the current time as a UTC ISO-8601 string with a terminal Z.
// All persisted timestamps use this format so lexicographic ordering matches
// chronological ordering.
func NowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}
