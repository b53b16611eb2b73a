package models

import "encoding/json"

// Activity type codes.
const (
	ActivityTypeCR  = "CR"  // constructed response
	ActivityTypeCOD = "COD" // coding exercise
	ActivityTypeRP  = "RP"  // role play
	ActivityTypeSR  = "SR"  // single response
	ActivityTypeBR  = "BR"  // branching response
)

// ValidActivityTypes is the closed set of activity type codes.
var ValidActivityTypes = map[string]bool{
	ActivityTypeCR:  true,
	ActivityTypeCOD: true,
	ActivityTypeRP:  true,
	ActivityTypeSR:  true,
	ActivityTypeBR:  true,
}

// RubricRequiredTypes are the activity types that must carry a rubric.
var RubricRequiredTypes = map[string]bool{
	ActivityTypeCR:  true,
	ActivityTypeCOD: true,
	ActivityTypeRP:  true,
}

// RubricAspect is one scored dimension of a rubric.
type RubricAspect struct {
	AspectID    string  `json:"aspect_id"`
	AspectName  string  `json:"aspect_name"`
	Description string  `json:"description,omitempty"`
	Weight      float64 `json:"weight,omitempty"`
}

// Rubric is the evaluation rubric attached to CR/COD/RP activities.
type Rubric struct {
	Aspects []RubricAspect `json:"aspects"`
}

// ActivitySpec is an activity definition loaded from an activity file.
// Specs are immutable once loaded.
type ActivitySpec struct {
	ActivityID           string         `json:"activity_id"`
	ActivityType         string         `json:"activity_type"`
	Title                string         `json:"title"`
	Description          string         `json:"description"`
	TargetSkill          string         `json:"target_skill"`
	TargetEvidenceVolume float64        `json:"target_evidence_volume"`
	CognitiveLevel       string         `json:"cognitive_level"`
	DepthLevel           string         `json:"depth_level"`
	Rubric               *Rubric        `json:"rubric,omitempty"`
	Content              map[string]any `json:"content"`
	Metadata             map[string]any `json:"metadata"`
	Version              string         `json:"version,omitempty"`
}

// ActivityRecord is one persisted submission outcome. Records are appended
// when a pipeline run completes (success or failure) and never mutated.
type ActivityRecord struct {
	ID                 int64           `db:"id" json:"id"`
	ActivityID         string          `db:"activity_id" json:"activity_id"`
	LearnerID          string          `db:"learner_id" json:"learner_id"`
	Timestamp          string          `db:"timestamp" json:"timestamp"`
	EvaluationResult   json.RawMessage `db:"evaluation_result" json:"evaluation_result"`
	ActivityTranscript json.RawMessage `db:"activity_transcript" json:"activity_transcript"`
	Scored             bool            `db:"scored" json:"scored"`
}

// ComponentResponse is one learner answer inside a submission transcript.
type ComponentResponse struct {
	ComponentID     string         `json:"component_id"`
	ResponseContent string         `json:"response_content"`
	ResponseType    string         `json:"response_type"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// StudentEngagement captures how the learner worked through the activity.
type StudentEngagement struct {
	StartTimestamp     string              `json:"start_timestamp"`
	SubmitTimestamp    string              `json:"submit_timestamp"`
	CompletionStatus   string              `json:"completion_status"`
	ComponentResponses []ComponentResponse `json:"component_responses"`
	AssistanceLog      []map[string]any    `json:"assistance_log,omitempty"`
}

// ActivityTranscript is the transcript portion of a submission envelope.
type ActivityTranscript struct {
	ActivityGenerationOutput *ActivitySpec      `json:"activity_generation_output,omitempty"`
	StudentEngagement        *StudentEngagement `json:"student_engagement,omitempty"`
}

// Submission is the envelope a caller hands to the evaluation pipeline.
type Submission struct {
	ActivityID         string              `json:"activity_id"`
	LearnerID          string              `json:"learner_id"`
	ActivityTranscript *ActivityTranscript `json:"activity_transcript"`
}
