package api

import "github.com/nsundt-ai/evaluator-v16/pkg/models"

// SubmitEvaluationRequest is the body of POST /api/v1/evaluations: the
// submission envelope.
type SubmitEvaluationRequest struct {
	ActivityID         string                     `json:"activity_id"`
	LearnerID          string                     `json:"learner_id"`
	ActivityTranscript *models.ActivityTranscript `json:"activity_transcript"`
}

// RecalculateRequest is the body of POST /api/v1/scoring/recalculate.
// DecayFactor, when set, updates the engine setting before the recompute.
// LearnerID narrows the operation; empty means all learners.
type RecalculateRequest struct {
	LearnerID   string   `json:"learner_id,omitempty"`
	DecayFactor *float64 `json:"decay_factor,omitempty"`
}
