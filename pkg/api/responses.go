package api

import (
	"github.com/nsundt-ai/evaluator-v16/pkg/database"
	"github.com/nsundt-ai/evaluator-v16/pkg/models"
	"github.com/nsundt-ai/evaluator-v16/pkg/scoring"
	"github.com/nsundt-ai/evaluator-v16/pkg/services"
)

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version"`
	Database   database.HealthStatus `json:"database"`
	Providers  []string              `json:"providers"`
	Activities int                   `json:"activities"`
}

// ProgressResponse is returned by GET /api/v1/learners/:id/progress.
type ProgressResponse struct {
	Learner  *models.LearnerProfile   `json:"learner"`
	Progress *scoring.ProgressSummary `json:"progress"`
}

// HistoryResponse is returned by GET /api/v1/learners/:id/history.
type HistoryResponse struct {
	LearnerID string                      `json:"learner_id"`
	SkillID   string                      `json:"skill_id"`
	Order     string                      `json:"order"`
	Rows      []models.ActivityHistoryRow `json:"rows"`
}

// ResetResponse is returned by POST /api/v1/learners/:id/reset.
type ResetResponse struct {
	LearnerID string               `json:"learner_id"`
	Deleted   services.ResetCounts `json:"deleted"`
}

// RecalculateResponse is returned by POST /api/v1/scoring/recalculate.
type RecalculateResponse struct {
	DecayFactor float64              `json:"decay_factor"`
	Stats       *scoring.RecalcStats `json:"stats"`
}
