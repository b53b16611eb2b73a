package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/nsundt-ai/evaluator-v16/pkg/models"
)

// ProgressService manages per-(skill, learner) skill progress rows.
type ProgressService struct {
	db *sqlx.DB
}

// NewProgressService creates a new ProgressService.
func NewProgressService(db *sqlx.DB) *ProgressService {
	return &ProgressService{db: db}
}

// Upsert writes the skill progress row for (skill, learner).
func (s *ProgressService) Upsert(ctx context.Context, progress *models.SkillProgress) error {
	if progress.SkillID == "" {
		return NewValidationError("skill_id", "required")
	}
	if progress.LearnerID == "" {
		return NewValidationError("learner_id", "required")
	}
	if progress.LastUpdated == "" {
		progress.LastUpdated = models.NowUTC()
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO skill_progress
			(skill_id, learner_id, skill_name, cumulative_score, total_adjusted_evidence,
			 activity_count, gate_1_status, gate_2_status, overall_status,
			 confidence_interval_lower, confidence_interval_upper, standard_error, last_updated)
		VALUES
			(:skill_id, :learner_id, :skill_name, :cumulative_score, :total_adjusted_evidence,
			 :activity_count, :gate_1_status, :gate_2_status, :overall_status,
			 :confidence_interval_lower, :confidence_interval_upper, :standard_error, :last_updated)
		ON CONFLICT (skill_id, learner_id) DO UPDATE SET
			skill_name = excluded.skill_name,
			cumulative_score = excluded.cumulative_score,
			total_adjusted_evidence = excluded.total_adjusted_evidence,
			activity_count = excluded.activity_count,
			gate_1_status = excluded.gate_1_status,
			gate_2_status = excluded.gate_2_status,
			overall_status = excluded.overall_status,
			confidence_interval_lower = excluded.confidence_interval_lower,
			confidence_interval_upper = excluded.confidence_interval_upper,
			standard_error = excluded.standard_error,
			last_updated = excluded.last_updated`,
		progress)
	if err != nil {
		return fmt.Errorf("failed to upsert skill progress: %w", err)
	}
	return nil
}

// Get returns the progress row for one (learner, skill).
func (s *ProgressService) Get(ctx context.Context, learnerID, skillID string) (*models.SkillProgress, error) {
	var progress models.SkillProgress
	err := s.db.GetContext(ctx, &progress,
		`SELECT * FROM skill_progress WHERE learner_id = ? AND skill_id = ?`,
		learnerID, skillID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get skill progress: %w", err)
	}
	return &progress, nil
}

// GetByLearner returns all progress rows for a learner keyed by skill id.
func (s *ProgressService) GetByLearner(ctx context.Context, learnerID string) (map[string]*models.SkillProgress, error) {
	var rows []models.SkillProgress
	err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM skill_progress WHERE learner_id = ? ORDER BY skill_id`, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get skill progress for learner: %w", err)
	}
	out := make(map[string]*models.SkillProgress, len(rows))
	for i := range rows {
		out[rows[i].SkillID] = &rows[i]
	}
	return out, nil
}
