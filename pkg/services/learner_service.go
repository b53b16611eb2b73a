// Package services implements the persistence layer: learner profiles,
// activity records, skill progress, and the activity-history ledger.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/nsundt-ai/evaluator-v16/pkg/models"
)

// LearnerService manages learner profiles. Profiles are never deleted;
// deactivation flips the status field.
type LearnerService struct {
	db *sqlx.DB
}

// NewLearnerService creates a new LearnerService.
func NewLearnerService(db *sqlx.DB) *LearnerService {
	return &LearnerService{db: db}
}

// Create inserts a new learner profile.
func (s *LearnerService) Create(ctx context.Context, profile *models.LearnerProfile) error {
	if profile.LearnerID == "" {
		return NewValidationError("learner_id", "required")
	}
	if profile.Email == "" {
		return NewValidationError("email", "required")
	}
	if profile.Status == "" {
		profile.Status = models.LearnerStatusActive
	}
	if profile.ExperienceLevel == "" {
		profile.ExperienceLevel = "beginner"
	}
	now := models.NowUTC()
	if profile.EnrollmentDate == "" {
		profile.EnrollmentDate = now
	}
	profile.Created = now
	profile.LastUpdated = now

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO learner_profiles
			(learner_id, name, email, enrollment_date, status, background, experience_level, created, last_updated)
		VALUES
			(:learner_id, :name, :email, :enrollment_date, :status, :background, :experience_level, :created, :last_updated)`,
		profile)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to create learner: %w", err)
	}
	return nil
}

// Get returns one learner profile by id.
func (s *LearnerService) Get(ctx context.Context, learnerID string) (*models.LearnerProfile, error) {
	var profile models.LearnerProfile
	err := s.db.GetContext(ctx, &profile,
		`SELECT * FROM learner_profiles WHERE learner_id = ?`, learnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get learner: %w", err)
	}
	return &profile, nil
}

// Update rewrites the mutable profile fields.
func (s *LearnerService) Update(ctx context.Context, profile *models.LearnerProfile) error {
	profile.LastUpdated = models.NowUTC()
	res, err := s.db.NamedExecContext(ctx, `
		UPDATE learner_profiles SET
			name = :name,
			email = :email,
			status = :status,
			background = :background,
			experience_level = :experience_level,
			last_updated = :last_updated
		WHERE learner_id = :learner_id`,
		profile)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to update learner: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStatus flips a learner's status (active/inactive).
func (s *LearnerService) SetStatus(ctx context.Context, learnerID, status string) error {
	if status != models.LearnerStatusActive && status != models.LearnerStatusInactive {
		return NewValidationError("status", "must be active or inactive")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE learner_profiles SET status = ?, last_updated = ? WHERE learner_id = ?`,
		status, models.NowUTC(), learnerID)
	if err != nil {
		return fmt.Errorf("failed to set learner status: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns learner profiles, optionally filtered by status.
func (s *LearnerService) List(ctx context.Context, status string, limit int) ([]models.LearnerProfile, error) {
	query := `SELECT * FROM learner_profiles`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY name`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	var profiles []models.LearnerProfile
	if err := s.db.SelectContext(ctx, &profiles, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list learners: %w", err)
	}
	return profiles, nil
}

// Search matches learners by name or email substring.
func (s *LearnerService) Search(ctx context.Context, query string, limit int) ([]models.LearnerProfile, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + query + "%"
	var profiles []models.LearnerProfile
	err := s.db.SelectContext(ctx, &profiles, `
		SELECT * FROM learner_profiles
		WHERE name LIKE ? OR email LIKE ?
		ORDER BY name LIMIT ?`,
		pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search learners: %w", err)
	}
	return profiles, nil
}

// isUniqueViolation detects sqlite unique-constraint failures.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
