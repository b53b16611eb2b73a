package services

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/nsundt-ai/evaluator-v16/pkg/models"
)

// HistoryService manages the activity-history ledger: the ordered
// per-(learner, skill) rows every cumulative computation reads.
// Equal completion timestamps break ties on the row id, so reads are
// deterministic in both directions.
type HistoryService struct {
	db *sqlx.DB
}

// NewHistoryService creates a new HistoryService.
func NewHistoryService(db *sqlx.DB) *HistoryService {
	return &HistoryService{db: db}
}

// InsertRow writes one ledger row. Re-evaluating an activity replaces the
// prior (learner, activity, skill) row.
func (s *HistoryService) InsertRow(ctx context.Context, row *models.ActivityHistoryRow) error {
	if row.LearnerID == "" {
		return NewValidationError("learner_id", "required")
	}
	if row.ActivityID == "" {
		return NewValidationError("activity_id", "required")
	}
	if row.SkillID == "" {
		return NewValidationError("skill_id", "required")
	}
	if row.CompletionTimestamp == "" {
		row.CompletionTimestamp = models.NowUTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO activity_history
			(learner_id, activity_id, skill_id, completion_timestamp, activity_type,
			 activity_title, performance_score, target_evidence_volume, validity_modifier,
			 adjusted_evidence_volume, cumulative_evidence_weight, decay_factor,
			 decay_adjusted_evidence_volume, cumulative_performance, cumulative_evidence,
			 evaluation_result, activity_transcript)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.LearnerID, row.ActivityID, row.SkillID, row.CompletionTimestamp, row.ActivityType,
		row.ActivityTitle, row.PerformanceScore, row.TargetEvidenceVolume, row.ValidityModifier,
		row.AdjustedEvidenceVolume, row.CumulativeEvidenceWeight, row.DecayFactor,
		row.DecayAdjustedEvidenceVolume, row.CumulativePerformance, row.CumulativeEvidence,
		nullableJSON(row.EvaluationResult), nullableJSON(row.ActivityTranscript))
	if err != nil {
		return fmt.Errorf("failed to insert activity history row: %w", err)
	}
	return nil
}

// Chronological returns (learner, skill) rows oldest-first.
func (s *HistoryService) Chronological(ctx context.Context, learnerID, skillID string) ([]models.ActivityHistoryRow, error) {
	var rows []models.ActivityHistoryRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT * FROM activity_history
		WHERE learner_id = ? AND skill_id = ?
		ORDER BY completion_timestamp ASC, id ASC`,
		learnerID, skillID)
	if err != nil {
		return nil, fmt.Errorf("failed to read chronological history: %w", err)
	}
	return rows, nil
}

// RecentFirst returns (learner, skill) rows newest-first: position 0 is the
// most recent activity.
func (s *HistoryService) RecentFirst(ctx context.Context, learnerID, skillID string) ([]models.ActivityHistoryRow, error) {
	var rows []models.ActivityHistoryRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT * FROM activity_history
		WHERE learner_id = ? AND skill_id = ?
		ORDER BY completion_timestamp DESC, id DESC`,
		learnerID, skillID)
	if err != nil {
		return nil, fmt.Errorf("failed to read recent-first history: %w", err)
	}
	return rows, nil
}

// PriorAdjustedEvidenceSum returns the sum of adjusted_evidence_volume over
// all existing rows for (learner, skill).
func (s *HistoryService) PriorAdjustedEvidenceSum(ctx context.Context, learnerID, skillID string) (float64, error) {
	var sum float64
	err := s.db.GetContext(ctx, &sum, `
		SELECT COALESCE(SUM(adjusted_evidence_volume), 0)
		FROM activity_history
		WHERE learner_id = ? AND skill_id = ?`,
		learnerID, skillID)
	if err != nil {
		return 0, fmt.Errorf("failed to sum adjusted evidence: %w", err)
	}
	return sum, nil
}

// UpdateDecayAdjusted writes back a recomputed decay-adjusted evidence
// volume for one row. The cumulative_evidence_weight column tracks the
// decay-adjusted value.
func (s *HistoryService) UpdateDecayAdjusted(ctx context.Context, learnerID, activityID, skillID string, decayAdjusted float64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE activity_history
		SET decay_adjusted_evidence_volume = ?, cumulative_evidence_weight = ?
		WHERE learner_id = ? AND activity_id = ? AND skill_id = ?`,
		decayAdjusted, decayAdjusted, learnerID, activityID, skillID)
	if err != nil {
		return fmt.Errorf("failed to update decay-adjusted evidence: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SkillIDs returns the distinct skills with history rows for a learner.
func (s *HistoryService) SkillIDs(ctx context.Context, learnerID string) ([]string, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids, `
		SELECT DISTINCT skill_id FROM activity_history
		WHERE learner_id = ? ORDER BY skill_id`, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list history skills: %w", err)
	}
	return ids, nil
}

// LearnerIDs returns the distinct learners with history rows.
func (s *HistoryService) LearnerIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids,
		`SELECT DISTINCT learner_id FROM activity_history ORDER BY learner_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list history learners: %w", err)
	}
	return ids, nil
}

// RowCount returns the number of history rows for a learner across all
// skills. The pipeline keys its per-learner caches on this.
func (s *HistoryService) RowCount(ctx context.Context, learnerID string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM activity_history WHERE learner_id = ?`, learnerID)
	if err != nil {
		return 0, fmt.Errorf("failed to count history rows: %w", err)
	}
	return count, nil
}

// ResetCounts reports what a history reset removed.
type ResetCounts struct {
	ActivityHistoryDeleted int `json:"activity_history_deleted"`
	SkillProgressDeleted   int `json:"skill_progress_deleted"`
	ActivityRecordsDeleted int `json:"activity_records_deleted"`
}

// ResetLearnerHistory deletes a learner's history rows, skill progress, and
// activity records in a single transaction. Foreign-key checks are toggled
// off for the duration of the deletes.
func (s *HistoryService) ResetLearnerHistory(ctx context.Context, learnerID string) (ResetCounts, error) {
	var counts ResetCounts

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return counts, fmt.Errorf("failed to begin reset transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `PRAGMA foreign_keys = OFF`); err != nil {
		return counts, fmt.Errorf("failed to disable foreign keys: %w", err)
	}

	deletes := []struct {
		table string
		count *int
	}{
		{"activity_history", &counts.ActivityHistoryDeleted},
		{"skill_progress", &counts.SkillProgressDeleted},
		{"activity_records", &counts.ActivityRecordsDeleted},
	}
	for _, d := range deletes {
		res, err := tx.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE learner_id = ?`, d.table), learnerID)
		if err != nil {
			return counts, fmt.Errorf("failed to delete from %s: %w", d.table, err)
		}
		affected, _ := res.RowsAffected()
		*d.count = int(affected)
	}

	if _, err := tx.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		return counts, fmt.Errorf("failed to re-enable foreign keys: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return counts, fmt.Errorf("failed to commit reset: %w", err)
	}
	return counts, nil
}

// nullableJSON stores empty raw JSON as NULL rather than an empty string.
func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
