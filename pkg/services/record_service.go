package services

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/nsundt-ai/evaluator-v16/pkg/models"
)

// RecordService manages activity records. Records are append-only; the
// scored flag is written with the record and never updated.
type RecordService struct {
	db *sqlx.DB
}

// NewRecordService creates a new RecordService.
func NewRecordService(db *sqlx.DB) *RecordService {
	return &RecordService{db: db}
}

// Append inserts one activity record and returns its id.
func (s *RecordService) Append(ctx context.Context, rec *models.ActivityRecord) (int64, error) {
	if rec.ActivityID == "" {
		return 0, NewValidationError("activity_id", "required")
	}
	if rec.LearnerID == "" {
		return 0, NewValidationError("learner_id", "required")
	}
	if rec.Timestamp == "" {
		rec.Timestamp = models.NowUTC()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_records
			(activity_id, learner_id, timestamp, evaluation_result, activity_transcript, scored)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ActivityID, rec.LearnerID, rec.Timestamp,
		string(rec.EvaluationResult), string(rec.ActivityTranscript), rec.Scored)
	if err != nil {
		return 0, fmt.Errorf("failed to append activity record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read record id: %w", err)
	}
	rec.ID = id
	return id, nil
}

// ListByLearner returns a learner's records newest-first.
func (s *RecordService) ListByLearner(ctx context.Context, learnerID string, limit int) ([]models.ActivityRecord, error) {
	query := `SELECT * FROM activity_records WHERE learner_id = ? ORDER BY timestamp DESC, id DESC`
	args := []any{learnerID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	var records []models.ActivityRecord
	if err := s.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list activity records: %w", err)
	}
	return records, nil
}

// CountByLearner returns the number of records for a learner.
func (s *RecordService) CountByLearner(ctx context.Context, learnerID string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM activity_records WHERE learner_id = ?`, learnerID)
	if err != nil {
		return 0, fmt.Errorf("failed to count activity records: %w", err)
	}
	return count, nil
}
