package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsundt-ai/evaluator-v16/pkg/models"
)

func TestHistoryService_OrderingBothDirections(t *testing.T) {
	db := newTestDB(t)
	createTestLearner(t, db, "learner_001")
	svc := NewHistoryService(db)
	ctx := context.Background()

	// Insert out of order on purpose.
	require.NoError(t, svc.InsertRow(ctx, historyRow("learner_001", "a2", "S001", "2026-03-02T10:00:00Z", 0.8, 5, 1)))
	require.NoError(t, svc.InsertRow(ctx, historyRow("learner_001", "a1", "S001", "2026-03-01T10:00:00Z", 0.5, 5, 1)))
	require.NoError(t, svc.InsertRow(ctx, historyRow("learner_001", "a3", "S001", "2026-03-03T10:00:00Z", 1.0, 5, 1)))

	chrono, err := svc.Chronological(ctx, "learner_001", "S001")
	require.NoError(t, err)
	require.Len(t, chrono, 3)
	assert.Equal(t, []string{"a1", "a2", "a3"},
		[]string{chrono[0].ActivityID, chrono[1].ActivityID, chrono[2].ActivityID})

	recent, err := svc.RecentFirst(ctx, "learner_001", "S001")
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "a3", recent[0].ActivityID, "position 0 is the most recent")
	assert.Equal(t, "a1", recent[2].ActivityID)
}

func TestHistoryService_TimestampTieBreaksOnID(t *testing.T) {
	db := newTestDB(t)
	createTestLearner(t, db, "learner_001")
	svc := NewHistoryService(db)
	ctx := context.Background()

	ts := "2026-03-01T10:00:00Z"
	require.NoError(t, svc.InsertRow(ctx, historyRow("learner_001", "first", "S001", ts, 0.5, 5, 1)))
	require.NoError(t, svc.InsertRow(ctx, historyRow("learner_001", "second", "S001", ts, 0.8, 5, 1)))

	chrono, err := svc.Chronological(ctx, "learner_001", "S001")
	require.NoError(t, err)
	assert.Equal(t, "first", chrono[0].ActivityID)
	assert.Equal(t, "second", chrono[1].ActivityID)

	recent, err := svc.RecentFirst(ctx, "learner_001", "S001")
	require.NoError(t, err)
	assert.Equal(t, "second", recent[0].ActivityID)
}

func TestHistoryService_InsertOrReplace(t *testing.T) {
	db := newTestDB(t)
	createTestLearner(t, db, "learner_001")
	svc := NewHistoryService(db)
	ctx := context.Background()

	require.NoError(t, svc.InsertRow(ctx, historyRow("learner_001", "a1", "S001", "2026-03-01T10:00:00Z", 0.5, 5, 1)))

	// Re-evaluation replaces the row rather than adding a second one.
	replacement := historyRow("learner_001", "a1", "S001", "2026-03-05T10:00:00Z", 0.9, 5, 1)
	require.NoError(t, svc.InsertRow(ctx, replacement))

	rows, err := svc.Chronological(ctx, "learner_001", "S001")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 0.9, rows[0].PerformanceScore)
	assert.Equal(t, "2026-03-05T10:00:00Z", rows[0].CompletionTimestamp)
}

func TestHistoryService_PriorAdjustedEvidenceSum(t *testing.T) {
	db := newTestDB(t)
	createTestLearner(t, db, "learner_001")
	svc := NewHistoryService(db)
	ctx := context.Background()

	sum, err := svc.PriorAdjustedEvidenceSum(ctx, "learner_001", "S001")
	require.NoError(t, err)
	assert.Zero(t, sum)

	require.NoError(t, svc.InsertRow(ctx, historyRow("learner_001", "a1", "S001", "2026-03-01T10:00:00Z", 0.5, 5, 1)))
	require.NoError(t, svc.InsertRow(ctx, historyRow("learner_001", "a2", "S001", "2026-03-02T10:00:00Z", 0.5, 4, 0.5)))

	sum, err = svc.PriorAdjustedEvidenceSum(ctx, "learner_001", "S001")
	require.NoError(t, err)
	assert.InDelta(t, 7.0, sum, 1e-9)
}

func TestHistoryService_ResetLearnerHistory(t *testing.T) {
	db := newTestDB(t)
	createTestLearner(t, db, "learner_001")
	createTestLearner(t, db, "learner_002")
	ctx := context.Background()

	history := NewHistoryService(db)
	records := NewRecordService(db)
	progress := NewProgressService(db)

	require.NoError(t, history.InsertRow(ctx, historyRow("learner_001", "a1", "S001", "2026-03-01T10:00:00Z", 0.5, 5, 1)))
	require.NoError(t, history.InsertRow(ctx, historyRow("learner_002", "a1", "S001", "2026-03-01T10:00:00Z", 0.5, 5, 1)))
	_, err := records.Append(ctx, &models.ActivityRecord{
		ActivityID:         "a1",
		LearnerID:          "learner_001",
		EvaluationResult:   json.RawMessage(`{}`),
		ActivityTranscript: json.RawMessage(`{}`),
		Scored:             true,
	})
	require.NoError(t, err)
	require.NoError(t, progress.Upsert(ctx, &models.SkillProgress{
		SkillID:   "S001",
		LearnerID: "learner_001",
		SkillName: "Test Skill",
	}))

	counts, err := history.ResetLearnerHistory(ctx, "learner_001")
	require.NoError(t, err)
	assert.Equal(t, 1, counts.ActivityHistoryDeleted)
	assert.Equal(t, 1, counts.SkillProgressDeleted)
	assert.Equal(t, 1, counts.ActivityRecordsDeleted)

	rows, err := history.Chronological(ctx, "learner_001", "S001")
	require.NoError(t, err)
	assert.Empty(t, rows)

	all, err := progress.GetByLearner(ctx, "learner_001")
	require.NoError(t, err)
	assert.Empty(t, all)

	recs, err := records.ListByLearner(ctx, "learner_001", 0)
	require.NoError(t, err)
	assert.Empty(t, recs)

	// Other learners are untouched.
	other, err := history.Chronological(ctx, "learner_002", "S001")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestHistoryService_UpdateDecayAdjusted(t *testing.T) {
	db := newTestDB(t)
	createTestLearner(t, db, "learner_001")
	svc := NewHistoryService(db)
	ctx := context.Background()

	require.NoError(t, svc.InsertRow(ctx, historyRow("learner_001", "a1", "S001", "2026-03-01T10:00:00Z", 0.5, 5, 1)))

	require.NoError(t, svc.UpdateDecayAdjusted(ctx, "learner_001", "a1", "S001", 2.5))

	rows, err := svc.Chronological(ctx, "learner_001", "S001")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2.5, rows[0].DecayAdjustedEvidenceVolume)
	assert.Equal(t, 2.5, rows[0].CumulativeEvidenceWeight,
		"cumulative_evidence_weight tracks the decay-adjusted value")

	assert.ErrorIs(t, svc.UpdateDecayAdjusted(ctx, "learner_001", "missing", "S001", 1.0), ErrNotFound)
}
