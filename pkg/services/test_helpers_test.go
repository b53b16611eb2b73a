package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/nsundt-ai/evaluator-v16/pkg/database"
	"github.com/nsundt-ai/evaluator-v16/pkg/models"
)

// newTestDB opens a migrated throwaway database for one test.
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	client, err := database.NewClient(context.Background(),
		database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client.DB()
}

// createTestLearner inserts a minimal active learner.
func createTestLearner(t *testing.T, db *sqlx.DB, learnerID string) {
	t.Helper()
	svc := NewLearnerService(db)
	err := svc.Create(context.Background(), &models.LearnerProfile{
		LearnerID: learnerID,
		Name:      "Test Learner " + learnerID,
		Email:     learnerID + "@example.com",
	})
	require.NoError(t, err)
}

// historyRow builds a ledger row with sensible defaults for tests.
func historyRow(learnerID, activityID, skillID, ts string, score, target, validity float64) *models.ActivityHistoryRow {
	adjusted := target * validity
	return &models.ActivityHistoryRow{
		LearnerID:                   learnerID,
		ActivityID:                  activityID,
		SkillID:                     skillID,
		CompletionTimestamp:         ts,
		ActivityType:                models.ActivityTypeCR,
		ActivityTitle:               "Test Activity",
		PerformanceScore:            score,
		TargetEvidenceVolume:        target,
		ValidityModifier:            validity,
		AdjustedEvidenceVolume:      adjusted,
		CumulativeEvidenceWeight:    adjusted,
		DecayFactor:                 0.9,
		DecayAdjustedEvidenceVolume: adjusted,
		CumulativePerformance:       score,
		CumulativeEvidence:          adjusted,
	}
}
