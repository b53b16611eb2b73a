package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsundt-ai/evaluator-v16/pkg/models"
)

func TestLearnerService_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	svc := NewLearnerService(db)
	ctx := context.Background()

	profile := &models.LearnerProfile{
		LearnerID:  "learner_001",
		Name:       "Sarah Martinez",
		Email:      "sarah@example.com",
		Background: "Data analyst moving into engineering",
	}
	require.NoError(t, svc.Create(ctx, profile))
	assert.Equal(t, models.LearnerStatusActive, profile.Status)
	assert.NotEmpty(t, profile.Created)

	got, err := svc.Get(ctx, "learner_001")
	require.NoError(t, err)
	assert.Equal(t, "Sarah Martinez", got.Name)
	assert.Equal(t, "beginner", got.ExperienceLevel)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLearnerService_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewLearnerService(db)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, &models.LearnerProfile{
		LearnerID: "learner_001", Name: "A", Email: "same@example.com",
	}))
	err := svc.Create(ctx, &models.LearnerProfile{
		LearnerID: "learner_002", Name: "B", Email: "same@example.com",
	})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestLearnerService_ValidationErrors(t *testing.T) {
	db := newTestDB(t)
	svc := NewLearnerService(db)
	ctx := context.Background()

	err := svc.Create(ctx, &models.LearnerProfile{Name: "No ID", Email: "x@example.com"})
	assert.True(t, IsValidationError(err))

	err = svc.Create(ctx, &models.LearnerProfile{LearnerID: "learner_001", Name: "No Email"})
	assert.True(t, IsValidationError(err))
}

func TestLearnerService_SetStatus(t *testing.T) {
	db := newTestDB(t)
	svc := NewLearnerService(db)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, &models.LearnerProfile{
		LearnerID: "learner_001", Name: "A", Email: "a@example.com",
	}))

	require.NoError(t, svc.SetStatus(ctx, "learner_001", models.LearnerStatusInactive))
	got, err := svc.Get(ctx, "learner_001")
	require.NoError(t, err)
	assert.Equal(t, models.LearnerStatusInactive, got.Status)

	assert.True(t, IsValidationError(svc.SetStatus(ctx, "learner_001", "deleted")))
	assert.ErrorIs(t, svc.SetStatus(ctx, "missing", models.LearnerStatusActive), ErrNotFound)
}

func TestLearnerService_ListAndSearch(t *testing.T) {
	db := newTestDB(t)
	svc := NewLearnerService(db)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, &models.LearnerProfile{
		LearnerID: "learner_001", Name: "Sarah Martinez", Email: "sarah@example.com",
	}))
	require.NoError(t, svc.Create(ctx, &models.LearnerProfile{
		LearnerID: "learner_002", Name: "Miguel Chen", Email: "miguel@example.com",
	}))
	require.NoError(t, svc.SetStatus(ctx, "learner_002", models.LearnerStatusInactive))

	active, err := svc.List(ctx, models.LearnerStatusActive, 0)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "learner_001", active[0].LearnerID)

	all, err := svc.List(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	found, err := svc.Search(ctx, "miguel", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "learner_002", found[0].LearnerID)
}
