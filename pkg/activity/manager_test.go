package activity

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsundt-ai/evaluator-v16/pkg/eventlog"
	"github.com/nsundt-ai/evaluator-v16/pkg/models"
)

func validActivity(id, activityType string) map[string]any {
	base := map[string]any{
		"activity_id":            id,
		"activity_type":          activityType,
		"title":                  "Incident Writeup",
		"description":            "Write up a root cause analysis",
		"target_skill":           "S001",
		"target_evidence_volume": 4.0,
		"cognitive_level":        "L2",
		"depth_level":            "D2",
		"metadata":               map[string]any{},
	}
	switch activityType {
	case models.ActivityTypeCR:
		base["content"] = map[string]any{
			"prompt":              "Describe the root cause.",
			"response_guidelines": "Two paragraphs minimum.",
		}
		base["rubric"] = map[string]any{
			"aspects": []map[string]any{
				{"aspect_id": "a1", "aspect_name": "Accuracy"},
			},
		}
	case models.ActivityTypeSR:
		base["content"] = map[string]any{
			"question":       "Which component failed?",
			"options":        []string{"cache", "db"},
			"correct_answer": "db",
		}
	case models.ActivityTypeCOD:
		base["content"] = map[string]any{
			"problem_statement": "Implement retry with backoff.",
			"starter_code":      "func retry() {}",
			"test_cases":        []any{},
		}
		base["rubric"] = map[string]any{
			"aspects": []map[string]any{
				{"aspect_id": "a1", "aspect_name": "Correctness"},
			},
		}
	}
	return base
}

func writeActivity(t *testing.T, dir string, v map[string]any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(dir, v["activity_id"].(string)+".json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func newTestManager(t *testing.T, dir string) *Manager {
	t.Helper()
	events, err := eventlog.New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = events.Close() })
	return NewManager(dir, events)
}

func TestManager_LoadAll(t *testing.T) {
	dir := t.TempDir()
	writeActivity(t, dir, validActivity("act_cr", models.ActivityTypeCR))
	writeActivity(t, dir, validActivity("act_sr", models.ActivityTypeSR))

	m := newTestManager(t, dir)
	activities, err := m.LoadAll(false)
	require.NoError(t, err)
	assert.Len(t, activities, 2)
	assert.Equal(t, "Incident Writeup", activities["act_cr"].Title)
	assert.NotNil(t, activities["act_cr"].Rubric)
}

func TestManager_InvalidFilesRejectedOthersContinue(t *testing.T) {
	dir := t.TempDir()
	writeActivity(t, dir, validActivity("act_good", models.ActivityTypeSR))

	// Missing rubric on a rubric-required type.
	bad := validActivity("act_norubric", models.ActivityTypeCR)
	delete(bad, "rubric")
	writeActivity(t, dir, bad)

	// Non-positive target evidence.
	bad2 := validActivity("act_zeroev", models.ActivityTypeSR)
	bad2["target_evidence_volume"] = 0.0
	writeActivity(t, dir, bad2)

	// Malformed JSON.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o644))

	m := newTestManager(t, dir)
	activities, err := m.LoadAll(false)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Contains(t, activities, "act_good")
}

func TestManager_ValidationRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]any)
		errSub string
	}{
		{"missing target_skill", func(a map[string]any) { delete(a, "target_skill") }, "target_skill"},
		{"bad activity type", func(a map[string]any) { a["activity_type"] = "XX" }, "activity_type"},
		{"bad cognitive level", func(a map[string]any) { a["cognitive_level"] = "L9" }, "cognitive_level"},
		{"bad depth level", func(a map[string]any) { a["depth_level"] = "D0" }, "depth_level"},
		{"missing content key", func(a map[string]any) {
			a["content"] = map[string]any{"question": "q"}
		}, "content missing required key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			a := validActivity("act_x", models.ActivityTypeSR)
			tt.mutate(a)
			path := writeActivity(t, dir, a)

			_, err := loadFile(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSub)
		})
	}
}

func TestManager_GetAndLookups(t *testing.T) {
	dir := t.TempDir()
	writeActivity(t, dir, validActivity("act_cr", models.ActivityTypeCR))
	writeActivity(t, dir, validActivity("act_cod", models.ActivityTypeCOD))

	m := newTestManager(t, dir)

	spec, err := m.Get("act_cod")
	require.NoError(t, err)
	assert.Equal(t, models.ActivityTypeCOD, spec.ActivityType)

	_, err = m.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	byType, err := m.ByType(models.ActivityTypeCR)
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, "act_cr", byType[0].ActivityID)

	bySkill, err := m.BySkill("S001")
	require.NoError(t, err)
	assert.Len(t, bySkill, 2)

	stats, err := m.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.ByType[models.ActivityTypeCR])
}

func TestManager_CacheReloadsOnMtimeChange(t *testing.T) {
	dir := t.TempDir()
	a := validActivity("act_sr", models.ActivityTypeSR)
	path := writeActivity(t, dir, a)

	m := newTestManager(t, dir)
	first, err := m.Get("act_sr")
	require.NoError(t, err)
	assert.Equal(t, "Incident Writeup", first.Title)

	// Rewrite with a new title and a bumped mtime.
	a["title"] = "Updated Title"
	data, err := json.Marshal(a)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	newTime := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, newTime, newTime))

	activities, err := m.LoadAll(false)
	require.NoError(t, err)
	assert.Equal(t, "Updated Title", activities["act_sr"].Title)
}
