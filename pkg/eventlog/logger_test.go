package eventlog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if scanner.Text() != "" {
			lines = append(lines, scanner.Text())
		}
	}
	require.NoError(t, scanner.Err())
	return lines
}

func TestLogger_EvaluationStream(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(dir)
	require.NoError(t, err)
	defer logger.Close()

	logger.LogEvaluation(EvaluationEvent{
		EventType:  EventEvaluationStart,
		LearnerID:  "learner_001",
		ActivityID: "activity_001",
		Success:    true,
	})

	lines := readLines(t, filepath.Join(dir, "evaluations.jsonl"))
	require.Len(t, lines, 1)

	var e EvaluationEvent
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &e))
	assert.Equal(t, EventEvaluationStart, e.EventType)
	assert.Equal(t, "learner_001", e.LearnerID)
	assert.True(t, strings.HasSuffix(e.Timestamp, "Z"), "timestamps carry a terminal Z: %s", e.Timestamp)
	_, err = time.Parse(time.RFC3339, e.Timestamp)
	assert.NoError(t, err)
}

func TestLogger_ErrorStream(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(dir)
	require.NoError(t, err)
	defer logger.Close()

	logger.LogError("llm_gateway", KindLLMAggregate, "all providers failed", map[string]any{"phase": "combined_evaluation"})

	lines := readLines(t, filepath.Join(dir, "errors.jsonl"))
	require.Len(t, lines, 1)

	var e ErrorEvent
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &e))
	assert.Equal(t, "llm_gateway", e.Component)
	assert.Equal(t, KindLLMAggregate, e.Kind)
	assert.True(t, strings.HasSuffix(e.Timestamp, "Z"))
}

func TestLogger_PhaseScope(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(dir)
	require.NoError(t, err)
	defer logger.Close()

	scope := logger.PhaseScope("combined_evaluation", "activity_001", "learner_001")
	scope.Complete(true, "openai", 1234, 0.0042, "")

	lines := readLines(t, filepath.Join(dir, "evaluations.jsonl"))
	require.Len(t, lines, 2)

	var start, complete EvaluationEvent
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &start))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &complete))

	assert.Equal(t, EventPhaseStart, start.EventType)
	assert.Equal(t, EventPhaseComplete, complete.EventType)
	assert.Equal(t, "combined_evaluation", complete.PhaseName)
	assert.Equal(t, "openai", complete.Provider)
	assert.Equal(t, 1234, complete.TokensUsed)
	assert.InDelta(t, 0.0042, complete.CostEstimate, 1e-9)
}

func TestLogger_Prune(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(dir)
	require.NoError(t, err)
	defer logger.Close()

	old := EvaluationEvent{
		Timestamp:  time.Now().UTC().Add(-48 * time.Hour).Format(time.RFC3339),
		EventType:  EventEvaluationStart,
		LearnerID:  "learner_001",
		ActivityID: "activity_old",
	}
	logger.LogEvaluation(old)
	logger.LogEvaluation(EvaluationEvent{
		EventType:  EventEvaluationStart,
		LearnerID:  "learner_001",
		ActivityID: "activity_new",
	})

	require.NoError(t, logger.Prune(24*time.Hour))

	lines := readLines(t, filepath.Join(dir, "evaluations.jsonl"))
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "activity_new")

	// Appends keep working against the rewritten file.
	logger.LogEvaluation(EvaluationEvent{
		EventType:  EventEvaluationComplete,
		LearnerID:  "learner_001",
		ActivityID: "activity_after_prune",
	})
	lines = readLines(t, filepath.Join(dir, "evaluations.jsonl"))
	assert.Len(t, lines, 2)
}
