package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, dir, name string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func TestInitialize_Defaults(t *testing.T) {
	dir := t.TempDir()

	store, err := Initialize(dir)
	require.NoError(t, err)

	params := store.ScoringParams()
	assert.Equal(t, 0.9, params.DecayFactor)
	assert.Equal(t, 0.0, params.PriorMean)

	th := store.Thresholds()
	assert.Equal(t, 0.75, th.Performance.AtLevel)
	assert.Equal(t, 30.0, th.Evidence.Sufficient)

	chain := store.FallbackChain()
	assert.Equal(t, []string{ProviderOpenAI, ProviderAnthropic, ProviderGoogle}, chain)
}

func TestInitialize_MalformedDocumentIsFatal(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scoring_config.json"), []byte("{not json"), 0o644))

	_, err := Initialize(dir)
	require.Error(t, err)
	var loadErr *LoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestInitialize_InvalidDecayFactorIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "scoring_config.json", map[string]any{
		"scoring_parameters": map[string]any{"decay_factor": 1.5},
	})

	_, err := Initialize(dir)
	require.Error(t, err)
}

func TestPhaseConfig_Overrides(t *testing.T) {
	dir := t.TempDir()
	store, err := Initialize(dir)
	require.NoError(t, err)

	base, err := store.PhaseConfig(ProviderAnthropic, "")
	require.NoError(t, err)
	assert.Equal(t, 4000, base.MaxTokens)

	combined, err := store.PhaseConfig(ProviderAnthropic, "combined_evaluation")
	require.NoError(t, err)
	assert.Equal(t, 6000, combined.MaxTokens)
	assert.InDelta(t, 0.1, combined.Temperature, 1e-9)
	assert.Equal(t, base.DefaultModel, combined.DefaultModel, "model inherits provider default")

	feedback, err := store.PhaseConfig(ProviderOpenAI, "intelligent_feedback")
	require.NoError(t, err)
	assert.InDelta(t, 0.7, feedback.Temperature, 1e-9)

	_, err = store.PhaseConfig("mistral", "combined_evaluation")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestSetDecayFactor_PersistsAndValidates(t *testing.T) {
	dir := t.TempDir()
	store, err := Initialize(dir)
	require.NoError(t, err)

	require.NoError(t, store.SetDecayFactor(0.8))
	assert.Equal(t, 0.8, store.ScoringParams().DecayFactor)

	// Persisted value survives a reload.
	store2, err := Initialize(dir)
	require.NoError(t, err)
	assert.Equal(t, 0.8, store2.ScoringParams().DecayFactor)

	assert.Error(t, store.SetDecayFactor(0))
	assert.Error(t, store.SetDecayFactor(1.2))
	assert.Equal(t, 0.8, store.ScoringParams().DecayFactor)
}

func TestUpdateGateThreshold(t *testing.T) {
	dir := t.TempDir()
	store, err := Initialize(dir)
	require.NoError(t, err)

	require.NoError(t, store.UpdateGateThreshold("evidence", "sufficient", 25.0))
	assert.Equal(t, 25.0, store.Thresholds().Evidence.Sufficient)

	assert.Error(t, store.UpdateGateThreshold("evidence", "bogus", 1.0))
	assert.Error(t, store.UpdateGateThreshold("bogus", "sufficient", 1.0))
}

func TestWriteJSONAtomic_FailureLeavesOriginalIntact(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")

	require.NoError(t, writeJSONAtomic(path, map[string]any{"v": 1}))
	original, err := os.ReadFile(path)
	require.NoError(t, err)

	// Marshal failure: no file is touched.
	err = writeJSONAtomic(path, make(chan int))
	require.Error(t, err)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, after, "original must be intact after a failed save")
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "no .tmp may remain after a failed save")

	// Rename failure: the target is a directory. The temp file is cleaned up.
	dirTarget := filepath.Join(dir, "subdir")
	require.NoError(t, os.MkdirAll(dirTarget, 0o755))
	err = writeJSONAtomic(dirTarget, map[string]any{"v": 2})
	require.Error(t, err)
	_, err = os.Stat(dirTarget + ".tmp")
	assert.True(t, os.IsNotExist(err), "no .tmp may remain after a failed rename")
}

func TestDomainModel_Lookups(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "domain_model.json", map[string]any{
		"competencies": map[string]any{
			"C001": map[string]any{
				"name": "Problem Analysis",
				"skills": map[string]any{
					"S001": map[string]any{
						"name":          "Root Cause Identification",
						"prerequisites": []string{},
						"subskills": map[string]any{
							"SS001": map[string]any{"name": "Evidence Gathering"},
						},
					},
					"S002": map[string]any{
						"name":          "Hypothesis Testing",
						"prerequisites": []string{"S001"},
					},
				},
			},
		},
	})

	store, err := Initialize(dir)
	require.NoError(t, err)
	model := store.DomainModel()

	assert.Equal(t, "Root Cause Identification", model.SkillName("S001"))
	assert.Equal(t, "S999", model.SkillName("S999"), "unknown skill falls back to id")

	ctx := model.SkillContext("S001")
	assert.Equal(t, "C001", ctx.CompetencyID)
	assert.Equal(t, "Problem Analysis", ctx.Competency)
	assert.Contains(t, ctx.Subskills, "SS001")

	rel := model.PrerequisiteRelationships("S001")
	assert.Empty(t, rel.Prerequisites)
	assert.Equal(t, []string{"S002"}, rel.DependentOf)

	rel2 := model.PrerequisiteRelationships("S002")
	assert.Equal(t, []string{"S001"}, rel2.Prerequisites)
}
