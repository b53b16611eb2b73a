package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsundt-ai/evaluator-v16/pkg/config"
)

func defaultPerformanceThresholds() config.PerformanceThresholds {
	return config.PerformanceThresholds{AtLevel: 0.75, Approaching: 0.65, Developing: 0.50}
}

func defaultEvidenceThresholds() config.EvidenceThresholds {
	return config.EvidenceThresholds{Sufficient: 30.0, Approaching: 20.0, Developing: 10.0}
}

func TestCumulativeScore_EmptySetYieldsPriorMean(t *testing.T) {
	assert.Equal(t, 0.0, CumulativeScore(nil, 0.9, 0.0))
	assert.Equal(t, 0.5, CumulativeScore(nil, 0.9, 0.5))
	// Zero total weight also falls back to the prior mean.
	rows := []ActivityEvidence{{Score: 1.0, TargetEvidence: 0, Validity: 1.0}}
	assert.Equal(t, 0.25, CumulativeScore(rows, 0.9, 0.25))
}

func TestCumulativeScore_SingleActivity(t *testing.T) {
	rows := []ActivityEvidence{{Score: 0.8, TargetEvidence: 4.0, Validity: 1.0}}
	assert.InDelta(t, 0.8, CumulativeScore(rows, 0.9, 0.0), 1e-12)
}

func TestCumulativeScore_ThreeActivityDecay(t *testing.T) {
	// Chronological scores 0.5, 0.8, 1.0, each with adjusted evidence 5.
	// Newest-first input; weights are 5·1, 5·0.9^5, 5·0.9^10.
	rows := []ActivityEvidence{
		{Score: 1.0, TargetEvidence: 5, Validity: 1},
		{Score: 0.8, TargetEvidence: 5, Validity: 1},
		{Score: 0.5, TargetEvidence: 5, Validity: 1},
	}
	d := 0.9
	w0, w1, w2 := 5.0, 5.0*math.Pow(d, 5), 5.0*math.Pow(d, 10)
	expected := (w0*1.0 + w1*0.8 + w2*0.5) / (w0 + w1 + w2)

	assert.InDelta(t, expected, CumulativeScore(rows, d, 0.0), 1e-12)
	// The recent high score dominates the older low ones.
	assert.Greater(t, CumulativeScore(rows, d, 0.0), 0.8)
}

func TestDecayWeights_MostRecentNeverDecays(t *testing.T) {
	rowSets := [][]ActivityEvidence{
		{{Score: 1, TargetEvidence: 4, Validity: 1}},
		{
			{Score: 1, TargetEvidence: 3, Validity: 0.5},
			{Score: 0.2, TargetEvidence: 10, Validity: 1},
			{Score: 0.9, TargetEvidence: 7, Validity: 0.8},
		},
	}
	for _, rows := range rowSets {
		for _, d := range []float64{0.5, 0.9, 1.0} {
			weights := DecayWeights(rows, d)
			require.Len(t, weights, len(rows))
			assert.Equal(t, 1.0, weights[0], "newest row always has decay 1.0")
			for i := 1; i < len(weights); i++ {
				assert.LessOrEqual(t, weights[i], weights[i-1])
			}
		}
	}
}

func TestCumulativeScore_DecayMonotonicity(t *testing.T) {
	// Newest row scores 1.0, older rows score 0.0. A smaller decay factor
	// suppresses the old rows harder, so the cumulative score rises.
	rows := []ActivityEvidence{
		{Score: 1.0, TargetEvidence: 5, Validity: 1},
		{Score: 0.0, TargetEvidence: 5, Validity: 1},
		{Score: 0.0, TargetEvidence: 5, Validity: 1},
	}
	d1, d2 := 0.7, 0.95
	scoreD1 := CumulativeScore(rows, d1, 0.0)
	scoreD2 := CumulativeScore(rows, d2, 0.0)
	assert.Greater(t, scoreD1, scoreD2,
		"smaller decay places strictly less weight on older rows")

	// Weighted-average identity: relative old-row weight shrinks with d.
	w1 := DecayWeights(rows, d1)
	w2 := DecayWeights(rows, d2)
	assert.Less(t, w1[1]/w1[0], w2[1]/w2[0])
	assert.Less(t, w1[2]/w1[0], w2[2]/w2[0])
}

func TestCumulativeScore_ValidityReducesWeightAndEvidence(t *testing.T) {
	full := []ActivityEvidence{{Score: 1.0, TargetEvidence: 4, Validity: 1.0}}
	halved := []ActivityEvidence{{Score: 1.0, TargetEvidence: 4, Validity: 0.5}}
	assert.Equal(t, 4.0, TotalEvidence(full))
	assert.Equal(t, 2.0, TotalEvidence(halved))
}

func TestPerformanceGate_BoundariesInclusive(t *testing.T) {
	th := defaultPerformanceThresholds()
	tests := []struct {
		score float64
		want  string
	}{
		{0.76, StatusPassed},
		{0.75, StatusPassed},
		{0.749999, StatusApproaching},
		{0.65, StatusApproaching},
		{0.649999, StatusDeveloping},
		{0.50, StatusDeveloping},
		{0.499999, StatusNeedsImprovement},
		{0.0, StatusNeedsImprovement},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PerformanceGateStatus(tt.score, th), "score %v", tt.score)
	}
}

func TestEvidenceGate_BoundariesInclusive(t *testing.T) {
	th := defaultEvidenceThresholds()
	tests := []struct {
		evidence float64
		want     string
	}{
		{31, StatusPassed},
		{30, StatusPassed},
		{29.999, StatusApproaching},
		{20, StatusApproaching},
		{19.999, StatusDeveloping},
		{10, StatusDeveloping},
		{9.999, StatusNeedsImprovement},
		{0, StatusNeedsImprovement},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EvidenceGateStatus(tt.evidence, th), "evidence %v", tt.evidence)
	}
}

func TestGates_NonDefaultThresholds(t *testing.T) {
	perf := config.PerformanceThresholds{AtLevel: 0.9, Approaching: 0.8, Developing: 0.6}
	assert.Equal(t, StatusPassed, PerformanceGateStatus(0.9, perf))
	assert.Equal(t, StatusApproaching, PerformanceGateStatus(0.85, perf))
	assert.Equal(t, StatusDeveloping, PerformanceGateStatus(0.6, perf))

	ev := config.EvidenceThresholds{Sufficient: 50, Approaching: 35, Developing: 15}
	assert.Equal(t, StatusPassed, EvidenceGateStatus(50, ev))
	assert.Equal(t, StatusApproaching, EvidenceGateStatus(40, ev))
	assert.Equal(t, StatusNeedsImprovement, EvidenceGateStatus(14.9, ev))
}

func TestOverallStatus_Ladder(t *testing.T) {
	tests := []struct {
		gate1, gate2, want string
	}{
		{StatusPassed, StatusPassed, StatusMastered},
		{StatusPassed, StatusApproaching, StatusApproaching},
		{StatusApproaching, StatusPassed, StatusApproaching},
		{StatusPassed, StatusNeedsImprovement, StatusNeedsImprovement},
		{StatusNeedsImprovement, StatusPassed, StatusNeedsImprovement},
		{StatusDeveloping, StatusApproaching, StatusDeveloping},
		{StatusApproaching, StatusDeveloping, StatusDeveloping},
		{StatusPassed, StatusDeveloping, StatusDeveloping},
		{StatusNeedsImprovement, StatusNeedsImprovement, StatusNeedsImprovement},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OverallStatus(tt.gate1, tt.gate2),
			"gate1=%s gate2=%s", tt.gate1, tt.gate2)
	}
}

func TestStandardError_FormulaAndClamp(t *testing.T) {
	// n=1, evidence=4: 0.20 / 1 / 2 = 0.10.
	assert.InDelta(t, 0.10, StandardError(1, 4), 1e-12)

	// Zero evidence is floored at 1, so a single activity tops out at 0.20.
	assert.Equal(t, 0.20, StandardError(1, 0))

	// Large n and evidence clamp low.
	assert.Equal(t, 0.05, StandardError(100, 1000))

	// Evidence below 1 is floored at 1.
	assert.InDelta(t, 0.20, StandardError(1, 0.5), 1e-12)
}

func TestConfidenceInterval_Clamped(t *testing.T) {
	lower, upper := ConfidenceInterval(0.5, 0.1)
	assert.InDelta(t, 0.304, lower, 1e-9)
	assert.InDelta(t, 0.696, upper, 1e-9)

	lower, upper = ConfidenceInterval(0.98, 0.25)
	assert.GreaterOrEqual(t, lower, 0.0)
	assert.Equal(t, 1.0, upper)

	lower, _ = ConfidenceInterval(0.02, 0.25)
	assert.Equal(t, 0.0, lower)
}
