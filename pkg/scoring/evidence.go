// Package scoring implements the cumulative per-skill scoring model:
// evidence-volume-weighted decay, the dual-gate mastery status, and the
// activity-history ledger emission.
package scoring

import (
	"math"

	"github.com/nsundt-ai/evaluator-v16/pkg/config"
)

// ActivityEvidence is one activity's scoring input for a single skill.
type ActivityEvidence struct {
	Score          float64
	TargetEvidence float64
	Validity       float64
}

// Adjusted returns the validity-adjusted evidence volume.
func (e ActivityEvidence) Adjusted() float64 {
	return e.TargetEvidence * e.Validity
}

// CumulativeScore computes the evidence-weighted running average over rows
// ordered newest-first (index 0 is the most recent activity).
//
// Each row's weight is its adjusted evidence multiplied by
// decay^(evidence accumulated strictly after it): the newest row always
// carries decay 1.0, and older rows fade as later evidence piles up.
// An empty row set, or one with zero total weight, yields the prior mean.
func CumulativeScore(rows []ActivityEvidence, decay, priorMean float64) float64 {
	if len(rows) == 0 {
		return priorMean
	}

	var weightedSum, totalWeight, evidenceAfter float64
	for _, row := range rows {
		weight := row.Adjusted() * math.Pow(decay, evidenceAfter)
		weightedSum += row.Score * weight
		totalWeight += weight
		evidenceAfter += row.Adjusted()
	}

	if totalWeight == 0 {
		return priorMean
	}
	return weightedSum / totalWeight
}

// TotalEvidence sums the adjusted evidence with no decay applied. Gate 2
// operates on this value.
func TotalEvidence(rows []ActivityEvidence) float64 {
	var total float64
	for _, row := range rows {
		total += row.Adjusted()
	}
	return total
}

// DecayWeights returns each row's decay factor for rows ordered
// newest-first: decay^(evidence accumulated strictly after the row).
// The newest row's factor is always 1.0.
func DecayWeights(rows []ActivityEvidence, decay float64) []float64 {
	weights := make([]float64, len(rows))
	var evidenceAfter float64
	for i, row := range rows {
		weights[i] = math.Pow(decay, evidenceAfter)
		evidenceAfter += row.Adjusted()
	}
	return weights
}

// Standard error bounds.
const (
	semBase = 0.20
	semMin  = 0.05
	semMax  = 0.25
)

// StandardError computes the measurement error: 0.20 / (√n · √max(E, 1)),
// clamped to [0.05, 0.25].
func StandardError(activityCount int, totalEvidence float64) float64 {
	if activityCount < 1 {
		activityCount = 1
	}
	sem := semBase / math.Sqrt(float64(activityCount)) / math.Sqrt(math.Max(totalEvidence, 1))
	return math.Max(semMin, math.Min(semMax, sem))
}

// ConfidenceInterval returns the 95% CI (±1.96·SEM) clamped to [0, 1].
func ConfidenceInterval(score, sem float64) (float64, float64) {
	margin := 1.96 * sem
	return math.Max(0, score-margin), math.Min(1, score+margin)
}

// Gate status values, ordered needs_improvement < developing < approaching
// < passed. "mastered" is the overall status when both gates pass.
const (
	StatusNeedsImprovement = "needs_improvement"
	StatusDeveloping       = "developing"
	StatusApproaching      = "approaching"
	StatusPassed           = "passed"
	StatusMastered         = "mastered"
	StatusUnknown          = "unknown"
)

var statusLadder = map[string]int{
	StatusNeedsImprovement: 0,
	StatusDeveloping:       1,
	StatusApproaching:      2,
	StatusPassed:           3,
}

// PerformanceGateStatus applies the Gate 1 bands to the cumulative score.
// Boundary values belong to the higher band.
func PerformanceGateStatus(score float64, t config.PerformanceThresholds) string {
	switch {
	case score >= t.AtLevel:
		return StatusPassed
	case score >= t.Approaching:
		return StatusApproaching
	case score >= t.Developing:
		return StatusDeveloping
	default:
		return StatusNeedsImprovement
	}
}

// EvidenceGateStatus applies the Gate 2 bands to the total adjusted
// evidence. Boundary values belong to the higher band.
func EvidenceGateStatus(evidence float64, t config.EvidenceThresholds) string {
	switch {
	case evidence >= t.Sufficient:
		return StatusPassed
	case evidence >= t.Approaching:
		return StatusApproaching
	case evidence >= t.Developing:
		return StatusDeveloping
	default:
		return StatusNeedsImprovement
	}
}

// OverallStatus combines both gates: mastery requires both passed;
// otherwise the lower status on the ladder wins, with a lone "passed"
// demoted to "approaching".
func OverallStatus(gate1, gate2 string) string {
	if gate1 == StatusPassed && gate2 == StatusPassed {
		return StatusMastered
	}
	overall := gate1
	if statusLadder[gate2] < statusLadder[gate1] {
		overall = gate2
	}
	if overall == StatusPassed {
		overall = StatusApproaching
	}
	return overall
}
