package scoring

import (
	"context"
	"fmt"
	"math"

	"github.com/nsundt-ai/evaluator-v16/pkg/models"
)

// RecalcStats reports what a retroactive recalculation touched.
type RecalcStats struct {
	LearnersProcessed int `json:"learners_processed"`
	RowsUpdated       int `json:"rows_updated"`
	SkillsRederived   int `json:"skills_rederived"`
}

// RecalculateAll recomputes decay_adjusted_evidence_volume for every
// history row using the current decay setting, then re-derives skill
// progress. learnerID narrows the operation to one learner; empty means
// all. Idempotent: a second run with the same setting rewrites identical
// values. Holds each learner's write lock for the duration of that
// learner's recompute so it never interleaves with a submission.
func (e *Engine) RecalculateAll(ctx context.Context, learnerID string) (*RecalcStats, error) {
	var learners []string
	if learnerID != "" {
		learners = []string{learnerID}
	} else {
		var err error
		learners, err = e.history.LearnerIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list learners for recalculation: %w", err)
		}
	}

	stats := &RecalcStats{}
	decay := e.cfg.ScoringParams().DecayFactor

	for _, learner := range learners {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		lock := e.LearnerLock(learner)
		lock.Lock()
		err := e.recalculateLearner(ctx, learner, decay, stats)
		lock.Unlock()
		if err != nil {
			return stats, err
		}
		stats.LearnersProcessed++
	}

	e.events.System().Info("Retroactive decay recalculation complete",
		"decay_factor", decay,
		"learners", stats.LearnersProcessed,
		"rows_updated", stats.RowsUpdated)
	return stats, nil
}

func (e *Engine) recalculateLearner(ctx context.Context, learnerID string, decay float64, stats *RecalcStats) error {
	skills, err := e.history.SkillIDs(ctx, learnerID)
	if err != nil {
		return fmt.Errorf("failed to list skills for %s: %w", learnerID, err)
	}

	params := e.cfg.ScoringParams()
	thresholds := e.cfg.Thresholds()
	domain := e.cfg.DomainModel()

	for _, skillID := range skills {
		rows, err := e.history.Chronological(ctx, learnerID, skillID)
		if err != nil {
			return fmt.Errorf("failed to read history for %s/%s: %w", learnerID, skillID, err)
		}
		if len(rows) == 0 {
			continue
		}

		// Chronological order: a row's exponent is the adjusted evidence of
		// every row after it. The newest row's exponent is 0, so its
		// decay-adjusted volume equals its adjusted volume.
		for i, row := range rows {
			var evidenceAfter float64
			for j := i + 1; j < len(rows); j++ {
				evidenceAfter += rows[j].AdjustedEvidenceVolume
			}
			decayAdjusted := row.AdjustedEvidenceVolume * math.Pow(decay, evidenceAfter)
			if err := e.history.UpdateDecayAdjusted(ctx, learnerID, row.ActivityID, skillID, decayAdjusted); err != nil {
				return fmt.Errorf("failed to update row %s/%s/%s: %w", learnerID, row.ActivityID, skillID, err)
			}
			stats.RowsUpdated++
		}

		// Re-derive skill progress from the full row set, newest-first.
		evidence := make([]ActivityEvidence, 0, len(rows))
		for i := len(rows) - 1; i >= 0; i-- {
			evidence = append(evidence, ActivityEvidence{
				Score:          rows[i].PerformanceScore,
				TargetEvidence: rows[i].TargetEvidenceVolume,
				Validity:       rows[i].ValidityModifier,
			})
		}
		cumulative := CumulativeScore(evidence, decay, params.PriorMean)
		totalEvidence := TotalEvidence(evidence)
		gate1 := PerformanceGateStatus(cumulative, thresholds.Performance)
		gate2 := EvidenceGateStatus(totalEvidence, thresholds.Evidence)
		sem := StandardError(len(evidence), totalEvidence)
		lower, upper := ConfidenceInterval(cumulative, sem)

		if err := e.progress.Upsert(ctx, &models.SkillProgress{
			SkillID:               skillID,
			LearnerID:             learnerID,
			SkillName:             domain.SkillName(skillID),
			CumulativeScore:       cumulative,
			TotalAdjustedEvidence: totalEvidence,
			ActivityCount:         len(evidence),
			Gate1Status:           gate1,
			Gate2Status:           gate2,
			OverallStatus:         OverallStatus(gate1, gate2),
			ConfidenceLower:       lower,
			ConfidenceUpper:       upper,
			StandardError:         sem,
			LastUpdated:           models.NowUTC(),
		}); err != nil {
			return fmt.Errorf("failed to re-derive progress for %s/%s: %w", learnerID, skillID, err)
		}
		stats.SkillsRederived++
	}
	return nil
}
