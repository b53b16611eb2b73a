package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nsundt-ai/evaluator-v16/pkg/config"
	"github.com/nsundt-ai/evaluator-v16/pkg/eventlog"
	"github.com/nsundt-ai/evaluator-v16/pkg/models"
	"github.com/nsundt-ai/evaluator-v16/pkg/services"
)

// Engine computes cumulative per-skill scores and writes the history ledger
// and skill progress. It holds no long-lived state beyond configuration and
// is safe for concurrent per-learner use; the per-learner locks serialize
// submissions against retroactive recalculation.
type Engine struct {
	cfg      *config.Store
	history  *services.HistoryService
	progress *services.ProgressService
	events   *eventlog.Logger

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewEngine creates a scoring engine.
func NewEngine(cfg *config.Store, history *services.HistoryService, progress *services.ProgressService, events *eventlog.Logger) *Engine {
	return &Engine{
		cfg:      cfg,
		history:  history,
		progress: progress,
		events:   events,
		locks:    make(map[string]*sync.Mutex),
	}
}

// LearnerLock returns the mutex serializing writes for one learner. The
// pipeline holds it across a submission; recalculation holds it across a
// learner's recompute.
func (e *Engine) LearnerLock(learnerID string) *sync.Mutex {
	e.locksMu.Lock()
	defer e.locksMu.Unlock()
	lock, ok := e.locks[learnerID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[learnerID] = lock
	}
	return lock
}

// ScoreActivity scores one evaluation payload for every skill it targets,
// inserting a history row and upserting skill progress per skill. Scoring
// never calls the LLM. Storage failures mark the affected skill's status
// unknown and are logged; the caller still receives a result.
func (e *Engine) ScoreActivity(ctx context.Context, learnerID string, evaluation map[string]any) (*models.ScoringResult, error) {
	activityID := getString(evaluation, "activity_id")
	e.events.System().Info("Scoring started", "activity_id", activityID, "learner_id", learnerID)

	params := e.cfg.ScoringParams()
	thresholds := e.cfg.Thresholds()
	domain := e.cfg.DomainModel()

	skillScores := make(map[string]*models.SkillScore)
	for _, skillID := range ExtractTargetSkills(evaluation) {
		score := e.scoreSkill(ctx, learnerID, skillID, evaluation, params, thresholds, domain)
		skillScores[skillID] = score
	}

	mastered := 0
	for _, score := range skillScores {
		if score.OverallStatus == StatusMastered {
			mastered++
		}
	}
	progress := 0.0
	if len(skillScores) > 0 {
		progress = float64(mastered) / float64(len(skillScores))
	}

	result := &models.ScoringResult{
		ActivityID:           activityID,
		LearnerID:            learnerID,
		SkillScores:          skillScores,
		Timestamp:            models.NowUTC(),
		TotalSkillsEvaluated: len(skillScores),
		SkillsMastered:       mastered,
		OverallProgress:      progress,
	}

	e.events.System().Info("Scoring complete",
		"activity_id", activityID,
		"learner_id", learnerID,
		"skills_evaluated", result.TotalSkillsEvaluated,
		"skills_mastered", result.SkillsMastered)
	return result, nil
}

// scoreSkill computes one skill's cumulative state and persists the ledger
// row and progress. Every failure path still returns a usable SkillScore.
func (e *Engine) scoreSkill(
	ctx context.Context,
	learnerID, skillID string,
	evaluation map[string]any,
	params config.ScoringParameters,
	thresholds config.GateThresholds,
	domain *config.DomainModel,
) *models.SkillScore {
	data := ExtractSkillData(evaluation, skillID)

	priorRows, err := e.history.RecentFirst(ctx, learnerID, skillID)
	if err != nil {
		e.events.LogError("scoring_engine", eventlog.KindStorage,
			fmt.Sprintf("failed to read history for %s/%s: %v", learnerID, skillID, err),
			map[string]any{"learner_id": learnerID, "skill_id": skillID})
		return e.unknownSkillScore(skillID, domain)
	}

	// Newest-first evidence list with this submission at position 0.
	evidence := make([]ActivityEvidence, 0, len(priorRows)+1)
	evidence = append(evidence, data.Evidence())
	var priorAdjustedSum float64
	for _, row := range priorRows {
		evidence = append(evidence, ActivityEvidence{
			Score:          row.PerformanceScore,
			TargetEvidence: row.TargetEvidenceVolume,
			Validity:       row.ValidityModifier,
		})
		priorAdjustedSum += row.AdjustedEvidenceVolume
	}

	cumulative := CumulativeScore(evidence, params.DecayFactor, params.PriorMean)
	totalEvidence := TotalEvidence(evidence)
	gate1 := PerformanceGateStatus(cumulative, thresholds.Performance)
	gate2 := EvidenceGateStatus(totalEvidence, thresholds.Evidence)
	sem := StandardError(len(evidence), totalEvidence)
	lower, upper := ConfidenceInterval(cumulative, sem)

	score := &models.SkillScore{
		SkillID:               skillID,
		SkillName:             domain.SkillName(skillID),
		CumulativeScore:       cumulative,
		TotalAdjustedEvidence: totalEvidence,
		ActivityCount:         len(evidence),
		Gate1Status:           gate1,
		Gate2Status:           gate2,
		OverallStatus:         OverallStatus(gate1, gate2),
		StandardError:         sem,
		ConfidenceLower:       lower,
		ConfidenceUpper:       upper,
		LastUpdated:           models.NowUTC(),
	}

	if err := e.emitHistoryRow(ctx, learnerID, skillID, evaluation, data, cumulative, priorAdjustedSum, params.DecayFactor); err != nil {
		e.events.LogError("scoring_engine", eventlog.KindStorage,
			fmt.Sprintf("failed to write history row for %s/%s: %v", learnerID, skillID, err),
			map[string]any{"learner_id": learnerID, "skill_id": skillID})
		score.OverallStatus = StatusUnknown
		return score
	}

	if err := e.progress.Upsert(ctx, &models.SkillProgress{
		SkillID:               skillID,
		LearnerID:             learnerID,
		SkillName:             score.SkillName,
		CumulativeScore:       score.CumulativeScore,
		TotalAdjustedEvidence: score.TotalAdjustedEvidence,
		ActivityCount:         score.ActivityCount,
		Gate1Status:           score.Gate1Status,
		Gate2Status:           score.Gate2Status,
		OverallStatus:         score.OverallStatus,
		ConfidenceLower:       score.ConfidenceLower,
		ConfidenceUpper:       score.ConfidenceUpper,
		StandardError:         score.StandardError,
		LastUpdated:           score.LastUpdated,
	}); err != nil {
		e.events.LogError("scoring_engine", eventlog.KindStorage,
			fmt.Sprintf("failed to upsert progress for %s/%s: %v", learnerID, skillID, err),
			map[string]any{"learner_id": learnerID, "skill_id": skillID})
		score.OverallStatus = StatusUnknown
	}

	return score
}

// emitHistoryRow inserts this submission's ledger row. As the newest row
// its decay factor is 1.0, so decay-adjusted evidence equals adjusted
// evidence; cumulative_evidence_weight stores the decay-adjusted value.
func (e *Engine) emitHistoryRow(
	ctx context.Context,
	learnerID, skillID string,
	evaluation map[string]any,
	data SkillData,
	cumulativePerformance, priorAdjustedSum, decayFactor float64,
) error {
	adjusted := data.Evidence().Adjusted()

	var evalJSON, transcriptJSON json.RawMessage
	if raw, err := json.Marshal(evaluation); err == nil {
		evalJSON = raw
	}
	if transcript, ok := evaluation["activity_transcript"]; ok {
		if raw, err := json.Marshal(transcript); err == nil {
			transcriptJSON = raw
		}
	}

	return e.history.InsertRow(ctx, &models.ActivityHistoryRow{
		LearnerID:                   learnerID,
		ActivityID:                  getString(evaluation, "activity_id"),
		SkillID:                     skillID,
		CompletionTimestamp:         data.Timestamp,
		ActivityType:                getString(evaluation, "activity_type"),
		ActivityTitle:               getString(evaluation, "activity_title"),
		PerformanceScore:            data.PerformanceScore,
		TargetEvidenceVolume:        data.TargetEvidence,
		ValidityModifier:            data.ValidityModifier,
		AdjustedEvidenceVolume:      adjusted,
		CumulativeEvidenceWeight:    adjusted,
		DecayFactor:                 decayFactor,
		DecayAdjustedEvidenceVolume: adjusted,
		CumulativePerformance:       cumulativePerformance,
		CumulativeEvidence:          priorAdjustedSum + adjusted,
		EvaluationResult:            evalJSON,
		ActivityTranscript:          transcriptJSON,
	})
}

// unknownSkillScore is the storage-failure default: score unchanged (zero
// value), status unknown.
func (e *Engine) unknownSkillScore(skillID string, domain *config.DomainModel) *models.SkillScore {
	return &models.SkillScore{
		SkillID:       skillID,
		SkillName:     domain.SkillName(skillID),
		Gate1Status:   StatusUnknown,
		Gate2Status:   StatusUnknown,
		OverallStatus: StatusUnknown,
		LastUpdated:   models.NowUTC(),
	}
}

// ProgressSummary aggregates a learner's skill progress for API consumers.
type ProgressSummary struct {
	LearnerID      string                           `json:"learner_id"`
	TotalSkills    int                              `json:"total_skills"`
	SkillsMastered int                              `json:"skills_mastered"`
	Skills         map[string]*models.SkillProgress `json:"skills"`
}

// ProgressSummary returns the learner's aggregate skill state.
func (e *Engine) ProgressSummary(ctx context.Context, learnerID string) (*ProgressSummary, error) {
	skills, err := e.progress.GetByLearner(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	summary := &ProgressSummary{
		LearnerID: learnerID,
		Skills:    skills,
	}
	summary.TotalSkills = len(skills)
	for _, skill := range skills {
		if skill.OverallStatus == StatusMastered {
			summary.SkillsMastered++
		}
	}
	return summary, nil
}
