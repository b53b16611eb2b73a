// Package pipeline orchestrates the evaluation pipeline: phase sequencing,
// per-phase context preparation, failure containment with safe defaults,
// and result aggregation.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nsundt-ai/evaluator-v16/pkg/activity"
	"github.com/nsundt-ai/evaluator-v16/pkg/config"
	"github.com/nsundt-ai/evaluator-v16/pkg/eventlog"
	"github.com/nsundt-ai/evaluator-v16/pkg/llm"
	"github.com/nsundt-ai/evaluator-v16/pkg/models"
	"github.com/nsundt-ai/evaluator-v16/pkg/prompt"
	"github.com/nsundt-ai/evaluator-v16/pkg/scoring"
	"github.com/nsundt-ai/evaluator-v16/pkg/services"
)

// LLMGateway is the pipeline's view of the LLM layer.
type LLMGateway interface {
	Call(ctx context.Context, req llm.Request) *llm.Response
}

// Orchestrator runs the four-phase evaluation pipeline. A phase failure
// never aborts the run: the failing phase records a safe default payload
// and the pipeline continues. Safe for concurrent use across learners;
// submissions for one learner are serialized.
type Orchestrator struct {
	cfg        *config.Store
	gateway    LLMGateway
	prompts    *prompt.Builder
	scorer     *scoring.Engine
	activities *activity.Manager
	learners   *services.LearnerService
	records    *services.RecordService
	history    *services.HistoryService
	events     *eventlog.Logger
	caches     *contextCaches
}

// New creates an orchestrator.
func New(
	cfg *config.Store,
	gateway LLMGateway,
	prompts *prompt.Builder,
	scorer *scoring.Engine,
	activities *activity.Manager,
	learners *services.LearnerService,
	records *services.RecordService,
	history *services.HistoryService,
	events *eventlog.Logger,
) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		gateway:    gateway,
		prompts:    prompts,
		scorer:     scorer,
		activities: activities,
		learners:   learners,
		records:    records,
		history:    history,
		events:     events,
		caches:     newContextCaches(),
	}
}

// promptPhaseNames maps builder phase names to the pipeline phase names
// used in results, events, and llm_settings overrides.
var promptPhaseNames = map[string]string{
	prompt.PhaseCombined:            models.PhaseCombinedEvaluation,
	prompt.PhaseIntelligentFeedback: models.PhaseIntelligentFeedback,
}

// Evaluate runs the full pipeline for one submission. It always returns a
// structured result; no error escapes the orchestrator.
func (o *Orchestrator) Evaluate(ctx context.Context, sub *models.Submission) *models.EvaluationResult {
	start := time.Now()

	if sub == nil || sub.ActivityID == "" || sub.LearnerID == "" {
		return o.failedResult(sub, "missing activity_id or learner_id")
	}

	spec, err := o.activities.Get(sub.ActivityID)
	if err != nil {
		return o.failedResult(sub, fmt.Sprintf("activity not found: %s", sub.ActivityID))
	}
	learner, err := o.learners.Get(ctx, sub.LearnerID)
	if err != nil {
		return o.failedResult(sub, fmt.Sprintf("learner not found: %s", sub.LearnerID))
	}

	// One submission at a time per learner: scoring must commit before the
	// next pipeline reads this learner's history.
	lock := o.scorer.LearnerLock(sub.LearnerID)
	lock.Lock()
	defer lock.Unlock()

	o.events.LogEvaluation(eventlog.EvaluationEvent{
		EventType:  eventlog.EventEvaluationStart,
		LearnerID:  sub.LearnerID,
		ActivityID: sub.ActivityID,
		Success:    true,
	})

	result := &models.EvaluationResult{
		EvaluationID:        uuid.New().String(),
		ActivityID:          sub.ActivityID,
		LearnerID:           sub.LearnerID,
		EvaluationTimestamp: models.NowUTC(),
		FinalSkillScores:    map[string]*models.SkillScore{},
		OverallSuccess:      true,
	}

	addPhase := func(pr models.PhaseResult) {
		result.PipelinePhases = append(result.PipelinePhases, pr)
		result.TotalCostEstimate += pr.CostEstimate
		if !pr.Success {
			result.OverallSuccess = false
			result.ErrorSummary = fmt.Sprintf("%s failed: %s", pr.Phase, pr.Error)
		}
	}

	// Phase 1: combined evaluation.
	combinedPhase := o.runCombinedEvaluation(ctx, spec, learner, sub.ActivityTranscript)
	addPhase(combinedPhase)

	// Phase 2: scoring. Runs on the combined payload — or its defaults.
	var scoringResult *models.ScoringResult
	if cancelErr := ctx.Err(); cancelErr != nil {
		addPhase(cancelledPhase(models.PhaseScoring, cancelErr))
	} else {
		var scoringPhase models.PhaseResult
		scoringPhase, scoringResult = o.runScoring(ctx, spec, learner, sub, combinedPhase.Result)
		addPhase(scoringPhase)
		if scoringResult != nil {
			result.FinalSkillScores = scoringResult.SkillScores
		}
	}

	// Phase 3: intelligent feedback.
	if cancelErr := ctx.Err(); cancelErr != nil {
		addPhase(cancelledPhase(models.PhaseIntelligentFeedback, cancelErr))
	} else {
		addPhase(o.runIntelligentFeedback(ctx, spec, learner, sub.ActivityTranscript, combinedPhase.Result, scoringResult))
	}

	// Phase 4: trend analysis — permanently disabled stub.
	addPhase(o.runTrendStub(sub))

	result.TotalExecutionTimeMs = time.Since(start).Milliseconds()

	// Persist the record regardless of phase outcomes, then invalidate the
	// learner's caches: the learner's history may have just changed.
	o.persistRecord(ctx, sub, result, scoringResult != nil)
	o.caches.invalidateLearner(sub.LearnerID)

	o.events.LogEvaluation(eventlog.EvaluationEvent{
		EventType:       eventlog.EventEvaluationComplete,
		LearnerID:       sub.LearnerID,
		ActivityID:      sub.ActivityID,
		Success:         result.OverallSuccess,
		DurationSeconds: time.Since(start).Seconds(),
		CostEstimate:    result.TotalCostEstimate,
		ErrorMessage:    result.ErrorSummary,
	})
	return result
}

// runCombinedEvaluation executes phase 1 against the LLM gateway.
func (o *Orchestrator) runCombinedEvaluation(ctx context.Context, spec *models.ActivitySpec, learner *models.LearnerProfile, transcript *models.ActivityTranscript) models.PhaseResult {
	scope := o.events.PhaseScope(models.PhaseCombinedEvaluation, spec.ActivityID, learner.LearnerID)
	start := time.Now()

	fail := func(errMsg string) models.PhaseResult {
		scope.Complete(false, "", 0, 0, errMsg)
		return models.PhaseResult{
			Phase:           models.PhaseCombinedEvaluation,
			Success:         false,
			Result:          defaultCombinedResult(errMsg),
			Error:           errMsg,
			ExecutionTimeMs: time.Since(start).Milliseconds(),
		}
	}

	rubric := map[string]any{}
	if spec.Rubric != nil {
		rubric = map[string]any{"aspects": spec.Rubric.Aspects}
	}
	promptCtx := map[string]any{
		"activity_spec":        spec,
		"activity_transcript":  transcript,
		"domain_model":         o.cfg.DomainModel(),
		"target_skill_context": o.skillContext(spec.TargetSkill),
		"rubric_details":       rubric,
		"leveling_framework":   o.levelingFramework(),
		"assistance_log":       assistanceLog(transcript),
		"response_analysis":    responseAnalysis(transcript),
	}

	cfg, err := o.prompts.Build(prompt.PhaseCombined, spec.ActivityType, promptCtx)
	if err != nil {
		return fail(fmt.Sprintf("prompt assembly failed: %v", err))
	}

	resp := o.gateway.Call(ctx, llm.Request{
		SystemPrompt:   cfg.SystemPrompt,
		UserPrompt:     cfg.UserPrompt,
		Phase:          promptPhaseNames[prompt.PhaseCombined],
		ExpectedSchema: cfg.OutputSchema,
	})
	if !resp.Success {
		return fail(fmt.Sprintf("LLM call failed: %s", resp.Error))
	}

	var payload models.CombinedEvaluation
	if err := json.Unmarshal([]byte(resp.Content), &payload); err != nil {
		o.events.LogError("evaluation_pipeline", eventlog.KindParse,
			fmt.Sprintf("combined evaluation content is not valid JSON: %v", err),
			map[string]any{"activity_id": spec.ActivityID, "provider": resp.Provider})
		return fail(fmt.Sprintf("response parsing failed: %v", err))
	}

	scope.Complete(true, resp.Provider, resp.TokensUsed, resp.CostEstimate, "")
	resultMap := payload.Raw
	if resultMap == nil {
		resultMap = map[string]any{}
	}
	return models.PhaseResult{
		Phase:           models.PhaseCombinedEvaluation,
		Success:         true,
		Result:          resultMap,
		ExecutionTimeMs: time.Since(start).Milliseconds(),
		TokensUsed:      resp.TokensUsed,
		CostEstimate:    resp.CostEstimate,
	}
}

// runScoring executes phase 2 through the scoring engine. Combined results
// (or their defaults) feed the evaluation payload.
func (o *Orchestrator) runScoring(ctx context.Context, spec *models.ActivitySpec, learner *models.LearnerProfile, sub *models.Submission, combined map[string]any) (models.PhaseResult, *models.ScoringResult) {
	scope := o.events.PhaseScope(models.PhaseScoring, spec.ActivityID, learner.LearnerID)
	start := time.Now()

	overallScore, _ := floatFrom(combined, "overall_score")
	validity, ok := floatFrom(combined, "validity_modifier")
	if !ok {
		validity = 1.0
	}

	evaluation := map[string]any{
		"activity_id":            spec.ActivityID,
		"learner_id":             learner.LearnerID,
		"target_skill":           spec.TargetSkill,
		"activity_type":          spec.ActivityType,
		"activity_title":         spec.Title,
		"target_evidence_volume": spec.TargetEvidenceVolume,
		"timestamp":              models.NowUTC(),
		"evaluation_results": map[string]any{
			"phase_1_combined_evaluation": map[string]any{
				"overall_score":          overallScore,
				"validity_modifier":      validity,
				"target_evidence_volume": spec.TargetEvidenceVolume,
			},
		},
		"activity_transcript": sub.ActivityTranscript,
	}

	scoringResult, err := o.scorer.ScoreActivity(ctx, learner.LearnerID, evaluation)
	if err != nil {
		errMsg := fmt.Sprintf("scoring failed: %v", err)
		scope.Complete(false, "", 0, 0, errMsg)
		return models.PhaseResult{
			Phase:           models.PhaseScoring,
			Success:         false,
			Result:          defaultScoringResult(spec.TargetEvidenceVolume, err.Error()),
			Error:           errMsg,
			ExecutionTimeMs: time.Since(start).Milliseconds(),
		}, nil
	}

	scope.Complete(true, "", 0, 0, "")
	return models.PhaseResult{
		Phase:   models.PhaseScoring,
		Success: true,
		Result: map[string]any{
			"activity_score":           overallScore,
			"target_evidence_volume":   spec.TargetEvidenceVolume,
			"validity_modifier":        validity,
			"adjusted_evidence_volume": spec.TargetEvidenceVolume * validity,
			"final_score":              overallScore,
			"skills_evaluated":         scoringResult.TotalSkillsEvaluated,
			"skills_mastered":          scoringResult.SkillsMastered,
			"scoring_rationale":        fmt.Sprintf("Activity scored with %d skills evaluated", scoringResult.TotalSkillsEvaluated),
		},
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}, scoringResult
}

// runIntelligentFeedback executes phase 3 against the LLM gateway.
func (o *Orchestrator) runIntelligentFeedback(ctx context.Context, spec *models.ActivitySpec, learner *models.LearnerProfile, transcript *models.ActivityTranscript, combined map[string]any, scoringResult *models.ScoringResult) models.PhaseResult {
	scope := o.events.PhaseScope(models.PhaseIntelligentFeedback, spec.ActivityID, learner.LearnerID)
	start := time.Now()

	fail := func(errMsg string) models.PhaseResult {
		scope.Complete(false, "", 0, 0, errMsg)
		return models.PhaseResult{
			Phase:           models.PhaseIntelligentFeedback,
			Success:         false,
			Result:          defaultIntelligentFeedbackResult(errMsg),
			Error:           errMsg,
			ExecutionTimeMs: time.Since(start).Milliseconds(),
		}
	}

	rubricResults := map[string]any{
		"aspect_scores": combined["aspect_scores"],
		"overall_score": combined["overall_score"],
		"rationale":     combined["rationale"],
	}
	validityResults := map[string]any{
		"validity_modifier": combined["validity_modifier"],
		"validity_analysis": combined["validity_analysis"],
		"validity_reason":   combined["validity_reason"],
	}

	promptCtx := map[string]any{
		"activity_spec":              spec,
		"activity_transcript":        transcript,
		"rubric_evaluation_results":  rubricResults,
		"validity_analysis_results":  validityResults,
		"target_skill_context":       o.skillContext(spec.TargetSkill),
		"prerequisite_relationships": o.prerequisiteRelationships(spec.TargetSkill),
		"performance_context":        performanceContext(scoringResult),
		"motivational_context":       motivationalContext(learner),
	}

	cfg, err := o.prompts.Build(prompt.PhaseIntelligentFeedback, spec.ActivityType, promptCtx)
	if err != nil {
		return fail(fmt.Sprintf("prompt assembly failed: %v", err))
	}

	resp := o.gateway.Call(ctx, llm.Request{
		SystemPrompt:   cfg.SystemPrompt,
		UserPrompt:     cfg.UserPrompt,
		Phase:          promptPhaseNames[prompt.PhaseIntelligentFeedback],
		ExpectedSchema: cfg.OutputSchema,
	})
	if !resp.Success {
		return fail(fmt.Sprintf("LLM call failed: %s", resp.Error))
	}

	var payload models.IntelligentFeedbackPayload
	if err := json.Unmarshal([]byte(resp.Content), &payload); err != nil {
		o.events.LogError("evaluation_pipeline", eventlog.KindParse,
			fmt.Sprintf("intelligent feedback content is not valid JSON: %v", err),
			map[string]any{"activity_id": spec.ActivityID, "provider": resp.Provider})
		return fail(fmt.Sprintf("response parsing failed: %v", err))
	}

	scope.Complete(true, resp.Provider, resp.TokensUsed, resp.CostEstimate, "")
	resultMap := payload.Raw
	if resultMap == nil {
		resultMap = map[string]any{}
	}
	return models.PhaseResult{
		Phase:           models.PhaseIntelligentFeedback,
		Success:         true,
		Result:          resultMap,
		ExecutionTimeMs: time.Since(start).Milliseconds(),
		TokensUsed:      resp.TokensUsed,
		CostEstimate:    resp.CostEstimate,
	}
}

// runTrendStub returns the disabled trend phase's fixed payload.
func (o *Orchestrator) runTrendStub(sub *models.Submission) models.PhaseResult {
	scope := o.events.PhaseScope(models.PhaseTrendAnalysis, sub.ActivityID, sub.LearnerID)
	scope.Complete(true, "", 0, 0, "")
	return models.PhaseResult{
		Phase:   models.PhaseTrendAnalysis,
		Success: true,
		Result:  trendDisabledResult(),
	}
}

// LearnerContext returns the cached historical and temporal summaries for
// one learner, keyed on the current history row count so entries go stale
// the moment a submission commits.
func (o *Orchestrator) LearnerContext(ctx context.Context, learnerID string) (historical, temporal map[string]any, err error) {
	rowCount, err := o.history.RowCount(ctx, learnerID)
	if err != nil {
		return nil, nil, err
	}
	return o.historicalSummary(ctx, learnerID, rowCount), o.temporalContext(ctx, learnerID, rowCount), nil
}

// CachedLearnerEntries reports how many per-learner cache entries exist for
// a learner.
func (o *Orchestrator) CachedLearnerEntries(learnerID string) int {
	return o.caches.learnerCacheSize(learnerID)
}

// persistRecord appends the activity record. A storage failure is logged
// and the in-memory result still flows back to the caller.
func (o *Orchestrator) persistRecord(ctx context.Context, sub *models.Submission, result *models.EvaluationResult, scored bool) {
	evalJSON, err := json.Marshal(result)
	if err != nil {
		o.events.LogError("evaluation_pipeline", eventlog.KindStorage,
			fmt.Sprintf("failed to marshal evaluation result: %v", err), nil)
		return
	}
	transcriptJSON, err := json.Marshal(sub.ActivityTranscript)
	if err != nil {
		transcriptJSON = []byte("{}")
	}

	_, err = o.records.Append(ctx, &models.ActivityRecord{
		ActivityID:         sub.ActivityID,
		LearnerID:          sub.LearnerID,
		Timestamp:          result.EvaluationTimestamp,
		EvaluationResult:   evalJSON,
		ActivityTranscript: transcriptJSON,
		Scored:             scored,
	})
	if err != nil {
		o.events.LogError("evaluation_pipeline", eventlog.KindStorage,
			fmt.Sprintf("failed to persist activity record: %v", err),
			map[string]any{"activity_id": sub.ActivityID, "learner_id": sub.LearnerID})
	}
}

// failedResult is the submission-validation failure: no phase runs.
func (o *Orchestrator) failedResult(sub *models.Submission, reason string) *models.EvaluationResult {
	activityID, learnerID := "", ""
	if sub != nil {
		activityID, learnerID = sub.ActivityID, sub.LearnerID
	}
	o.events.LogError("evaluation_pipeline", eventlog.KindSubmissionValidation, reason,
		map[string]any{"activity_id": activityID, "learner_id": learnerID})
	return &models.EvaluationResult{
		EvaluationID:        uuid.New().String(),
		ActivityID:          activityID,
		LearnerID:           learnerID,
		EvaluationTimestamp: models.NowUTC(),
		FinalSkillScores:    map[string]*models.SkillScore{},
		OverallSuccess:      false,
		ErrorSummary:        reason,
	}
}

// cancelledPhase records a phase skipped by cancellation at its boundary.
func cancelledPhase(phase string, err error) models.PhaseResult {
	return models.PhaseResult{
		Phase:   phase,
		Success: false,
		Error:   fmt.Sprintf("cancelled before phase start: %v", err),
	}
}

func floatFrom(m map[string]any, key string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	v, ok := m[key].(float64)
	return v, ok
}
