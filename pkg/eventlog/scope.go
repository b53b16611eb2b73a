package eventlog

import "time"

// PhaseScope wraps one pipeline phase in paired phase_start/phase_complete
// events. Obtain one at phase entry and call Complete exactly once.
type PhaseScope struct {
	logger     *Logger
	phase      string
	activityID string
	learnerID  string
	started    time.Time
}

// PhaseScope starts a phase event scope and emits phase_start.
func (l *Logger) PhaseScope(phase, activityID, learnerID string) *PhaseScope {
	l.LogEvaluation(EvaluationEvent{
		EventType:  EventPhaseStart,
		LearnerID:  learnerID,
		ActivityID: activityID,
		PhaseName:  phase,
		Success:    true,
	})
	return &PhaseScope{
		logger:     l,
		phase:      phase,
		activityID: activityID,
		learnerID:  learnerID,
		started:    time.Now(),
	}
}

// Complete emits phase_complete with duration, token, cost, and provider
// detail. errMsg is empty on success.
func (s *PhaseScope) Complete(success bool, provider string, tokens int, cost float64, errMsg string) {
	s.logger.LogEvaluation(EvaluationEvent{
		EventType:       EventPhaseComplete,
		LearnerID:       s.learnerID,
		ActivityID:      s.activityID,
		PhaseName:       s.phase,
		Provider:        provider,
		Success:         success,
		DurationSeconds: time.Since(s.started).Seconds(),
		TokensUsed:      tokens,
		CostEstimate:    cost,
		ErrorMessage:    errMsg,
	})
}
