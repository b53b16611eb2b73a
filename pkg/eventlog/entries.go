package eventlog

// Evaluation event types written to evaluations.jsonl.
const (
	EventEvaluationStart    = "evaluation_start"
	EventEvaluationComplete = "evaluation_complete"
	EventPhaseStart         = "phase_start"
	EventPhaseComplete      = "phase_complete"
)

// Gateway provider event types, one per fallback-chain outcome.
const (
	EventProviderUnavailable = "provider_unavailable"
	EventProviderFailed      = "provider_failed"
	EventPrimarySuccess      = "primary_success"
	EventFallbackSuccess     = "fallback_success"
)

// EvaluationEvent is one entry in the evaluation stream.
type EvaluationEvent struct {
	Timestamp       string         `json:"timestamp"`
	EventType       string         `json:"event_type"`
	LearnerID       string         `json:"learner_id"`
	ActivityID      string         `json:"activity_id"`
	PhaseName       string         `json:"phase_name,omitempty"`
	Provider        string         `json:"provider,omitempty"`
	Success         bool           `json:"success"`
	DurationSeconds float64        `json:"duration_seconds,omitempty"`
	TokensUsed      int            `json:"tokens_used,omitempty"`
	CostEstimate    float64        `json:"cost_estimate,omitempty"`
	ErrorMessage    string         `json:"error_message,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// ErrorEvent is one entry in the error stream. Kind follows the error
// taxonomy: configuration, activity_schema, submission_validation,
// llm_provider, llm_aggregate, parse, storage.
type ErrorEvent struct {
	Timestamp string         `json:"timestamp"`
	Component string         `json:"component"`
	Kind      string         `json:"kind"`
	Message   string         `json:"message"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Error taxonomy kinds.
const (
	KindConfiguration        = "configuration"
	KindActivitySchema       = "activity_schema"
	KindSubmissionValidation = "submission_validation"
	KindLLMProvider          = "llm_provider"
	KindLLMAggregate         = "llm_aggregate"
	KindParse                = "parse"
	KindStorage              = "storage"
)
