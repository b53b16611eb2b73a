// Package prompt assembles the system and user prompts for each phase ×
// activity-type configuration, with strict variable substitution and
// post-build validation.
package prompt

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// Phase names accepted by the builder.
const (
	PhaseCombined            = "combined"
	PhaseRubric              = "rubric"   // deprecated
	PhaseValidity            = "validity" // deprecated
	PhaseDiagnostic          = "diagnostic"
	PhaseTrend               = "trend"
	PhaseFeedback            = "feedback" // deprecated
	PhaseIntelligentFeedback = "intelligent_feedback"
)

// validPhases is the closed phase set. Deprecated phases remain in the set
// so they are rejected as template-less rather than unknown.
var validPhases = map[string]bool{
	PhaseCombined:            true,
	PhaseRubric:              true,
	PhaseValidity:            true,
	PhaseDiagnostic:          true,
	PhaseTrend:               true,
	PhaseFeedback:            true,
	PhaseIntelligentFeedback: true,
}

var validActivityTypes = map[string]bool{
	"CR": true, "COD": true, "RP": true, "SR": true, "BR": true,
}

// SoftLengthCap is the combined system+user length above which a warning is
// logged. Assembly still succeeds.
const SoftLengthCap = 50_000

// LLMConfig carries the per-phase generation parameters declared alongside
// the templates.
type LLMConfig struct {
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// llmConfigs are the declared per-phase generation parameters.
var llmConfigs = map[string]LLMConfig{
	PhaseCombined:            {Temperature: 0.1, MaxTokens: 6000},
	PhaseIntelligentFeedback: {Temperature: 0.7, MaxTokens: 4000},
	PhaseTrend:               {Temperature: 0.5, MaxTokens: 1500},
}

// validationRules name the post-response checks declared for each phase.
// They are returned in Config.ValidationRules; no code here applies them.
var validationRules = map[string][]string{
	PhaseCombined:            {"score_range_0_to_1", "required_rationale", "validity_range_0_to_1", "aspect_coverage"},
	PhaseIntelligentFeedback: {"backend_intelligence_required", "learner_feedback_required", "tone_appropriateness"},
	PhaseTrend:               {"trajectory_classification", "historical_analysis"},
}

// Config is a fully assembled prompt configuration ready for the gateway.
type Config struct {
	PhaseName       string         `json:"phase_name"`
	ActivityType    string         `json:"activity_type"`
	SystemPrompt    string         `json:"system_prompt"`
	UserPrompt      string         `json:"user_prompt"`
	OutputSchema    map[string]any `json:"output_schema"`
	LLMConfig       LLMConfig      `json:"llm_config"`
	ValidationRules []string       `json:"validation_rules"`
}

// Builder assembles prompts from the template registry. Stateless and
// thread-safe: all state comes from parameters.
type Builder struct {
	templates map[string]template
	schemas   map[string]func() map[string]any
}

// NewBuilder creates a Builder with the live template registry.
func NewBuilder() *Builder {
	return &Builder{
		templates: buildTemplates(),
		schemas:   outputSchemas(),
	}
}

// Build assembles the prompt configuration for one phase × activity-type
// combination. Missing required context variables fail fast.
func (b *Builder) Build(phase, activityType string, context map[string]any) (*Config, error) {
	if !validPhases[phase] {
		return nil, fmt.Errorf("invalid phase %q", phase)
	}
	if !validActivityTypes[activityType] {
		return nil, fmt.Errorf("invalid activity type %q", activityType)
	}

	key := activityType + "_" + phase
	tmpl, ok := b.templates[key]
	if !ok {
		return nil, fmt.Errorf("no template for configuration %q", key)
	}

	var missing []string
	for _, name := range tmpl.requiredVariables {
		if _, ok := context[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required context variables for %s: %s", key, strings.Join(missing, ", "))
	}

	systemPrompt := b.buildSystemPrompt(tmpl.systemComponents, activityType)
	userPrompt := substituteVariables(tmpl.userTemplate, context)

	if err := validateSubstitution(userPrompt, tmpl.requiredVariables); err != nil {
		return nil, err
	}
	if total := len(systemPrompt) + len(userPrompt); total > SoftLengthCap {
		slog.Warn("Assembled prompt exceeds soft length cap",
			"configuration", key, "length", total, "cap", SoftLengthCap)
	}

	var schema map[string]any
	if schemaFn, ok := b.schemas[phase]; ok {
		schema = schemaFn()
	}

	return &Config{
		PhaseName:       phase,
		ActivityType:    activityType,
		SystemPrompt:    systemPrompt,
		UserPrompt:      userPrompt,
		OutputSchema:    schema,
		LLMConfig:       llmConfigs[phase],
		ValidationRules: validationRules[phase],
	}, nil
}

// Configurations lists the registered phase × activity-type keys.
func (b *Builder) Configurations() []string {
	keys := make([]string, 0, len(b.templates))
	for key := range b.templates {
		keys = append(keys, key)
	}
	return keys
}

// buildSystemPrompt concatenates the ordered components, skipping blanks.
func (b *Builder) buildSystemPrompt(components []string, activityType string) string {
	var parts []string
	for _, comp := range components {
		var content string
		if kind, ok := strings.CutPrefix(comp, "type:"); ok {
			content = typeSpecific(activityType, kind)
		} else {
			content = resolveComponent(comp)
		}
		if content != "" {
			parts = append(parts, content)
		}
	}
	return strings.Join(parts, "\n\n")
}

func resolveComponent(key string) string {
	switch key {
	case compSystemRole:
		return systemRole
	case compEvaluationPhilosophy:
		return evaluationPhilosophy
	case compDomainFocus:
		return domainFocus
	case compSingleSkillFocus:
		return singleSkillFocus
	case compCombinedDescription:
		return combinedDescription
	case compFeedbackDescription:
		return intelligentFeedbackDescription
	case compTrendDescription:
		return trendDescription
	case compCriticalGuidelines:
		return criticalGuidelines
	case compJSONFormatWarning:
		return jsonFormatWarning
	default:
		return ""
	}
}

// substituteVariables replaces {name} placeholders with context values.
// Strings are inserted verbatim — no value is trusted as safe Markdown.
// Non-string values serialize to pretty JSON.
func substituteVariables(tmpl string, context map[string]any) string {
	result := tmpl
	for name, value := range context {
		placeholder := "{" + name + "}"
		if !strings.Contains(result, placeholder) {
			continue
		}
		result = strings.ReplaceAll(result, placeholder, stringify(value))
	}
	return result
}

func stringify(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(data)
}

// validateSubstitution checks that no required placeholder survived
// substitution.
func validateSubstitution(userPrompt string, required []string) error {
	var leftover []string
	for _, name := range required {
		if strings.Contains(userPrompt, "{"+name+"}") {
			leftover = append(leftover, name)
		}
	}
	if len(leftover) > 0 {
		return fmt.Errorf("unsubstituted variables remain: %s", strings.Join(leftover, ", "))
	}
	return nil
}
