package activity

import (
	"fmt"

	"github.com/nsundt-ai/evaluator-v16/pkg/models"
)

// requiredContentKeys maps each activity type to the content keys its
// type-specific sub-shape must carry.
var requiredContentKeys = map[string][]string{
	models.ActivityTypeCR:  {"prompt", "response_guidelines"},
	models.ActivityTypeCOD: {"problem_statement", "starter_code", "test_cases"},
	models.ActivityTypeRP:  {"scenario_context", "character_profile", "objectives"},
	models.ActivityTypeSR:  {"question", "options", "correct_answer"},
	models.ActivityTypeBR:  {"initial_scenario", "decision_points", "paths"},
}

var validCognitiveLevels = map[string]bool{"L1": true, "L2": true, "L3": true, "L4": true}
var validDepthLevels = map[string]bool{"D1": true, "D2": true, "D3": true, "D4": true}

// validateSpec checks one loaded activity against the common schema and its
// type-specific content shape.
func validateSpec(spec *models.ActivitySpec) error {
	if spec.ActivityID == "" {
		return fmt.Errorf("activity_id is required")
	}
	if !models.ValidActivityTypes[spec.ActivityType] {
		return fmt.Errorf("invalid activity_type %q", spec.ActivityType)
	}
	if spec.Title == "" {
		return fmt.Errorf("title is required")
	}
	if spec.Description == "" {
		return fmt.Errorf("description is required")
	}
	if spec.TargetSkill == "" {
		return fmt.Errorf("target_skill is required")
	}
	if spec.TargetEvidenceVolume <= 0 {
		return fmt.Errorf("target_evidence_volume must be positive, got %v", spec.TargetEvidenceVolume)
	}
	if !validCognitiveLevels[spec.CognitiveLevel] {
		return fmt.Errorf("invalid cognitive_level %q", spec.CognitiveLevel)
	}
	if !validDepthLevels[spec.DepthLevel] {
		return fmt.Errorf("invalid depth_level %q", spec.DepthLevel)
	}
	if spec.Content == nil {
		return fmt.Errorf("content object is required")
	}
	if spec.Metadata == nil {
		return fmt.Errorf("metadata object is required")
	}

	for _, key := range requiredContentKeys[spec.ActivityType] {
		if _, ok := spec.Content[key]; !ok {
			return fmt.Errorf("content missing required key %q for type %s", key, spec.ActivityType)
		}
	}

	if models.RubricRequiredTypes[spec.ActivityType] {
		if spec.Rubric == nil || len(spec.Rubric.Aspects) == 0 {
			return fmt.Errorf("rubric with aspects is required for type %s", spec.ActivityType)
		}
	}
	return nil
}
