package scoring

import (
	"sort"

	"github.com/nsundt-ai/evaluator-v16/pkg/models"
)

// DefaultSkillID is assigned when an evaluation payload names no skill.
const DefaultSkillID = "S009"

// SkillData is the per-skill numeric extract from an evaluation payload.
type SkillData struct {
	SkillID          string
	Timestamp        string
	PerformanceScore float64
	TargetEvidence   float64
	ValidityModifier float64
}

// Evidence converts the extract to the algorithm's input shape.
func (d SkillData) Evidence() ActivityEvidence {
	return ActivityEvidence{
		Score:          d.PerformanceScore,
		TargetEvidence: d.TargetEvidence,
		Validity:       d.ValidityModifier,
	}
}

// ExtractTargetSkills resolves the set of skills an evaluation payload
// targets, de-duplicated preserving first-seen order:
//  1. legacy phase_1a_rubric_evaluation.skill_evaluations keys,
//  2. activity_generation_output.skills_targeted then .target_skill,
//  3. top-level target_skill,
//  4. the default skill id.
func ExtractTargetSkills(evaluation map[string]any) []string {
	var ids []string

	if results := getMap(evaluation, "evaluation_results"); results != nil {
		if rubric := getMap(results, "phase_1a_rubric_evaluation"); rubric != nil {
			if evals := getMap(rubric, "skill_evaluations"); len(evals) > 0 {
				keys := make([]string, 0, len(evals))
				for k := range evals {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				ids = append(ids, keys...)
			}
		}
	}

	if spec := getMap(evaluation, "activity_generation_output"); spec != nil {
		if targeted, ok := spec["skills_targeted"].([]any); ok {
			for _, v := range targeted {
				if s, ok := v.(string); ok && s != "" {
					ids = append(ids, s)
				}
			}
		}
		ids = appendSkillRef(ids, spec["target_skill"])
	}

	ids = appendSkillRef(ids, evaluation["target_skill"])

	if len(ids) == 0 {
		return []string{DefaultSkillID}
	}
	return dedupe(ids)
}

// appendSkillRef handles both string skill ids and {skill_id: ...} objects.
func appendSkillRef(ids []string, ref any) []string {
	switch v := ref.(type) {
	case string:
		if v != "" {
			ids = append(ids, v)
		}
	case map[string]any:
		if id, ok := v["skill_id"].(string); ok && id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// ExtractSkillData pulls the three scoring numbers for one skill with this
// precedence: the combined-evaluation payload, the legacy split phases, the
// pipeline_phases entries, and finally zeros (score 0, validity 1, target 0)
// with a root-level target_evidence_volume override. A missing target is
// never substituted with a constant — activity validation prevents it
// upstream.
func ExtractSkillData(evaluation map[string]any, skillID string) SkillData {
	data := SkillData{
		SkillID:          skillID,
		Timestamp:        getString(evaluation, "timestamp"),
		PerformanceScore: 0.0,
		TargetEvidence:   0.0,
		ValidityModifier: 1.0,
	}
	if data.Timestamp == "" {
		data.Timestamp = models.NowUTC()
	}

	if results := getMap(evaluation, "evaluation_results"); results != nil {
		if combined := getMap(results, "phase_1_combined_evaluation"); combined != nil {
			if score, ok := getFloat(combined, "overall_score"); ok {
				data.PerformanceScore = score
			}
			if validity, ok := getFloat(combined, "validity_modifier"); ok {
				data.ValidityModifier = validity
			}
			if target, ok := getFloat(combined, "target_evidence_volume"); ok {
				data.TargetEvidence = target
			}
		} else {
			if rubric := getMap(results, "phase_1a_rubric_evaluation"); rubric != nil {
				if evals := getMap(rubric, "skill_evaluations"); evals != nil {
					if skillEval := getMap(evals, skillID); skillEval != nil {
						if score, ok := getFloat(skillEval, "numeric_score"); ok {
							data.PerformanceScore = score
						}
						if target, ok := getFloat(skillEval, "target_evidence"); ok {
							data.TargetEvidence = target
						}
					}
				}
			}
			if validity := getMap(results, "phase_1b_validity_analysis"); validity != nil {
				if mod, ok := getFloat(validity, "validity_modifier"); ok {
					data.ValidityModifier = mod
				}
			}
		}
	} else if phases, ok := evaluation["pipeline_phases"].([]any); ok {
		extractFromPipelinePhases(phases, &data)
	}

	// Overall-score fallbacks when the targeted extraction found nothing.
	if data.PerformanceScore == 0 {
		if results := getMap(evaluation, "evaluation_results"); results != nil {
			if rubric := getMap(results, "phase_1a_rubric_evaluation"); rubric != nil {
				if score, ok := getFloat(rubric, "overall_score"); ok {
					data.PerformanceScore = score
				}
				if data.TargetEvidence == 0 {
					if target, ok := getFloat(rubric, "target_evidence_volume"); ok {
						data.TargetEvidence = target
					}
				}
			}
		}
	}

	// Root-level target override.
	if data.TargetEvidence == 0 {
		if target, ok := getFloat(evaluation, "target_evidence_volume"); ok {
			data.TargetEvidence = target
		}
	}

	return data
}

// extractFromPipelinePhases searches phase results for combined_evaluation
// first, then scoring.
func extractFromPipelinePhases(phases []any, data *SkillData) {
	for _, raw := range phases {
		phase, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if getString(phase, "phase") != models.PhaseCombinedEvaluation || !getBool(phase, "success") {
			continue
		}
		if result := getMap(phase, "result"); result != nil {
			if score, ok := getFloat(result, "overall_score"); ok {
				data.PerformanceScore = score
			}
			if validity, ok := getFloat(result, "validity_modifier"); ok {
				data.ValidityModifier = validity
			}
			if target, ok := getFloat(result, "target_evidence_volume"); ok {
				data.TargetEvidence = target
			}
		}
		return
	}

	for _, raw := range phases {
		phase, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if getString(phase, "phase") != models.PhaseScoring || !getBool(phase, "success") {
			continue
		}
		if result := getMap(phase, "result"); result != nil {
			if score, ok := getFloat(result, "activity_score"); ok {
				data.PerformanceScore = score
			}
			if validity, ok := getFloat(result, "validity_modifier"); ok {
				data.ValidityModifier = validity
			}
			if target, ok := getFloat(result, "target_evidence_volume"); ok {
				data.TargetEvidence = target
			}
		}
		return
	}
}

// Map navigation helpers for the dynamic evaluation payloads.

func getMap(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	v, _ := m[key].(map[string]any)
	return v
}

func getString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	v, _ := m[key].(string)
	return v
}

func getBool(m map[string]any, key string) bool {
	if m == nil {
		return false
	}
	v, _ := m[key].(bool)
	return v
}

func getFloat(m map[string]any, key string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	switch v := m[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
