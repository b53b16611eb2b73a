package pipeline

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/nsundt-ai/evaluator-v16/pkg/models"
)

// skillContext returns the cached prompt context for one skill.
func (o *Orchestrator) skillContext(skillID string) map[string]any {
	return getOrCompute(o.caches, o.caches.skillContexts, skillID, func() map[string]any {
		ctx := o.cfg.DomainModel().SkillContext(skillID)
		return map[string]any{
			"skill_id":      ctx.SkillID,
			"skill_name":    ctx.SkillName,
			"description":   ctx.Description,
			"competency_id": ctx.CompetencyID,
			"competency":    ctx.Competency,
			"subskills":     ctx.Subskills,
		}
	})
}

// prerequisiteRelationships returns the cached prerequisite graph slice for
// one skill.
func (o *Orchestrator) prerequisiteRelationships(skillID string) map[string]any {
	return getOrCompute(o.caches, o.caches.prerequisites, skillID, func() map[string]any {
		rel := o.cfg.DomainModel().PrerequisiteRelationships(skillID)
		return map[string]any{
			"skill_id":         rel.SkillID,
			"prerequisites":    rel.Prerequisites,
			"dependent_skills": rel.DependentOf,
		}
	})
}

// levelingFramework describes the cognitive and depth level scales fed to
// evaluation prompts.
func (o *Orchestrator) levelingFramework() map[string]any {
	o.caches.mu.RLock()
	cached := o.caches.levelingFramework
	o.caches.mu.RUnlock()
	if cached != nil {
		return cached
	}

	framework := map[string]any{
		"cognitive_levels": map[string]any{
			"L1": "Remember and understand: recall facts and explain concepts",
			"L2": "Apply: use procedures and concepts in familiar situations",
			"L3": "Analyze and evaluate: decompose problems and judge approaches",
			"L4": "Create: synthesize novel solutions from component skills",
		},
		"depth_levels": map[string]any{
			"D1": "Surface: isolated facts and single-step procedures",
			"D2": "Working: connected concepts applied with support",
			"D3": "Deep: independent application across contexts",
			"D4": "Transfer: adaptation to unfamiliar domains",
		},
	}
	o.caches.mu.Lock()
	o.caches.levelingFramework = framework
	o.caches.mu.Unlock()
	return framework
}

// responseAnalysis derives surface characteristics of the learner's
// response text for the combined evaluation prompt.
func responseAnalysis(transcript *models.ActivityTranscript) map[string]any {
	var sb strings.Builder
	if transcript != nil && transcript.StudentEngagement != nil {
		for _, resp := range transcript.StudentEngagement.ComponentResponses {
			sb.WriteString(resp.ResponseContent)
			sb.WriteString("\n")
		}
	}
	text := sb.String()
	wordCount := len(strings.Fields(text))

	hasCode := false
	for _, marker := range []string{"def ", "function", "class ", "{", "}", ";"} {
		if strings.Contains(text, marker) {
			hasCode = true
			break
		}
	}

	lengthCategory := "short"
	switch {
	case len(text) >= 500:
		lengthCategory = "long"
	case len(text) >= 100:
		lengthCategory = "medium"
	}

	return map[string]any{
		"word_count":               wordCount,
		"character_count":          len(text),
		"paragraph_count":          strings.Count(text, "\n\n") + 1,
		"has_code":                 hasCode,
		"response_length_category": lengthCategory,
	}
}

// assistanceLog extracts the assistance entries from the transcript.
func assistanceLog(transcript *models.ActivityTranscript) []map[string]any {
	if transcript == nil || transcript.StudentEngagement == nil || transcript.StudentEngagement.AssistanceLog == nil {
		return []map[string]any{}
	}
	return transcript.StudentEngagement.AssistanceLog
}

// motivationalContext derives feedback-tone guidance from the learner
// profile.
func motivationalContext(learner *models.LearnerProfile) map[string]any {
	experience := learner.ExperienceLevel
	if experience == "" {
		experience = "beginner"
	}

	approach := "balanced_encouragement"
	guidance := "Use balanced language that acknowledges effort and provides clear next steps"
	if experience == "advanced" {
		approach = "encouraging_achievement"
		guidance = "Use encouraging language that celebrates progress while challenging to higher levels"
	} else if experience == "beginner" {
		approach = "supportive_guidance"
		guidance = "Use supportive language that builds confidence and focuses on small wins"
	}

	return map[string]any{
		"experience_level":  experience,
		"background":        learner.Background,
		"approach":          approach,
		"language_guidance": guidance,
	}
}

// performanceContext classifies the primary skill's cumulative score for
// the feedback prompt.
func performanceContext(result *models.ScoringResult) map[string]any {
	if result == nil || len(result.SkillScores) == 0 {
		return map[string]any{"level": "no_data", "description": "No scoring data available"}
	}

	// Deterministic primary skill: lowest skill id.
	ids := make([]string, 0, len(result.SkillScores))
	for id := range result.SkillScores {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	primary := result.SkillScores[ids[0]]

	level, description := "emerging", "Emerging performance requiring support"
	switch {
	case primary.CumulativeScore >= 0.8:
		level, description = "high", "Strong performance demonstrating mastery"
	case primary.CumulativeScore >= 0.6:
		level, description = "moderate", "Good performance with room for growth"
	case primary.CumulativeScore >= 0.4:
		level, description = "developing", "Developing performance showing progress"
	}

	return map[string]any{
		"level":       level,
		"description": description,
		"score":       primary.CumulativeScore,
		"gate_status": primary.OverallStatus,
	}
}

// temporalContext summarizes submission timing for a learner, cached per
// (learner, row_count).
func (o *Orchestrator) temporalContext(ctx context.Context, learnerID string, rowCount int) map[string]any {
	key := learnerCacheKey(learnerID, rowCount)
	return getOrCompute(o.caches, o.caches.temporalContext, key, func() map[string]any {
		records, err := o.records.ListByLearner(ctx, learnerID, 0)
		if err != nil || len(records) == 0 {
			return map[string]any{
				"activity_count":     0,
				"time_span_days":     0,
				"recent_activity":    false,
				"activity_frequency": "none",
			}
		}

		// Records are newest-first.
		latest, _ := time.Parse(time.RFC3339, records[0].Timestamp)
		earliest, _ := time.Parse(time.RFC3339, records[len(records)-1].Timestamp)
		span := 0
		if !latest.IsZero() && !earliest.IsZero() {
			span = int(latest.Sub(earliest).Hours() / 24)
		}

		frequency := "high"
		switch {
		case len(records) <= 3:
			frequency = "low"
		case len(records) <= 10:
			frequency = "moderate"
		}

		recent := !latest.IsZero() && time.Since(latest) <= 7*24*time.Hour

		return map[string]any{
			"activity_count":     len(records),
			"time_span_days":     span,
			"recent_activity":    recent,
			"activity_frequency": frequency,
		}
	})
}

// historicalSummary builds the compact history digest phases receive:
// activity count, date range, average score, trend direction, consistency,
// the last five activities, and the activity-type distribution. Cached per
// (learner, row_count).
func (o *Orchestrator) historicalSummary(ctx context.Context, learnerID string, rowCount int) map[string]any {
	key := learnerCacheKey(learnerID, rowCount)
	return getOrCompute(o.caches, o.caches.historicalData, key, func() map[string]any {
		return o.computeHistoricalSummary(ctx, learnerID)
	})
}

func (o *Orchestrator) computeHistoricalSummary(ctx context.Context, learnerID string) map[string]any {
	empty := map[string]any{
		"activity_count":             0,
		"date_range":                 map[string]any{"earliest": nil, "latest": nil},
		"performance_summary":        map[string]any{"average_score": 0.0, "trend_direction": "stable", "consistency": "unknown"},
		"recent_trends":              []any{},
		"activity_type_distribution": map[string]int{},
	}

	skills, err := o.history.SkillIDs(ctx, learnerID)
	if err != nil || len(skills) == 0 {
		return empty
	}

	var rows []models.ActivityHistoryRow
	for _, skillID := range skills {
		skillRows, err := o.history.Chronological(ctx, learnerID, skillID)
		if err != nil {
			continue
		}
		rows = append(rows, skillRows...)
	}
	if len(rows) == 0 {
		return empty
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CompletionTimestamp != rows[j].CompletionTimestamp {
			return rows[i].CompletionTimestamp < rows[j].CompletionTimestamp
		}
		return rows[i].ID < rows[j].ID
	})

	scores := make([]float64, len(rows))
	typeCounts := make(map[string]int)
	for i, row := range rows {
		scores[i] = row.CumulativePerformance
		typeCounts[row.ActivityType]++
	}

	var sum float64
	for _, s := range scores {
		sum += s
	}
	avg := sum / float64(len(scores))

	trend := "stable"
	if len(scores) >= 2 {
		recent := scores
		if len(recent) > 3 {
			recent = recent[len(recent)-3:]
		}
		if recent[len(recent)-1] > recent[0] {
			trend = "improving"
		} else if recent[len(recent)-1] < recent[0] {
			trend = "declining"
		}
	}

	consistency := "unknown"
	if len(scores) >= 2 {
		var variance float64
		for _, s := range scores {
			variance += (s - avg) * (s - avg)
		}
		stdDev := math.Sqrt(variance / float64(len(scores)))
		switch {
		case stdDev < 0.1:
			consistency = "high"
		case stdDev < 0.2:
			consistency = "moderate"
		default:
			consistency = "low"
		}
	}

	recentRows := rows
	if len(recentRows) > 5 {
		recentRows = recentRows[len(recentRows)-5:]
	}
	recentTrends := make([]any, 0, len(recentRows))
	for _, row := range recentRows {
		recentTrends = append(recentTrends, map[string]any{
			"activity_id": row.ActivityID,
			"skill_id":    row.SkillID,
			"score":       row.CumulativePerformance,
			"timestamp":   row.CompletionTimestamp,
		})
	}

	return map[string]any{
		"activity_count": len(rows),
		"date_range": map[string]any{
			"earliest": rows[0].CompletionTimestamp,
			"latest":   rows[len(rows)-1].CompletionTimestamp,
		},
		"performance_summary": map[string]any{
			"average_score":    math.Round(avg*1000) / 1000,
			"trend_direction":  trend,
			"consistency":      consistency,
			"total_activities": len(rows),
		},
		"recent_trends":              recentTrends,
		"activity_type_distribution": typeCounts,
	}
}
