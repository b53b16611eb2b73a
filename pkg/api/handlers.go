package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/nsundt-ai/evaluator-v16/pkg/models"
	"github.com/nsundt-ai/evaluator-v16/pkg/version"
)

func versionString() string { return version.Full() }

// submitEvaluationHandler handles POST /api/v1/evaluations. The pipeline
// runs synchronously; the response is the full evaluation result.
func (s *Server) submitEvaluationHandler(c *echo.Context) error {
	var req SubmitEvaluationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.ActivityID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "activity_id is required")
	}
	if req.LearnerID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "learner_id is required")
	}

	result := s.orch.Evaluate(c.Request().Context(), &models.Submission{
		ActivityID:         req.ActivityID,
		LearnerID:          req.LearnerID,
		ActivityTranscript: req.ActivityTranscript,
	})
	return c.JSON(http.StatusOK, result)
}

// listActivitiesHandler handles GET /api/v1/activities, optionally filtered
// by type or skill_id.
func (s *Server) listActivitiesHandler(c *echo.Context) error {
	if activityType := c.QueryParam("type"); activityType != "" {
		specs, err := s.activities.ByType(activityType)
		if err != nil {
			return mapServiceError(err)
		}
		return c.JSON(http.StatusOK, specs)
	}
	if skillID := c.QueryParam("skill_id"); skillID != "" {
		specs, err := s.activities.BySkill(skillID)
		if err != nil {
			return mapServiceError(err)
		}
		return c.JSON(http.StatusOK, specs)
	}
	activities, err := s.activities.LoadAll(false)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, activities)
}

// learnerProgressHandler handles GET /api/v1/learners/:id/progress.
func (s *Server) learnerProgressHandler(c *echo.Context) error {
	learnerID := c.Param("id")

	learner, err := s.learners.Get(c.Request().Context(), learnerID)
	if err != nil {
		return mapServiceError(err)
	}
	summary, err := s.scorer.ProgressSummary(c.Request().Context(), learnerID)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, &ProgressResponse{
		Learner:  learner,
		Progress: summary,
	})
}

// learnerHistoryHandler handles GET /api/v1/learners/:id/history.
// skill_id is required; order is "chronological" (default) or "recent".
func (s *Server) learnerHistoryHandler(c *echo.Context) error {
	learnerID := c.Param("id")
	skillID := c.QueryParam("skill_id")
	if skillID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "skill_id query parameter is required")
	}

	order := c.QueryParam("order")
	if order == "" {
		order = "chronological"
	}

	var rows []models.ActivityHistoryRow
	var err error
	switch order {
	case "chronological":
		rows, err = s.history.Chronological(c.Request().Context(), learnerID, skillID)
	case "recent":
		rows, err = s.history.RecentFirst(c.Request().Context(), learnerID, skillID)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "order must be chronological or recent")
	}
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, &HistoryResponse{
		LearnerID: learnerID,
		SkillID:   skillID,
		Order:     order,
		Rows:      rows,
	})
}

// resetLearnerHandler handles POST /api/v1/learners/:id/reset: deletes the
// learner's history rows, skill progress, and activity records.
func (s *Server) resetLearnerHandler(c *echo.Context) error {
	learnerID := c.Param("id")

	if _, err := s.learners.Get(c.Request().Context(), learnerID); err != nil {
		return mapServiceError(err)
	}

	// Hold the learner's write lock so the reset never interleaves with an
	// in-flight submission.
	lock := s.scorer.LearnerLock(learnerID)
	lock.Lock()
	counts, err := s.history.ResetLearnerHistory(c.Request().Context(), learnerID)
	lock.Unlock()
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, &ResetResponse{
		LearnerID: learnerID,
		Deleted:   counts,
	})
}

// recalculateHandler handles POST /api/v1/scoring/recalculate: optionally
// updates the decay factor, then recomputes decay-adjusted evidence for
// every affected history row and re-derives skill progress.
func (s *Server) recalculateHandler(c *echo.Context) error {
	var req RecalculateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if req.DecayFactor != nil {
		if err := s.cfg.SetDecayFactor(*req.DecayFactor); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	stats, err := s.scorer.RecalculateAll(c.Request().Context(), req.LearnerID)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, &RecalculateResponse{
		DecayFactor: s.cfg.ScoringParams().DecayFactor,
		Stats:       stats,
	})
}
