package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/omarshanyour/nutrimind-backend/internal/scores"

	log "github.com/sirupsen/logrus"
)

// getDashboard returns the readiness scores, weekly fuel trend, today's rings
// and the weight log in one payload.
// GET /api/dashboard.
func (h *Handler) getDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	owner := sessionID(c)

	summary, history, err := h.tracker.TodaySummary(ctx, owner)
	if err != nil {
		log.Errorf("[dashboard] load log: %s", err)
		apiError(c, http.StatusInternalServerError, msgServerError)
		return
	}
	weights, err := h.tracker.Weights(ctx, owner)
	if err != nil {
		log.Errorf("[dashboard] load weights: %s", err)
		apiError(c, http.StatusInternalServerError, msgServerError)
		return
	}

	days := make([]scores.Day, 0, len(history))
	for _, d := range history {
		days = append(days, d.ScoreDay())
	}
	calorieTarget := float64(summary.Targets.CalorieTarget)
	s := scores.Compute(days, summary.Date, calorieTarget, float64(summary.Targets.ProteinTarget))

	c.JSON(http.StatusOK, dashboardResponse{
		OK:            true,
		Scores:        s,
		Descriptions:  scores.Describe(s),
		Trend:         scores.WeeklyTrend(days, calorieTarget),
		Today:         summary,
		Rings:         todayRings(summary),
		Weights:       weights,
		NeedsBaseline: summary.Targets.CalorieTarget == 0,
	})
}
