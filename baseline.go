package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/omarshanyour/nutrimind-backend/internal/nutrition"
	"github.com/omarshanyour/nutrimind-backend/internal/tracker"

	log "github.com/sirupsen/logrus"
)

// baselinePayload is the baseline plus everything derived from it. Targets are
// recomputed on every read and never stored.
func baselinePayload(b *tracker.Baseline) gin.H {
	var targets nutrition.Targets
	if b != nil {
		targets = b.Targets()
	}
	return gin.H{
		"baseline":          b,
		"targets":           targets,
		"hydration_goal_oz": nutrition.HydrationGoal(targets),
	}
}

// getBaseline returns the session's saved baseline and its derived targets.
// "baseline" is null until one has been saved.
// GET /api/baseline.
func (h *Handler) getBaseline(c *gin.Context) {
	b, found, err := h.tracker.Baseline(c.Request.Context(), sessionID(c))
	if err != nil {
		log.Errorf("[baseline] load: %s", err)
		apiError(c, http.StatusInternalServerError, msgServerError)
		return
	}
	if !found {
		apiOK(c, baselinePayload(nil))
		return
	}
	apiOK(c, baselinePayload(&b))
}

// putBaseline replaces the session's baseline snapshot.
// PUT /api/baseline. Negative or non-numeric body stats are stored as 0.
func (h *Handler) putBaseline(c *gin.Context) {
	var body tracker.Baseline
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	saved, err := h.tracker.SaveBaseline(c.Request.Context(), sessionID(c), body)
	if err != nil {
		log.Errorf("[baseline] save: %s", err)
		apiError(c, http.StatusInternalServerError, msgServerError)
		return
	}
	apiOK(c, baselinePayload(&saved))
}
