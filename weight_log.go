package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/omarshanyour/nutrimind-backend/internal/tracker"

	log "github.com/sirupsen/logrus"
)

// getWeightLog returns the session's weight entries, ascending by date.
// GET /api/weight?start=YYYY-MM-DD&end=YYYY-MM-DD. The range is optional but
// start and end must come together.
func (h *Handler) getWeightLog(c *gin.Context) {
	start := c.Query("start")
	end := c.Query("end")

	if (start == "") != (end == "") {
		apiError(c, http.StatusBadRequest, "start and end query params must be sent together")
		return
	}
	if start != "" {
		if _, err := h.tracker.ResolveDate(start); err != nil {
			apiError(c, http.StatusBadRequest, "invalid start, expected YYYY-MM-DD")
			return
		}
		if _, err := h.tracker.ResolveDate(end); err != nil {
			apiError(c, http.StatusBadRequest, "invalid end, expected YYYY-MM-DD")
			return
		}
		if start > end {
			apiError(c, http.StatusBadRequest, "start must not be after end")
			return
		}
	}

	entries, err := h.tracker.Weights(c.Request.Context(), sessionID(c))
	if err != nil {
		log.Errorf("[weight] load: %s", err)
		apiError(c, http.StatusInternalServerError, msgServerError)
		return
	}
	if start != "" {
		entries = weightsInRange(entries, start, end)
	}

	apiOK(c, gin.H{"entries": entries})
}

// logWeight records a weigh-in. Posting the same date again overwrites it.
// POST /api/weight. Body: { "date"?: "YYYY-MM-DD", "weight": 185.5 }.
func (h *Handler) logWeight(c *gin.Context) {
	var body logWeightRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	entries, err := h.tracker.LogWeight(c.Request.Context(), sessionID(c), body.Date, body.Weight)
	if err != nil {
		h.logMutationError(c, "weight", err)
		return
	}
	apiOK(c, gin.H{"entries": entries})
}

func weightsInRange(entries []tracker.WeightEntry, start, end string) []tracker.WeightEntry {
	out := []tracker.WeightEntry{}
	for _, e := range entries {
		if e.Date >= start && e.Date <= end {
			out = append(out, e)
		}
	}
	return out
}
