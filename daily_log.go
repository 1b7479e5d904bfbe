package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/omarshanyour/nutrimind-backend/internal/tracker"
	"github.com/omarshanyour/nutrimind-backend/internal/water"

	log "github.com/sirupsen/logrus"
)

const msgNoWaterAmount = "Couldn't find an amount. Try something like '2 cups' or '16 oz'."

// getDailyLog returns the retained 7-day history plus today's summary.
// GET /api/log.
func (h *Handler) getDailyLog(c *gin.Context) {
	summary, history, err := h.tracker.TodaySummary(c.Request.Context(), sessionID(c))
	if err != nil {
		log.Errorf("[log] load: %s", err)
		apiError(c, http.StatusInternalServerError, msgServerError)
		return
	}
	apiOK(c, gin.H{"today": summary, "history": history})
}

// logMeal adds a meal to a day's totals.
// POST /api/log/meal. Body: { "date"?: "YYYY-MM-DD", "description", "kcal", "protein_g", "carbs_g", "fats_g" }.
func (h *Handler) logMeal(c *gin.Context) {
	var body logMealRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	day, history, err := h.tracker.AddMeal(c.Request.Context(), sessionID(c), body.Date, tracker.Meal{
		Description: body.Description,
		Kcal:        body.Kcal,
		ProteinG:    body.ProteinG,
		CarbsG:      body.CarbsG,
		FatsG:       body.FatsG,
	})
	if err != nil {
		h.logMutationError(c, "meal", err)
		return
	}
	apiOK(c, gin.H{"day": day, "history": history})
}

// logWater adds hydration to a day.
// POST /api/log/water. Body: { "date"?, "text": "2 cups" } or { "date"?, "oz": 16 }.
// Text that holds no usable amount is rejected and nothing is recorded.
func (h *Handler) logWater(c *gin.Context) {
	var body logWaterRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	oz := body.Oz
	if body.Text != "" {
		parsed, err := water.ParseOunces(body.Text)
		if err != nil || parsed <= 0 {
			apiError(c, http.StatusBadRequest, msgNoWaterAmount)
			return
		}
		oz = float64(parsed)
	}
	if oz <= 0 {
		apiError(c, http.StatusBadRequest, msgNoWaterAmount)
		return
	}

	day, history, err := h.tracker.AddWater(c.Request.Context(), sessionID(c), body.Date, oz)
	if err != nil {
		h.logMutationError(c, "water", err)
		return
	}
	apiOK(c, gin.H{"added_oz": oz, "day": day, "history": history})
}

// logMutationError maps tracker validation errors to 400 and everything else to 500.
func (h *Handler) logMutationError(c *gin.Context, tag string, err error) {
	switch {
	case errors.Is(err, tracker.ErrInvalidDate), errors.Is(err, tracker.ErrDateOutOfRange),
		errors.Is(err, tracker.ErrInvalidAmount), errors.Is(err, tracker.ErrInvalidWeight):
		apiError(c, http.StatusBadRequest, err.Error())
	default:
		log.Errorf("[log] %s: %s", tag, err)
		apiError(c, http.StatusInternalServerError, msgServerError)
	}
}
