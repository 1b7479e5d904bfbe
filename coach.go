package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/omarshanyour/nutrimind-backend/internal/coach"
	"github.com/omarshanyour/nutrimind-backend/internal/tracker"

	log "github.com/sirupsen/logrus"
)

const (
	msgMissingMessage = "Missing 'message' (string) in request body."
	msgAskSomething   = "Ask me something about training, food, or recovery."
	msgQuickCrashed   = "NutriMind lost its train of thought. Try again, I'll be ready."
)

/* ─── Request types ──────────────────────────────────────────────────── */

// coachChatRequest is the request body for POST /api.
// baseline and last7Days (or its alias history) are optional; when absent the
// session's saved baseline and log are used.
type coachChatRequest struct {
	Message   *string         `json:"message"`
	Baseline  json.RawMessage `json:"baseline"`
	Last7Days json.RawMessage `json:"last7Days"`
	History   json.RawMessage `json:"history"`
}

// quickCoachRequest is the request body for POST /coach/api.
type quickCoachRequest struct {
	Message  string `json:"message"`
	Baseline any    `json:"baseline"`
	Today    any    `json:"today"`
	History  any    `json:"history"`
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// coachChat handles POST /api.
// Runs one turn of the session's coaching conversation and returns {ok, reply}.
func (h *Handler) coachChat(c *gin.Context) {
	if h.coach == nil {
		log.Error("[coach] chat requested but no AI credential is configured")
		apiError(c, http.StatusInternalServerError, msgMisconfigured)
		return
	}

	var req coachChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == nil {
		apiError(c, http.StatusBadRequest, msgMissingMessage)
		return
	}

	owner := sessionID(c)
	ctx := c.Request.Context()

	profile := decodeProfile(req.Baseline)
	if profile == nil {
		b, found, err := h.tracker.Baseline(ctx, owner)
		if err != nil {
			log.Errorf("[coach] load baseline: %s", err)
		} else if found {
			profile = profileFromBaseline(b)
		}
	}

	recent := decodeDaySummaries(req.Last7Days)
	if recent == nil {
		recent = decodeDaySummaries(req.History)
	}
	if recent == nil {
		history, err := h.tracker.History(ctx, owner)
		if err != nil {
			log.Errorf("[coach] load history: %s", err)
		}
		recent = summariesFromHistory(history)
	}

	start := time.Now()
	reply, err := h.coach.Reply(ctx, owner, *req.Message, profile, recent)
	if errors.Is(err, coach.ErrEmptyMessage) {
		apiError(c, http.StatusBadRequest, msgMissingMessage)
		return
	}
	h.observeLLM("chat", start, err)
	if err != nil {
		log.Errorf("[coach] session %s: %s", owner, err)
		apiError(c, http.StatusBadGateway, msgServerError)
		return
	}

	apiOK(c, gin.H{"reply": reply})
}

// quickCoachHealth handles GET /coach/api.
func (h *Handler) quickCoachHealth(c *gin.Context) {
	apiOK(c, gin.H{"message": "Coach API alive"})
}

// quickCoach handles POST /coach/api.
// Single-turn coaching without session memory; replies as {ok, message}.
func (h *Handler) quickCoach(c *gin.Context) {
	if h.coach == nil {
		apiError(c, http.StatusInternalServerError, msgMisconfigured)
		return
	}

	var req quickCoachRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		apiError(c, http.StatusBadRequest, msgAskSomething)
		return
	}

	qc := coach.QuickContext{Baseline: req.Baseline, Today: req.Today}
	if _, ok := req.History.([]any); ok {
		qc.Last7Days = req.History
	}
	h.fillQuickContext(c, &qc)

	start := time.Now()
	reply, err := h.coach.Quick(c.Request.Context(), req.Message, qc)
	h.observeLLM("quick_coach", start, err)
	if err != nil {
		log.Errorf("[quick-coach] %s", err)
		apiError(c, http.StatusBadGateway, msgQuickCrashed)
		return
	}

	apiOK(c, gin.H{"message": reply})
}

// fillQuickContext supplies whatever the client left out from the
// session's saved records.
func (h *Handler) fillQuickContext(c *gin.Context, qc *coach.QuickContext) {
	if qc.Baseline != nil && qc.Today != nil && qc.Last7Days != nil {
		return
	}
	owner := sessionID(c)
	ctx := c.Request.Context()

	if qc.Baseline == nil {
		if b, found, err := h.tracker.Baseline(ctx, owner); err == nil && found {
			qc.Baseline = b
		}
	}
	if qc.Today == nil || qc.Last7Days == nil {
		summary, history, err := h.tracker.TodaySummary(ctx, owner)
		if err != nil {
			log.Errorf("[quick-coach] load log: %s", err)
			return
		}
		if qc.Today == nil {
			qc.Today = summary
		}
		if qc.Last7Days == nil {
			qc.Last7Days = history
		}
	}
}

/* ─── Context mapping ────────────────────────────────────────────────── */

// decodeProfile reads a client supplied baseline. Anything that does not
// decode as an object is ignored.
func decodeProfile(raw json.RawMessage) *coach.Profile {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var p coach.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Debugf("[coach] ignoring baseline from request: %s", err)
		return nil
	}
	return &p
}

func decodeDaySummaries(raw json.RawMessage) []coach.DaySummary {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var days []coach.DaySummary
	if err := json.Unmarshal(raw, &days); err != nil {
		log.Debugf("[coach] ignoring log days from request: %s", err)
		return nil
	}
	return days
}

func profileFromBaseline(b tracker.Baseline) *coach.Profile {
	t := b.Targets()
	return &coach.Profile{
		Name:                b.Name,
		Role:                b.Role,
		Sport:               b.Sport,
		Position:            b.Position,
		MainGoal:            b.MainGoal,
		BodyweightLbs:       b.BodyweightLbs,
		HeightCM:            b.HeightCM,
		TrainingDaysPerWeek: b.TrainingDaysPerWeek,
		FoodBudget:          b.FoodBudget,
		Constraints:         b.Constraints,
		CalorieTarget:       t.CalorieTarget,
		ProteinLow:          t.ProteinLow,
		ProteinHigh:         t.ProteinHigh,
	}
}

func summariesFromHistory(history []tracker.Day) []coach.DaySummary {
	out := make([]coach.DaySummary, 0, len(history))
	for _, d := range history {
		out = append(out, coach.DaySummary{Label: d.Date, Kcal: d.Kcal, Protein: d.ProteinG})
	}
	return out
}
