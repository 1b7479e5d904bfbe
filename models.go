package main

import (
	"math"

	"github.com/omarshanyour/nutrimind-backend/internal/nutrition"
	"github.com/omarshanyour/nutrimind-backend/internal/scores"
	"github.com/omarshanyour/nutrimind-backend/internal/tracker"
)

/* ─── Request types ──────────────────────────────────────────────────── */

// logMealRequest is the request body for POST /api/log/meal. Date defaults to today.
type logMealRequest struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Kcal        float64 `json:"kcal"`
	ProteinG    float64 `json:"protein_g"`
	CarbsG      float64 `json:"carbs_g"`
	FatsG       float64 `json:"fats_g"`
}

// logWaterRequest is the request body for POST /api/log/water. Text wins over Oz
// when both are sent.
type logWaterRequest struct {
	Date string  `json:"date"`
	Text string  `json:"text"`
	Oz   float64 `json:"oz"`
}

// logWeightRequest is the request body for POST /api/weight.
type logWeightRequest struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
}

/* ─── Response types ─────────────────────────────────────────────────── */

// rings are today's progress percentages, rounded. They are not capped.
type rings struct {
	KcalPct      int `json:"kcal_pct"`
	ProteinPct   int `json:"protein_pct"`
	HydrationPct int `json:"hydration_pct"`
}

// dashboardResponse is the payload of GET /api/dashboard.
type dashboardResponse struct {
	OK            bool                  `json:"ok"`
	Scores        scores.Scores         `json:"scores"`
	Descriptions  map[string]string     `json:"descriptions"`
	Trend         scores.Trend          `json:"trend"`
	Today         tracker.Summary       `json:"today"`
	Rings         rings                 `json:"rings"`
	Weights       []tracker.WeightEntry `json:"weights"`
	NeedsBaseline bool                  `json:"needs_baseline"`
}

func todayRings(s tracker.Summary) rings {
	return rings{
		KcalPct:      percentOf(s.Day.Kcal, float64(s.Targets.CalorieTarget)),
		ProteinPct:   percentOf(s.Day.ProteinG, float64(s.Targets.ProteinTarget)),
		HydrationPct: percentOf(s.Day.HydrationOz, float64(nutrition.HydrationGoal(s.Targets))),
	}
}

// percentOf returns round(v/target*100), or 0 without a target.
func percentOf(v, target float64) int {
	if target <= 0 {
		return 0
	}
	return int(math.Round(v * 100 / target))
}
