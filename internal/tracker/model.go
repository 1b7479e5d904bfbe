// Package tracker owns the per-session baseline, daily food/water log and
// weight log on top of the kv persistence port.
package tracker

import (
	"time"

	"github.com/omarshanyour/nutrimind-backend/internal/nutrition"
	"github.com/omarshanyour/nutrimind-backend/internal/scores"
)

// DateLayout is the ISO day format used for every log key.
const DateLayout = "2006-01-02"

const (
	// MaxDays is how many daily log entries are retained.
	MaxDays = 7
	// MaxWeights is how many weight entries are retained.
	MaxWeights = 60
	// MaxWeightLbs bounds accepted weigh-ins.
	MaxWeightLbs = 9999.9
)

// Baseline is the user's saved profile. Only raw inputs are stored; targets
// are derived on read.
type Baseline struct {
	Name                string    `json:"name"`
	Role                string    `json:"role"`
	Sport               string    `json:"sport"`
	Position            string    `json:"position"`
	MainGoal            string    `json:"mainGoal"`
	GoalHorizon         string    `json:"goalHorizon"`
	BodyweightLbs       float64   `json:"bodyweight"`
	HeightCM            float64   `json:"height"`
	TrainingDaysPerWeek float64   `json:"trainingDaysPerWeek"`
	FoodBudget          string    `json:"foodBudget"`
	Constraints         string    `json:"constraints"`
	FavoriteFoods       string    `json:"favoriteFoods"`
	CulturalBackground  string    `json:"culturalBackground"`
	TimeWindows         string    `json:"timeWindows"`
	Injuries            string    `json:"injuries"`
	SavedAt             time.Time `json:"savedAt"`
}

// Targets derives the daily targets from the baseline.
func (b Baseline) Targets() nutrition.Targets {
	return nutrition.ComputeTargets(b.BodyweightLbs, b.TrainingDaysPerWeek)
}

// Meal is one logged food entry.
type Meal struct {
	Description string    `json:"description"`
	Kcal        float64   `json:"kcal"`
	ProteinG    float64   `json:"protein_g"`
	CarbsG      float64   `json:"carbs_g"`
	FatsG       float64   `json:"fats_g"`
	LoggedAt    time.Time `json:"logged_at"`
}

// Day accumulates everything logged on one date.
type Day struct {
	Date        string  `json:"date"`
	Kcal        float64 `json:"kcal"`
	ProteinG    float64 `json:"protein_g"`
	CarbsG      float64 `json:"carbs_g"`
	FatsG       float64 `json:"fats_g"`
	HydrationOz float64 `json:"hydration_oz"`
	Meals       []Meal  `json:"meals"`
}

// ScoreDay converts a log day into the score aggregator's input.
func (d Day) ScoreDay() scores.Day {
	return scores.Day{Date: d.Date, Kcal: d.Kcal, Protein: d.ProteinG, HydrationOz: d.HydrationOz}
}

// WeightEntry is one weigh-in.
type WeightEntry struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
}

// Summary is today's totals against the derived targets.
type Summary struct {
	Date            string            `json:"date"`
	Day             Day               `json:"day"`
	Targets         nutrition.Targets `json:"targets"`
	HydrationGoalOz int               `json:"hydration_goal_oz"`
	Zone            nutrition.Zone    `json:"zone"`
}
