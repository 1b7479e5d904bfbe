// Package nutrition derives daily intake targets from a user's baseline.
package nutrition

import "math"

// Calorie multipliers applied to the bodyweight-based maintenance estimate.
const (
	caloriesPerLb     = 14.0
	heavyTrainingMult = 1.1 // 5+ training days
	lightTrainingMult = 0.9 // 1-2 training days

	proteinLowPerLb  = 0.7
	proteinHighPerLb = 1.0
	hydrationPerLb   = 0.5

	// DefaultHydrationOz is the hydration goal shown when bodyweight is unknown.
	DefaultHydrationOz = 80
)

// Targets holds the derived daily targets. Targets are never stored; they are
// recomputed from the baseline on every read.
type Targets struct {
	ProteinLow        int `json:"protein_low"`
	ProteinHigh       int `json:"protein_high"`
	ProteinTarget     int `json:"protein_target"`
	CalorieTarget     int `json:"calorie_target"`
	HydrationTargetOz int `json:"hydration_target_oz"`
}

// ComputeTargets derives protein, calorie and hydration targets from bodyweight
// (lb) and training days per week. Negative, NaN and infinite inputs are treated
// as 0; a non-positive bodyweight yields all-zero targets.
//
// Calories use 14 kcal/lb, scaled by 1.1 for 5+ training days and by 0.9 for
// 1-2 days. Zero or missing training days take the neutral 1.0 branch.
func ComputeTargets(bodyweightLbs, trainingDays float64) Targets {
	bw := sanitize(bodyweightLbs)
	days := sanitize(trainingDays)
	if bw <= 0 {
		return Targets{}
	}

	base := bw * caloriesPerLb
	mult := 1.0
	switch {
	case days >= 5:
		mult = heavyTrainingMult
	case days > 0 && days <= 2:
		mult = lightTrainingMult
	}

	t := Targets{
		ProteinLow:        round(bw * proteinLowPerLb),
		ProteinHigh:       round(bw * proteinHighPerLb),
		CalorieTarget:     round(base * mult),
		HydrationTargetOz: round(bw * hydrationPerLb),
	}
	t.ProteinTarget = ProteinMidpoint(t.ProteinLow, t.ProteinHigh)
	return t
}

// ProteinMidpoint returns round((low+high)/2), or 0 unless both ends are positive.
func ProteinMidpoint(low, high int) int {
	if low <= 0 || high <= 0 {
		return 0
	}
	return round(float64(low+high) / 2)
}

// HydrationGoal returns the hydration target, falling back to
// DefaultHydrationOz when no bodyweight-based target exists.
func HydrationGoal(t Targets) int {
	if t.HydrationTargetOz > 0 {
		return t.HydrationTargetOz
	}
	return DefaultHydrationOz
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// round uses math.Round so values like 108.5 go up rather than truncating.
func round(v float64) int {
	return int(math.Round(v))
}
