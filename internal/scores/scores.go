// Package scores turns the rolling daily log into dashboard scores.
package scores

import (
	"math"
	"sort"
)

const (
	// WindowDays is how many of the most recent log days feed the scores.
	WindowDays = 7

	// hydrationBaselineOz is the fixed "100% hydrated" reference for the
	// hydration score. It is intentionally not the personalized target.
	hydrationBaselineOz = 80.0

	onPlanLow  = 0.80
	onPlanHigh = 1.15

	hydrationCap   = 130.0
	consistencyCap = 100.0
	recoveryCap    = 120.0
	dayPctCap      = 140.0
)

// Day is one day of accumulated intake.
type Day struct {
	Date        string  `json:"date"`
	Kcal        float64 `json:"kcal"`
	Protein     float64 `json:"protein"`
	HydrationOz float64 `json:"hydration_oz"`
}

func (d Day) hasData() bool {
	return d.Kcal > 0 || d.Protein > 0 || d.HydrationOz > 0
}

// Scores are descriptive percentages; none of them signal errors.
type Scores struct {
	Hydration   float64 `json:"hydration"`
	Consistency float64 `json:"consistency"`
	Recovery    float64 `json:"recovery"`
}

// Window returns a date-sorted copy of days limited to the last WindowDays.
func Window(days []Day) []Day {
	sorted := make([]Day, len(days))
	copy(sorted, days)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })
	if len(sorted) > WindowDays {
		sorted = sorted[len(sorted)-WindowDays:]
	}
	return sorted
}

// Compute derives hydration, consistency and recovery scores. today selects the
// day whose hydration drives the hydration score. Zero targets drop the
// corresponding term instead of dividing by zero.
func Compute(days []Day, today string, calorieTarget, proteinTarget float64) Scores {
	window := Window(days)
	if len(window) == 0 {
		return Scores{}
	}

	var todayOz float64
	for _, d := range window {
		if d.Date == today {
			todayOz = d.HydrationOz
		}
	}
	hydration := clamp(todayOz/hydrationBaselineOz*100, 0, hydrationCap)

	var (
		withData, onPlan int
		calSum, protSum  float64
		calN, protN      int
	)
	for _, d := range window {
		if d.hasData() {
			withData++
		}
		if calorieTarget > 0 {
			ratio := d.Kcal / calorieTarget
			if ratio >= onPlanLow && ratio <= onPlanHigh {
				onPlan++
			}
			if d.Kcal > 0 {
				calSum += clamp(d.Kcal*100/calorieTarget, 0, dayPctCap)
				calN++
			}
		}
		if proteinTarget > 0 && d.Protein > 0 {
			protSum += clamp(d.Protein*100/proteinTarget, 0, dayPctCap)
			protN++
		}
	}

	var consistency float64
	if withData > 0 {
		consistency = clamp(float64(onPlan)/float64(withData)*100, 0, consistencyCap)
	}

	recovery := clamp(0.6*(0.45*average(calSum, calN)+0.35*average(protSum, protN))+0.4*hydration, 0, recoveryCap)

	return Scores{
		Hydration:   hydration,
		Consistency: consistency,
		Recovery:    recovery,
	}
}

func average(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
