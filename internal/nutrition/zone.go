package nutrition

import "math"

// ZoneLevel is a coarse traffic-light rating of today's calorie intake.
type ZoneLevel string

const (
	ZoneNone  ZoneLevel = "none"
	ZoneRed   ZoneLevel = "red"
	ZoneAmber ZoneLevel = "amber"
	ZoneGreen ZoneLevel = "green"
)

// Zone describes today's intake relative to the calorie target.
type Zone struct {
	Level ZoneLevel `json:"level"`
	Label string    `json:"label"`
	// Pct is the intake percentage used for display, capped at 150.
	Pct float64 `json:"pct"`
}

// CalorieZone classifies kcal against target. A zero or missing target, or no
// intake, reports ZoneNone.
func CalorieZone(kcal, target float64) Zone {
	pct := 0.0
	if target > 0 {
		pct = kcal * 100 / target
	}
	if math.IsNaN(pct) || math.IsInf(pct, 0) || pct <= 0 {
		return Zone{Level: ZoneNone, Label: "No data yet", Pct: 0}
	}

	switch {
	case pct < 60:
		return Zone{Level: ZoneRed, Label: "Under-fueled", Pct: pct}
	case pct < 80:
		return Zone{Level: ZoneAmber, Label: "A bit light", Pct: pct}
	case pct <= 110:
		return Zone{Level: ZoneGreen, Label: "Right in the pocket", Pct: pct}
	case pct <= 130:
		return Zone{Level: ZoneAmber, Label: "Heavy but ok", Pct: pct}
	default:
		return Zone{Level: ZoneRed, Label: "Way over target", Pct: math.Min(pct, 150)}
	}
}
