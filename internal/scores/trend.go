package scores

// Grade buckets the weekly average of calorie-target percentages.
type Grade string

const (
	GradeGreen  Grade = "Green"
	GradeAlmost Grade = "Almost"
	GradeHigh   Grade = "High"
	GradeOff    Grade = "Off"
)

var gradeText = map[Grade]string{
	GradeGreen:  "You're fueling really consistently. Nice work.",
	GradeAlmost: "Close to target. One or two days ran low.",
	GradeHigh:   "A little over target. Fine on heavy training weeks.",
	GradeOff:    "Fuel is well off target. Time to tighten it up.",
}

// DayMark is a coarse per-day rating shown next to each bar.
type DayMark string

const (
	MarkNone DayMark = "none"
	MarkLow  DayMark = "low"
	MarkOK   DayMark = "ok"
	MarkHigh DayMark = "high"
)

// TrendDay is one bar of the weekly fuel-consistency chart.
type TrendDay struct {
	Date string  `json:"date"`
	Pct  float64 `json:"pct"`
	Mark DayMark `json:"mark"`
}

// Trend summarizes the last week of calorie intake against the target.
type Trend struct {
	Days   []TrendDay `json:"days"`
	AvgPct float64    `json:"avg_pct"`
	Grade  Grade      `json:"grade"`
	Text   string     `json:"text"`
}

// WeeklyTrend grades the windowed log: Green for a 90-110% average, Almost for
// 75-<90, High for >110-130, Off otherwise.
func WeeklyTrend(days []Day, calorieTarget float64) Trend {
	window := Window(days)
	trend := Trend{Days: make([]TrendDay, 0, len(window))}

	var sum float64
	for _, d := range window {
		var pct float64
		if calorieTarget > 0 {
			pct = d.Kcal * 100 / calorieTarget
		}
		sum += pct
		trend.Days = append(trend.Days, TrendDay{Date: d.Date, Pct: pct, Mark: markFor(pct)})
	}
	if len(window) > 0 {
		trend.AvgPct = sum / float64(len(window))
	}

	trend.Grade = gradeFor(trend.AvgPct)
	trend.Text = gradeText[trend.Grade]
	return trend
}

func gradeFor(avg float64) Grade {
	switch {
	case avg >= 90 && avg <= 110:
		return GradeGreen
	case avg >= 75 && avg < 90:
		return GradeAlmost
	case avg > 110 && avg <= 130:
		return GradeHigh
	default:
		return GradeOff
	}
}

func markFor(pct float64) DayMark {
	switch {
	case pct <= 0:
		return MarkNone
	case pct < 70:
		return MarkLow
	case pct <= 110:
		return MarkOK
	default:
		return MarkHigh
	}
}
