package scores

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func week(n int, kcal, protein float64) []Day {
	days := make([]Day, 0, n)
	for i := 1; i <= n; i++ {
		days = append(days, Day{Date: fmt.Sprintf("2026-03-%02d", i), Kcal: kcal, Protein: protein})
	}
	return days
}

func TestCompute_EmptyLog(t *testing.T) {
	assert.Equal(t, Scores{}, Compute(nil, "2026-03-07", 2000, 130))
	assert.Equal(t, Scores{}, Compute([]Day{}, "2026-03-07", 2000, 130))
}

func TestCompute_PerfectWeek(t *testing.T) {
	days := week(7, 2000, 132)
	days[6].HydrationOz = 80

	s := Compute(days, "2026-03-07", 2000, 132)
	assert.InDelta(t, 100, s.Hydration, 1e-9)
	assert.InDelta(t, 100, s.Consistency, 1e-9)
	assert.InDelta(t, 88, s.Recovery, 1e-9)
}

func TestCompute_HydrationUsesFixedBaseline(t *testing.T) {
	days := []Day{{Date: "2026-03-07", HydrationOz: 40}}
	assert.InDelta(t, 50, Compute(days, "2026-03-07", 0, 0).Hydration, 1e-9)

	days[0].HydrationOz = 200
	assert.InDelta(t, 130, Compute(days, "2026-03-07", 0, 0).Hydration, 1e-9, "hydration is capped")

	assert.Zero(t, Compute(days, "2026-03-08", 0, 0).Hydration, "only today's water counts")
}

func TestCompute_ConsistencyBounds(t *testing.T) {
	days := []Day{
		{Date: "2026-03-01", Kcal: 1600}, // 0.80, on plan
		{Date: "2026-03-02", Kcal: 2300}, // 1.15, on plan
		{Date: "2026-03-03", Kcal: 1500}, // 0.75
		{Date: "2026-03-04", Kcal: 2400}, // 1.20
		{Date: "2026-03-05"},             // no data, not counted
	}
	s := Compute(days, "2026-03-05", 2000, 0)
	assert.InDelta(t, 50, s.Consistency, 1e-9)
}

func TestCompute_ZeroTargets(t *testing.T) {
	days := week(7, 2500, 150)
	s := Compute(days, "2026-03-07", 0, 0)
	assert.Zero(t, s.Consistency)
	assert.Zero(t, s.Recovery)
}

func TestCompute_RecoveryAveragesContributingDays(t *testing.T) {
	// Protein only logged on one day; its average must not be diluted by the others.
	days := []Day{
		{Date: "2026-03-01", Kcal: 2000},
		{Date: "2026-03-02", Kcal: 2000, Protein: 100},
	}
	s := Compute(days, "2026-03-09", 2000, 100)
	// 0.6 * (0.45*100 + 0.35*100) + 0.4*0
	assert.InDelta(t, 48, s.Recovery, 1e-9)
}

func TestCompute_RecoveryClamp(t *testing.T) {
	days := week(7, 6000, 600)
	days[6].HydrationOz = 400
	s := Compute(days, "2026-03-07", 2000, 100)
	// day pcts cap at 140, hydration at 130: 0.6*(63+49) + 52 = 119.2
	assert.InDelta(t, 119.2, s.Recovery, 1e-9)
	assert.LessOrEqual(t, s.Recovery, 120.0)
}

func TestWindow_KeepsLastSevenSorted(t *testing.T) {
	days := week(9, 1000, 0)
	days[0], days[8] = days[8], days[0]

	w := Window(days)
	require.Len(t, w, WindowDays)
	assert.Equal(t, "2026-03-03", w[0].Date)
	assert.Equal(t, "2026-03-09", w[6].Date)
	assert.Equal(t, "2026-03-09", days[0].Date, "input is not reordered")
}

func TestCompute_OnlyWindowCounts(t *testing.T) {
	// Two old off-plan days fall outside the window.
	days := append([]Day{
		{Date: "2026-02-01", Kcal: 100},
		{Date: "2026-02-02", Kcal: 100},
	}, week(7, 2000, 0)...)
	s := Compute(days, "2026-03-07", 2000, 0)
	assert.InDelta(t, 100, s.Consistency, 1e-9)
}

func TestWeeklyTrend(t *testing.T) {
	tests := []struct {
		name  string
		kcal  float64
		grade Grade
		mark  DayMark
	}{
		{"on target", 2000, GradeGreen, MarkOK},
		{"slightly low", 1700, GradeAlmost, MarkOK},
		{"slightly high", 2400, GradeHigh, MarkHigh},
		{"way low", 1000, GradeOff, MarkLow},
		{"way high", 3000, GradeOff, MarkHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trend := WeeklyTrend(week(7, tt.kcal, 0), 2000)
			require.Len(t, trend.Days, 7)
			assert.Equal(t, tt.grade, trend.Grade)
			assert.Equal(t, tt.mark, trend.Days[0].Mark)
			assert.NotEmpty(t, trend.Text)
		})
	}
}

func TestWeeklyTrend_Empty(t *testing.T) {
	trend := WeeklyTrend(nil, 2000)
	assert.Empty(t, trend.Days)
	assert.Zero(t, trend.AvgPct)
	assert.Equal(t, GradeOff, trend.Grade)
}

func TestDescribe(t *testing.T) {
	d := Describe(Scores{Hydration: 100, Consistency: 0, Recovery: 70})
	assert.Contains(t, d["hydration"], "Hydration is strong")
	assert.Contains(t, d["consistency"], "Barely any on-plan days")
	assert.Contains(t, d["recovery"], "Recovery looks decent")
}

func TestDescribe_Bands(t *testing.T) {
	tests := []struct {
		score       float64
		hydration   string
		consistency string
		recovery    string
	}{
		{95, "strong", "Nice.", "Great recovery"},
		{90, "strong", "Nice.", "Great recovery"},
		{80, "Pretty solid", "Nice.", "looks decent"},
		{70, "Pretty solid", "Some good days", "looks decent"},
		{55, "part-way", "Some good days", "a bit mid"},
		{40, "part-way", "up-and-down", "a bit mid"},
		{30, "Very low", "up-and-down", "Recovery is low"},
		{0, "Very low", "Barely any", "Recovery is low"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.score), func(t *testing.T) {
			d := Describe(Scores{Hydration: tt.score, Consistency: tt.score, Recovery: tt.score})
			assert.Contains(t, d["hydration"], tt.hydration)
			assert.Contains(t, d["consistency"], tt.consistency)
			assert.Contains(t, d["recovery"], tt.recovery)
		})
	}
}
