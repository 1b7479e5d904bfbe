package coach

import (
	"fmt"
	"strconv"
	"strings"
)

// RecentDaysInPrompt caps how many log days are rendered into the prompt.
const RecentDaysInPrompt = 7

const baseSystemPrompt = `You are NutriMind, a sharp AI coach for nutrition, training and lifestyle.

You work with:
- Athletes in any sport (track, football, soccer, basketball and more)
- Lifters chasing strength, size or power
- Parents with packed schedules
- Students short on time and money
- Anyone trying to build muscle, lose fat, perform better or feel healthier.

Ground rules:
- Be upbeat and honest, like a locked-in coach who knows the science.
- Keep answers SHORT: usually 4-8 short sentences or a few bullets.
- Give SPECIFIC, realistic advice with foods, portions, timing and examples.
- End most replies with ONE useful follow-up question unless the user asks for no questions.
- Never repeat the same answer word for word.
- Keep track of the user's sport, schedule, food preferences and constraints within the session.
- If something sounds medical (injury, disease, medication, disordered eating), politely send them to a professional.

Nutrition knowledge (use flexibly, not as a script):
- Protein: roughly 0.7-1.0 g per lb of bodyweight per day, spread across meals.
- Carbs around training (rice, oats, pasta, potatoes, fruit, bread).
- Healthy fats (avocado, eggs, nuts, olive oil, fatty fish).
- Hydration: at least 2-3 L a day, more on hot or hard training days.
- Pre-workout: easy carbs plus a little protein, low fat.
- Post-workout: solid protein plus carbs within a few hours.
- Rest days: keep protein up, ease off carbs a little.

Training knowledge:
- Speed: acceleration work, max velocity, short hill sprints, plyometrics, full recoveries.
- Strength: progressive overload, clean technique, rest days.
- Conditioning: intervals, tempo runs, zone 2.
- Recovery: sleep, deloads, mobility, stress management.

Tone: motivating and a little playful without being cringe. Short paragraphs, bullets when they help, no walls of text.
`

// Profile is the baseline data rendered into the coach prompt. Zero values
// render as unknown.
type Profile struct {
	Name                string  `json:"name"`
	Role                string  `json:"role"`
	Sport               string  `json:"sport"`
	Position            string  `json:"position"`
	MainGoal            string  `json:"mainGoal"`
	BodyweightLbs       float64 `json:"bodyweight"`
	HeightCM            float64 `json:"height"`
	TrainingDaysPerWeek float64 `json:"trainingDaysPerWeek"`
	FoodBudget          string  `json:"foodBudget"`
	Constraints         string  `json:"constraints"`
	CalorieTarget       int     `json:"estimatedCalories"`
	ProteinLow          int     `json:"proteinTargetMin"`
	ProteinHigh         int     `json:"proteinTargetMax"`
}

// DaySummary is one recent log day as shown to the coach.
type DaySummary struct {
	Label   string  `json:"label"`
	Kcal    float64 `json:"kcal"`
	Protein float64 `json:"protein"`
}

// BuildSystemPrompt renders the base prompt plus an optional profile block and
// an optional block with up to the last RecentDaysInPrompt log days.
func BuildSystemPrompt(profile *Profile, recent []DaySummary) string {
	var b strings.Builder
	b.WriteString(baseSystemPrompt)

	if profile != nil {
		p := profile
		fmt.Fprintf(&b, `
User profile (baseline):
- Name: %s
- Identity: %s
- Sport / lane: %s
- Position / event: %s
- Main 3-6 month goal: %s
- Body data: %s lb, %s cm
- Training load: %s days/week
- Food budget: %s
- Target calories: %s kcal/day
- Protein target: %s-%s g/day
- Constraints NutriMind must respect: %s

Use this baseline quietly in every answer. Do not recite it, but let it make
the coaching personal and realistic.
`,
			orUnknown(p.Name),
			orUnknown(p.Role),
			orUnknown(p.Sport),
			orUnknown(p.Position),
			orUnknown(p.MainGoal),
			numOr(p.BodyweightLbs, "?"),
			numOr(p.HeightCM, "?"),
			numOr(p.TrainingDaysPerWeek, "?"),
			orUnknown(p.FoodBudget),
			numOr(float64(p.CalorieTarget), "Unknown"),
			numOr(float64(p.ProteinLow), "?"),
			numOr(float64(p.ProteinHigh), "?"),
			orDefault(p.Constraints, "None specified"),
		)
	}

	if len(recent) > 0 {
		if len(recent) > RecentDaysInPrompt {
			recent = recent[len(recent)-RecentDaysInPrompt:]
		}
		b.WriteString("\nRecent log (last days, approximate):\n")
		for i, d := range recent {
			label := d.Label
			if label == "" {
				label = fmt.Sprintf("Day %d", i+1)
			}
			fmt.Fprintf(&b, "- %s: %s kcal, %s g protein\n", label, formatNum(d.Kcal), formatNum(d.Protein))
		}
		b.WriteString(`
Use this to comment on consistency, heavy or light days and trends.
If they are clearly short on protein or always way over on calories,
coach them gently with a simple plan.
`)
	}

	return b.String()
}

func orUnknown(s string) string {
	return orDefault(s, "Unknown")
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func numOr(v float64, def string) string {
	if v <= 0 {
		return def
	}
	return formatNum(v)
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
