package scores

// Describe returns one short caption per score for the dashboard cards.
func Describe(s Scores) map[string]string {
	return map[string]string{
		"hydration":   hydrationCaption(s.Hydration),
		"consistency": consistencyCaption(s.Consistency),
		"recovery":    recoveryCaption(s.Recovery),
	}
}

func hydrationCaption(v float64) string {
	switch {
	case v >= 90:
		return "Hydration is strong today. Keep a bottle near you and you're set."
	case v >= 70:
		return "Pretty solid. One more bottle gets you in a great spot."
	case v >= 40:
		return "You're part-way there. Sip through the afternoon instead of chugging at night."
	default:
		return "Very low so far. Make water the first thing you drink at your next meal."
	}
}

func consistencyCaption(v float64) string {
	switch {
	case v >= 80:
		return "Nice. You're eating like your plan most of the week."
	case v >= 55:
		return "Some good days, some low days. Aim for one more on-plan day this week."
	case v >= 30:
		return "Fuel is pretty up-and-down. Try to make breakfast or lunch more consistent."
	default:
		return "Barely any on-plan days yet. That's okay, this just shows where to start."
	}
}

func recoveryCaption(v float64) string {
	switch {
	case v >= 90:
		return "Great recovery. Your fuel and hydration look on point."
	case v >= 70:
		return "Recovery looks decent. Keep food quality high and keep hydrating."
	case v >= 40:
		return "Recovery is a bit mid. Try to hit your calories, protein and water 5+ days this week."
	default:
		return "Recovery is low. Focus on eating enough, getting protein and drinking water today."
	}
}
