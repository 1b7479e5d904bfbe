package tracker

import "sort"

// UpsertDay applies mutate to the entry for date, creating it if needed, and
// returns the history sorted ascending and trimmed to the last MaxDays.
func UpsertDay(history []Day, date string, mutate func(*Day)) ([]Day, Day) {
	out := make([]Day, 0, len(history)+1)
	idx := -1
	for _, d := range history {
		if d.Date == date {
			idx = len(out)
		}
		out = append(out, d)
	}
	if idx < 0 {
		out = append(out, Day{Date: date, Meals: []Meal{}})
		idx = len(out) - 1
	}
	mutate(&out[idx])
	updated := out[idx]

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	if len(out) > MaxDays {
		out = out[len(out)-MaxDays:]
	}
	return out, updated
}

// UpsertWeight replaces the entry for e.Date or adds it, keeping the log
// sorted ascending and trimmed to the last MaxWeights.
func UpsertWeight(entries []WeightEntry, e WeightEntry) []WeightEntry {
	out := make([]WeightEntry, 0, len(entries)+1)
	for _, w := range entries {
		if w.Date != e.Date {
			out = append(out, w)
		}
	}
	out = append(out, e)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	if len(out) > MaxWeights {
		out = out[len(out)-MaxWeights:]
	}
	return out
}
