package tracker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/omarshanyour/nutrimind-backend/internal/keylock"
	"github.com/omarshanyour/nutrimind-backend/internal/kv"
	"github.com/omarshanyour/nutrimind-backend/internal/nutrition"

	log "github.com/sirupsen/logrus"
)

var (
	ErrInvalidDate    = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidAmount  = errors.New("amount must be a positive number")
	ErrInvalidWeight  = fmt.Errorf("weight must be between 0 and %.1f", MaxWeightLbs)
	ErrDateOutOfRange = errors.New("date is in the future or older than the kept history")
)

// maxFutureDays tolerates clients whose local day is ahead of the server's.
const maxFutureDays = 1

// Service reads and mutates one owner's records. Mutations for the same
// owner are serialised; different owners proceed in parallel.
type Service struct {
	store kv.Store
	now   func() time.Time
	locks *keylock.Striped
}

// NewService creates a tracker. now defaults to time.Now.
func NewService(store kv.Store, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, now: now, locks: keylock.New(keylock.DefaultStripes)}
}

func baselineKey(owner string) string {
	return owner + ":baseline"
}

func historyKey(owner string) string {
	return owner + ":food-history"
}

func weightsKey(owner string) string {
	return owner + ":weight-history"
}

func (s *Service) lock(owner string) func() {
	return s.locks.Lock(owner)
}

// Today returns the current ISO day.
func (s *Service) Today() string {
	return s.now().Format(DateLayout)
}

// ResolveDate returns today for an empty date and validates anything else.
func (s *Service) ResolveDate(date string) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return s.Today(), nil
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return "", ErrInvalidDate
	}
	return date, nil
}

// resolveLogDate is ResolveDate for writes: dates more than maxFutureDays
// ahead of today are rejected.
func (s *Service) resolveLogDate(date string) (string, error) {
	date, err := s.ResolveDate(date)
	if err != nil {
		return "", err
	}
	latest := s.now().AddDate(0, 0, maxFutureDays).Format(DateLayout)
	if date > latest {
		return "", ErrDateOutOfRange
	}
	return date, nil
}

// beforeFullWindow reports whether a new date would be trimmed straight
// away: the window is full and date is older than its oldest entry.
func beforeFullWindow(date string, retained, limit int, oldest string) bool {
	return retained >= limit && date < oldest
}

/* ─── Baseline ───────────────────────────────────────────────────────── */

// Baseline returns the owner's saved baseline; found is false if none exists.
func (s *Service) Baseline(ctx context.Context, owner string) (Baseline, bool, error) {
	var b Baseline
	found, err := s.store.Get(ctx, baselineKey(owner), &b)
	if err != nil {
		return Baseline{}, false, fmt.Errorf("load baseline: %w", err)
	}
	return b, found, nil
}

// SaveBaseline replaces the owner's baseline snapshot.
func (s *Service) SaveBaseline(ctx context.Context, owner string, b Baseline) (Baseline, error) {
	defer s.lock(owner)()

	b.BodyweightLbs = nonNegative(b.BodyweightLbs)
	b.HeightCM = nonNegative(b.HeightCM)
	b.TrainingDaysPerWeek = nonNegative(b.TrainingDaysPerWeek)
	b.SavedAt = s.now().UTC()
	if err := s.store.Put(ctx, baselineKey(owner), b); err != nil {
		return Baseline{}, fmt.Errorf("save baseline: %w", err)
	}
	log.Debugf("[tracker] baseline saved for %s", owner)
	return b, nil
}

// Targets returns the targets derived from the saved baseline, or zero
// targets when there is no baseline.
func (s *Service) Targets(ctx context.Context, owner string) (nutrition.Targets, error) {
	b, _, err := s.Baseline(ctx, owner)
	if err != nil {
		return nutrition.Targets{}, err
	}
	return b.Targets(), nil
}

/* ─── Daily log ──────────────────────────────────────────────────────── */

// History returns the retained daily log, ascending by date.
func (s *Service) History(ctx context.Context, owner string) ([]Day, error) {
	var days []Day
	if _, err := s.store.Get(ctx, historyKey(owner), &days); err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if days == nil {
		days = []Day{}
	}
	return days, nil
}

// AddMeal adds m to the totals for date (empty means today).
func (s *Service) AddMeal(ctx context.Context, owner, date string, m Meal) (Day, []Day, error) {
	if m.Kcal < 0 || m.ProteinG < 0 || m.CarbsG < 0 || m.FatsG < 0 ||
		!finite(m.Kcal, m.ProteinG, m.CarbsG, m.FatsG) {
		return Day{}, nil, ErrInvalidAmount
	}
	m.Description = strings.TrimSpace(m.Description)
	m.LoggedAt = s.now().UTC()

	return s.mutateDay(ctx, owner, date, func(d *Day) {
		d.Kcal += m.Kcal
		d.ProteinG += m.ProteinG
		d.CarbsG += m.CarbsG
		d.FatsG += m.FatsG
		d.Meals = append(d.Meals, m)
	})
}

// AddWater adds oz of hydration to date (empty means today).
func (s *Service) AddWater(ctx context.Context, owner, date string, oz float64) (Day, []Day, error) {
	if oz <= 0 || !finite(oz) {
		return Day{}, nil, ErrInvalidAmount
	}
	return s.mutateDay(ctx, owner, date, func(d *Day) {
		d.HydrationOz += oz
	})
}

func (s *Service) mutateDay(ctx context.Context, owner, date string, mutate func(*Day)) (Day, []Day, error) {
	date, err := s.resolveLogDate(date)
	if err != nil {
		return Day{}, nil, err
	}

	defer s.lock(owner)()

	history, err := s.History(ctx, owner)
	if err != nil {
		return Day{}, nil, err
	}
	if len(history) > 0 && beforeFullWindow(date, len(history), MaxDays, history[0].Date) {
		return Day{}, nil, ErrDateOutOfRange
	}
	history, day := UpsertDay(history, date, mutate)
	if err := s.store.Put(ctx, historyKey(owner), history); err != nil {
		return Day{}, nil, fmt.Errorf("save history: %w", err)
	}
	return day, history, nil
}

// TodaySummary reports today's totals against the baseline targets.
func (s *Service) TodaySummary(ctx context.Context, owner string) (Summary, []Day, error) {
	targets, err := s.Targets(ctx, owner)
	if err != nil {
		return Summary{}, nil, err
	}
	history, err := s.History(ctx, owner)
	if err != nil {
		return Summary{}, nil, err
	}

	today := s.Today()
	day := Day{Date: today, Meals: []Meal{}}
	for _, d := range history {
		if d.Date == today {
			day = d
		}
	}
	return Summary{
		Date:            today,
		Day:             day,
		Targets:         targets,
		HydrationGoalOz: nutrition.HydrationGoal(targets),
		Zone:            nutrition.CalorieZone(day.Kcal, float64(targets.CalorieTarget)),
	}, history, nil
}

/* ─── Weight log ─────────────────────────────────────────────────────── */

// Weights returns the retained weight log, ascending by date.
func (s *Service) Weights(ctx context.Context, owner string) ([]WeightEntry, error) {
	var entries []WeightEntry
	if _, err := s.store.Get(ctx, weightsKey(owner), &entries); err != nil {
		return nil, fmt.Errorf("load weights: %w", err)
	}
	if entries == nil {
		entries = []WeightEntry{}
	}
	return entries, nil
}

// LogWeight records weight for date (empty means today). Logging the same
// date again overwrites the earlier value.
func (s *Service) LogWeight(ctx context.Context, owner, date string, weight float64) ([]WeightEntry, error) {
	if weight <= 0 || weight > MaxWeightLbs || !finite(weight) {
		return nil, ErrInvalidWeight
	}
	date, err := s.resolveLogDate(date)
	if err != nil {
		return nil, err
	}

	defer s.lock(owner)()

	entries, err := s.Weights(ctx, owner)
	if err != nil {
		return nil, err
	}
	if len(entries) > 0 && beforeFullWindow(date, len(entries), MaxWeights, entries[0].Date) {
		return nil, ErrDateOutOfRange
	}
	entries = UpsertWeight(entries, WeightEntry{Date: date, Weight: weight})
	if err := s.store.Put(ctx, weightsKey(owner), entries); err != nil {
		return nil, fmt.Errorf("save weights: %w", err)
	}
	return entries, nil
}

func nonNegative(v float64) float64 {
	if v < 0 || !finite(v) {
		return 0
	}
	return v
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
