package model

import (
	"fmt"
	"time"
)

type Meal string

const (
	MealBreakfast Meal = "BREAKFAST"
	MealLunch     Meal = "LUNCH"
	MealDinner    Meal = "DINNER"
)

// Valid reports whether m is one of the three served meals.
func (m Meal) Valid() bool {
	return m == MealBreakfast || m == MealLunch || m == MealDinner
}

// MealWindow is a serving window in wall-clock minutes since midnight,
// end-inclusive.
type MealWindow struct {
	Meal  Meal `json:"meal"`
	Start int  `json:"start"`
	End   int  `json:"end"`
}

// Contains reports whether the wall-clock time t falls inside the window.
func (w MealWindow) Contains(t time.Time) bool {
	m := t.Hour()*60 + t.Minute()
	return m >= w.Start && m <= w.End
}

// MealSchedule is the ordered list of serving windows for a day.
type MealSchedule []MealWindow

// DefaultMealSchedule returns the standard hostel serving hours.
func DefaultMealSchedule() MealSchedule {
	return MealSchedule{
		{Meal: MealBreakfast, Start: 7 * 60, End: 9*60 + 30},
		{Meal: MealLunch, Start: 12 * 60, End: 14*60 + 30},
		{Meal: MealDinner, Start: 19 * 60, End: 21*60 + 30},
	}
}

// Current returns the meal being served at t, or "" when the mess is between
// services.
func (s MealSchedule) Current(t time.Time) Meal {
	for _, w := range s {
		if w.Contains(t) {
			return w.Meal
		}
	}
	return ""
}

// Window returns the serving window for a meal.
func (s MealSchedule) Window(meal Meal) (MealWindow, bool) {
	for _, w := range s {
		if w.Meal == meal {
			return w, true
		}
	}
	return MealWindow{}, false
}

// ParseMealWindow parses "07:00-09:30" into start/end minutes.
func ParseMealWindow(meal Meal, spec string) (MealWindow, error) {
	var sh, sm, eh, em int
	if _, err := fmt.Sscanf(spec, "%d:%d-%d:%d", &sh, &sm, &eh, &em); err != nil {
		return MealWindow{}, fmt.Errorf("parse meal window %q: %w", spec, err)
	}
	w := MealWindow{Meal: meal, Start: sh*60 + sm, End: eh*60 + em}
	if sh < 0 || sh > 23 || eh < 0 || eh > 23 || sm < 0 || sm > 59 || em < 0 || em > 59 || w.End <= w.Start {
		return MealWindow{}, fmt.Errorf("invalid meal window %q", spec)
	}
	return w, nil
}
