package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clock(h, m int) time.Time {
	return time.Date(2026, time.March, 2, h, m, 0, 0, time.UTC)
}

func TestMealScheduleCurrent(t *testing.T) {
	schedule := DefaultMealSchedule()

	tests := []struct {
		at   time.Time
		want Meal
	}{
		{clock(6, 59), ""},
		{clock(7, 0), MealBreakfast},
		{clock(9, 30), MealBreakfast}, // end-inclusive
		{clock(9, 31), ""},
		{clock(12, 0), MealLunch},
		{clock(14, 30), MealLunch},
		{clock(15, 0), ""},
		{clock(19, 0), MealDinner},
		{clock(21, 30), MealDinner},
		{clock(21, 31), ""},
		{clock(23, 45), ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, schedule.Current(tt.at), "at %s", tt.at.Format("15:04"))
	}
}

func TestMealScheduleWindow(t *testing.T) {
	schedule := DefaultMealSchedule()

	w, ok := schedule.Window(MealLunch)
	require.True(t, ok)
	assert.Equal(t, 12*60, w.Start)
	assert.Equal(t, 14*60+30, w.End)

	_, ok = schedule.Window(Meal("SUPPER"))
	assert.False(t, ok)
}

func TestParseMealWindow(t *testing.T) {
	w, err := ParseMealWindow(MealBreakfast, "07:00-09:30")
	require.NoError(t, err)
	assert.Equal(t, MealWindow{Meal: MealBreakfast, Start: 7 * 60, End: 9*60 + 30}, w)

	for _, spec := range []string{"", "7am-9am", "09:30-07:00", "07:00-07:00", "25:00-26:00", "07:70-09:00"} {
		_, err := ParseMealWindow(MealBreakfast, spec)
		assert.Error(t, err, "spec %q", spec)
	}
}

func TestMealValid(t *testing.T) {
	assert.True(t, MealBreakfast.Valid())
	assert.True(t, MealLunch.Valid())
	assert.True(t, MealDinner.Valid())
	assert.False(t, Meal("SUPPER").Valid())
	assert.False(t, Meal("").Valid())
}
