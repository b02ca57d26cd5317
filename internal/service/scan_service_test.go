package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saharamess/messbot/internal/model"
)

func TestVerdictPrecedence(t *testing.T) {
	tests := []struct {
		name   string
		checks gateChecks
		want   model.ScanResult
	}{
		{
			name:   "status outranks everything",
			checks: gateChecks{approved: false, paymentOK: false, onCut: true, closed: true, duplicate: true},
			want:   model.ScanBlockedStatus,
		},
		{
			name:   "payment outranks cut and closure",
			checks: gateChecks{approved: true, paymentOK: false, onCut: true, closed: true},
			want:   model.ScanBlockedNoPayment,
		},
		{
			name:   "cut outranks closure",
			checks: gateChecks{approved: true, paymentOK: true, onCut: true, closed: true},
			want:   model.ScanBlockedCut,
		},
		{
			name:   "closure outranks duplicate",
			checks: gateChecks{approved: true, paymentOK: true, closed: true, duplicate: true},
			want:   model.ScanBlockedClosure,
		},
		{
			name:   "duplicate blocks a second helping",
			checks: gateChecks{approved: true, paymentOK: true, duplicate: true},
			want:   model.ScanBlockedDuplicate,
		},
		{
			name:   "all clear",
			checks: gateChecks{approved: true, paymentOK: true},
			want:   model.ScanAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, verdict(tt.checks))
		})
	}
}

func TestResolveMealByWallClock(t *testing.T) {
	schedule := model.DefaultMealSchedule()
	at := func(h, m int) time.Time {
		return time.Date(2026, time.March, 2, h, m, 0, 0, time.UTC)
	}

	meal, err := resolveMeal(schedule, "", at(8, 0))
	require.NoError(t, err)
	assert.Equal(t, model.MealBreakfast, meal)

	meal, err = resolveMeal(schedule, "", at(9, 30))
	require.NoError(t, err)
	assert.Equal(t, model.MealBreakfast, meal)

	_, err = resolveMeal(schedule, "", at(10, 15))
	assert.ErrorIs(t, err, ErrNoActiveMeal)

	meal, err = resolveMeal(schedule, "", at(20, 0))
	require.NoError(t, err)
	assert.Equal(t, model.MealDinner, meal)
}

func TestResolveMealOverride(t *testing.T) {
	schedule := model.DefaultMealSchedule()
	betweenServices := time.Date(2026, time.March, 2, 16, 0, 0, 0, time.UTC)

	meal, err := resolveMeal(schedule, model.MealDinner, betweenServices)
	require.NoError(t, err)
	assert.Equal(t, model.MealDinner, meal)

	_, err = resolveMeal(schedule, model.Meal("SUPPER"), betweenServices)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestVerdictText(t *testing.T) {
	// Every verdict needs a human explanation for the scanner screen.
	for _, r := range []model.ScanResult{
		model.ScanAllowed,
		model.ScanBlockedStatus,
		model.ScanBlockedNoPayment,
		model.ScanBlockedCut,
		model.ScanBlockedClosure,
		model.ScanBlockedDuplicate,
	} {
		assert.NotEmpty(t, VerdictText(r))
	}
}
