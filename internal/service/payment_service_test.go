package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateCycle(t *testing.T) {
	s := &PaymentService{loc: time.UTC}
	day := func(d int) time.Time {
		return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
	}
	now := day(15)

	// Current month is fine.
	assert.NoError(t, s.validateCycle(day(1), day(31), now, false))

	// End before start.
	assert.ErrorIs(t, s.validateCycle(day(10), day(5), now, false), ErrInvalidRange)

	// Longer than the cap.
	assert.ErrorIs(t, s.validateCycle(day(1), day(1).AddDate(0, 0, MaxCycleDays+1), now, false), ErrInvalidRange)

	// A cycle that already ended is only acceptable for offline entry.
	assert.ErrorIs(t, s.validateCycle(day(1), day(10), now, false), ErrPastDate)
	assert.NoError(t, s.validateCycle(day(1), day(10), now, true))

	// Ending today still counts.
	assert.NoError(t, s.validateCycle(day(1), day(15), now, false))
}
