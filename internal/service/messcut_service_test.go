package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saharamess/messbot/internal/model"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func testPolicy() CutoffPolicy {
	return CutoffPolicy{Loc: ist, Hour: 23, Minute: 0}
}

func istDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, ist)
}

func TestCutoffPolicyFirstAllowedFrom(t *testing.T) {
	policy := testPolicy()

	beforeCutoff := time.Date(2026, time.March, 2, 22, 59, 0, 0, ist)
	assert.Equal(t, istDate(2026, time.March, 2), policy.FirstAllowedFrom(beforeCutoff))

	// The cutoff minute itself still counts.
	atCutoff := time.Date(2026, time.March, 2, 23, 0, 30, 0, ist)
	assert.Equal(t, istDate(2026, time.March, 2), policy.FirstAllowedFrom(atCutoff))

	// After the cutoff both today and tomorrow are sealed.
	afterCutoff := time.Date(2026, time.March, 2, 23, 1, 0, 0, ist)
	assert.Equal(t, istDate(2026, time.March, 4), policy.FirstAllowedFrom(afterCutoff))
}

func TestCheckCutWindowCutoffBoundary(t *testing.T) {
	policy := testPolicy()
	tomorrow := istDate(2026, time.March, 3)

	// 23:00:30 on the 2nd: a cut starting tomorrow is still fine.
	ok, err := checkCutWindow(policy, tomorrow, tomorrow, time.Date(2026, time.March, 2, 23, 0, 30, 0, ist))
	require.NoError(t, err)
	assert.True(t, ok)

	// 23:01: too late for tomorrow.
	ok, err = checkCutWindow(policy, tomorrow, tomorrow, time.Date(2026, time.March, 2, 23, 1, 0, 0, ist))
	require.NoError(t, err)
	assert.False(t, ok)

	// Day after tomorrow passes even at 23:30.
	dayAfter := tomorrow.AddDate(0, 0, 1)
	ok, err = checkCutWindow(policy, dayAfter, dayAfter, time.Date(2026, time.March, 2, 23, 30, 0, 0, ist))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCheckCutWindowSameDayCut(t *testing.T) {
	policy := testPolicy()
	today := istDate(2026, time.March, 2)

	// A cut starting today is fine while the deadline has not passed.
	morning := time.Date(2026, time.March, 2, 10, 0, 0, 0, ist)
	ok, err := checkCutWindow(policy, today, today.AddDate(0, 0, 3), morning)
	require.NoError(t, err)
	assert.True(t, ok)

	// After the deadline the same request misses the cutoff.
	night := time.Date(2026, time.March, 2, 23, 30, 0, 0, ist)
	ok, err = checkCutWindow(policy, today, today.AddDate(0, 0, 3), night)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckCutWindowRejectsEndedCuts(t *testing.T) {
	policy := testPolicy()
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, ist)

	yesterday := istDate(2026, time.March, 1)
	_, err := checkCutWindow(policy, yesterday, yesterday, now)
	assert.ErrorIs(t, err, ErrPastDate)

	// A range that started in the past but still covers today is accepted.
	today := istDate(2026, time.March, 2)
	ok, err := checkCutWindow(policy, yesterday, today, now)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCheckCutWindowRejectsBadRanges(t *testing.T) {
	policy := testPolicy()
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, ist)

	from := istDate(2026, time.March, 5)
	_, err := checkCutWindow(policy, from, from.AddDate(0, 0, -1), now)
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = checkCutWindow(policy, from, from.AddDate(0, 0, MaxCutDays+1), now)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestCheckCutWindowIgnoresTimeOfDayOnDates(t *testing.T) {
	policy := testPolicy()
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, ist)

	// A "tomorrow 18:00" input is still the calendar day tomorrow.
	from := time.Date(2026, time.March, 3, 18, 0, 0, 0, ist)
	ok, err := checkCutWindow(policy, from, from, now)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCutLockMessages(t *testing.T) {
	tomorrow := istDate(2026, time.March, 3)
	starting := []*model.MessCut{
		{
			FromDate: tomorrow,
			ToDate:   tomorrow.AddDate(0, 0, 4),
			Student:  &model.Student{TgUserID: 501, Name: "Ananya Nair", RollNo: "B21ME1042"},
		},
		{
			FromDate: tomorrow,
			ToDate:   tomorrow,
			Student:  &model.Student{TgUserID: 502, Name: "Rahul Menon", RollNo: "B22CS0107"},
		},
		// Row without a joined student must not produce a send.
		{FromDate: tomorrow, ToDate: tomorrow},
	}

	summary, confirmations := cutLockMessages(tomorrow, 7, starting)

	assert.Contains(t, summary, "7 students off tomorrow")
	assert.Contains(t, summary, "Ananya Nair (B21ME1042)")
	assert.Contains(t, summary, "Rahul Menon (B22CS0107)")

	require.Len(t, confirmations, 2)
	assert.Equal(t, int64(501), confirmations[0].tgUserID)
	assert.Contains(t, confirmations[0].text, "confirmed and locked")
	assert.Contains(t, confirmations[0].text, "from 03 Mar 2026 to 07 Mar 2026")
	assert.Equal(t, int64(502), confirmations[1].tgUserID)
	assert.Contains(t, confirmations[1].text, "for 03 Mar 2026")
}

func TestCutLockMessagesNoneStarting(t *testing.T) {
	tomorrow := istDate(2026, time.March, 3)

	summary, confirmations := cutLockMessages(tomorrow, 0, nil)
	assert.Contains(t, summary, "0 students off tomorrow")
	assert.NotContains(t, summary, "Starting tomorrow")
	assert.Empty(t, confirmations)
}
