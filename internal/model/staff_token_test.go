package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStaffTokenUsable(t *testing.T) {
	now := time.Date(2026, time.March, 2, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, (&StaffToken{Active: true}).Usable(now))
	assert.True(t, (&StaffToken{Active: true, ExpiresAt: &future}).Usable(now))
	assert.False(t, (&StaffToken{Active: false}).Usable(now))
	assert.False(t, (&StaffToken{Active: true, ExpiresAt: &past}).Usable(now))
}

func TestDeadLetterCanRetry(t *testing.T) {
	assert.True(t, (&DeadLetter{RetryCount: 0, MaxRetries: 3}).CanRetry())
	assert.True(t, (&DeadLetter{RetryCount: 2, MaxRetries: 3}).CanRetry())
	assert.False(t, (&DeadLetter{RetryCount: 3, MaxRetries: 3}).CanRetry())
	assert.False(t, (&DeadLetter{RetryCount: 1, MaxRetries: 3, Resolved: true}).CanRetry())
}
