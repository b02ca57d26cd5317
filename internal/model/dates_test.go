package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDayTruncates(t *testing.T) {
	noon := time.Date(2026, time.March, 2, 12, 34, 56, 789, time.UTC)
	assert.Equal(t, date(2026, time.March, 2), Day(noon))
	assert.Equal(t, Day(noon), Day(Day(noon)))
}

func TestRangesOverlap(t *testing.T) {
	tests := []struct {
		name                   string
		fromA, toA, fromB, toB time.Time
		want                   bool
	}{
		{
			name:  "identical ranges",
			fromA: date(2026, 3, 1), toA: date(2026, 3, 5),
			fromB: date(2026, 3, 1), toB: date(2026, 3, 5),
			want: true,
		},
		{
			name:  "touching end day overlaps",
			fromA: date(2026, 3, 1), toA: date(2026, 3, 5),
			fromB: date(2026, 3, 5), toB: date(2026, 3, 10),
			want: true,
		},
		{
			name:  "adjacent days do not overlap",
			fromA: date(2026, 3, 1), toA: date(2026, 3, 5),
			fromB: date(2026, 3, 6), toB: date(2026, 3, 10),
			want: false,
		},
		{
			name:  "containment overlaps",
			fromA: date(2026, 3, 1), toA: date(2026, 3, 31),
			fromB: date(2026, 3, 10), toB: date(2026, 3, 12),
			want: true,
		},
		{
			name:  "disjoint before",
			fromA: date(2026, 2, 1), toA: date(2026, 2, 10),
			fromB: date(2026, 3, 1), toB: date(2026, 3, 10),
			want: false,
		},
		{
			name:  "single day inside",
			fromA: date(2026, 3, 4), toA: date(2026, 3, 4),
			fromB: date(2026, 3, 1), toB: date(2026, 3, 5),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RangesOverlap(tt.fromA, tt.toA, tt.fromB, tt.toB))
			// Overlap is symmetric.
			assert.Equal(t, tt.want, RangesOverlap(tt.fromB, tt.toB, tt.fromA, tt.toA))
		})
	}
}

func TestPaymentCoversInclusiveBounds(t *testing.T) {
	p := &Payment{CycleStart: date(2026, 3, 1), CycleEnd: date(2026, 3, 31)}

	assert.True(t, p.Covers(date(2026, 3, 1)))
	assert.True(t, p.Covers(date(2026, 3, 31)))
	assert.True(t, p.Covers(time.Date(2026, 3, 31, 23, 59, 0, 0, time.UTC)))
	assert.False(t, p.Covers(date(2026, 2, 28)))
	assert.False(t, p.Covers(date(2026, 4, 1)))
}

func TestMessCutCovers(t *testing.T) {
	c := &MessCut{FromDate: date(2026, 3, 10), ToDate: date(2026, 3, 12)}

	assert.True(t, c.Covers(date(2026, 3, 10)))
	assert.True(t, c.Covers(date(2026, 3, 12)))
	assert.False(t, c.Covers(date(2026, 3, 9)))
	assert.False(t, c.Covers(date(2026, 3, 13)))
}

func TestPaymentCycles(t *testing.T) {
	mid := date(2026, 2, 14)

	start, end := CurrentCycle(mid)
	assert.Equal(t, date(2026, 2, 1), start)
	assert.Equal(t, date(2026, 2, 28), end)

	start, end = NextCycle(mid)
	assert.Equal(t, date(2026, 3, 1), start)
	assert.Equal(t, date(2026, 3, 31), end)

	// December rolls into the next year.
	start, end = NextCycle(date(2026, 12, 5))
	assert.Equal(t, date(2027, 1, 1), start)
	assert.Equal(t, date(2027, 1, 31), end)
}
