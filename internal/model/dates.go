package model

import "time"

// Day truncates t to midnight in its own location. All mess bookkeeping
// (cycles, cuts, closures, scans) is day-granular.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// RangesOverlap reports whether two inclusive day ranges share at least one day.
func RangesOverlap(fromA, toA, fromB, toB time.Time) bool {
	return !Day(toA).Before(Day(fromB)) && !Day(fromA).After(Day(toB))
}
