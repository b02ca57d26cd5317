package model

import "time"

// MessClosure is an admin-declared range when the mess does not operate for
// anyone (festivals, maintenance).
type MessClosure struct {
	ID             int64     `json:"id"`
	FromDate       time.Time `json:"from_date"`
	ToDate         time.Time `json:"to_date"` // inclusive
	Reason         string    `json:"reason"`
	CreatedByAdmin int64     `json:"created_by_admin_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// Covers reports whether the closure is active on the given day.
func (c *MessClosure) Covers(day time.Time) bool {
	d := Day(day)
	return !d.Before(Day(c.FromDate)) && !d.After(Day(c.ToDate))
}
