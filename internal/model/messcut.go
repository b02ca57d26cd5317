package model

import "time"

type CutAppliedBy string

const (
	CutAppliedByStudent CutAppliedBy = "STUDENT"
	CutAppliedByAdmin   CutAppliedBy = "ADMIN_SYSTEM" // Entered or locked by an admin/job
)

// MessCut is a student-declared absence range. Meals inside the range are not
// served and not charged.
type MessCut struct {
	ID        int64        `json:"id"`
	StudentID int64        `json:"student_id"`
	FromDate  time.Time    `json:"from_date"`
	ToDate    time.Time    `json:"to_date"` // inclusive
	AppliedAt time.Time    `json:"applied_at"`
	AppliedBy CutAppliedBy `json:"applied_by"`
	CutoffOK  bool         `json:"cutoff_ok"` // Applied before the evening cutoff

	Student *Student `json:"student,omitempty"`
}

// Covers reports whether the cut is active on the given day.
func (c *MessCut) Covers(day time.Time) bool {
	d := Day(day)
	return !d.Before(Day(c.FromDate)) && !d.After(Day(c.ToDate))
}
