package model

import "time"

type PaymentStatus string

const (
	PaymentStatusNone     PaymentStatus = "NONE"
	PaymentStatusUploaded PaymentStatus = "UPLOADED" // Screenshot received, waiting for review
	PaymentStatusVerified PaymentStatus = "VERIFIED"
	PaymentStatusDenied   PaymentStatus = "DENIED"
)

type PaymentSource string

const (
	PaymentSourceOnlineScreenshot PaymentSource = "ONLINE_SCREENSHOT"
	PaymentSourceOfflineManual    PaymentSource = "OFFLINE_MANUAL" // Recorded by an admin at the counter
)

type Payment struct {
	ID            int64         `json:"id"`
	StudentID     int64         `json:"student_id"`
	CycleStart    time.Time     `json:"cycle_start"` // date, midnight in mess TZ
	CycleEnd      time.Time     `json:"cycle_end"`   // inclusive
	Amount        int64         `json:"amount"`      // paise
	ScreenshotURL string        `json:"screenshot_url,omitempty"`
	Status        PaymentStatus `json:"status"`
	Source        PaymentSource `json:"source"`
	ReviewerAdmin *int64        `json:"reviewer_admin_id,omitempty"`
	ReviewedAt    *time.Time    `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	// Joined for admin screens, not a column
	Student *Student `json:"student,omitempty"`
}

// Covers reports whether the payment cycle contains the given day (inclusive bounds).
func (p *Payment) Covers(day time.Time) bool {
	d := Day(day)
	return !d.Before(Day(p.CycleStart)) && !d.After(Day(p.CycleEnd))
}

// CurrentCycle returns the calendar month containing t as a payment cycle.
func CurrentCycle(t time.Time) (start, end time.Time) {
	start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	end = start.AddDate(0, 1, -1)
	return start, end
}

// NextCycle returns the calendar month after the one containing t.
func NextCycle(t time.Time) (start, end time.Time) {
	firstOfThis := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	start = firstOfThis.AddDate(0, 1, 0)
	end = start.AddDate(0, 1, -1)
	return start, end
}
