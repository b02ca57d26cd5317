package model

import "time"

type ScanResult string

const (
	ScanAllowed          ScanResult = "ALLOWED"
	ScanBlockedStatus    ScanResult = "BLOCKED_STATUS"     // Not an approved student
	ScanBlockedNoPayment ScanResult = "BLOCKED_NO_PAYMENT" // No verified payment covering today
	ScanBlockedCut       ScanResult = "BLOCKED_CUT"        // Student is on a mess cut
	ScanBlockedClosure   ScanResult = "BLOCKED_CLOSURE"    // Mess closed for everyone
	ScanBlockedDuplicate ScanResult = "BLOCKED_DUPLICATE"  // Already served this meal today
)

// Allowed reports whether the gate should open.
func (r ScanResult) Allowed() bool {
	return r == ScanAllowed
}

// ScanEvent is one QR presentation at the counter, allowed or not.
type ScanEvent struct {
	ID           int64      `json:"id"`
	StudentID    int64      `json:"student_id"`
	Meal         Meal       `json:"meal"`
	ScannedAt    time.Time  `json:"scanned_at"`
	StaffTokenID *int64     `json:"staff_token_id,omitempty"`
	Result       ScanResult `json:"result"`
	DeviceInfo   string     `json:"device_info,omitempty"`

	Student *Student `json:"student,omitempty"`
}
