package model

import "time"

type StudentStatus string

const (
	StudentStatusPending  StudentStatus = "PENDING"  // Waiting for admin review
	StudentStatusApproved StudentStatus = "APPROVED" // Can use the mess
	StudentStatusDenied   StudentStatus = "DENIED"
)

type Student struct {
	ID        int64         `json:"id"`
	TgUserID  int64         `json:"tg_user_id"`
	Name      string        `json:"name"`
	RollNo    string        `json:"roll_no"` // stored uppercase
	RoomNo    string        `json:"room_no"`
	Phone     string        `json:"phone"`
	Status    StudentStatus `json:"status"`
	QRVersion int           `json:"qr_version"`
	QRNonce   string        `json:"qr_nonce"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// IsApproved reports whether the student may eat at the mess at all.
func (s *Student) IsApproved() bool {
	return s.Status == StudentStatusApproved
}
