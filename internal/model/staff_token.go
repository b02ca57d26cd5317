package model

import "time"

// StaffToken authenticates a scanner device. Only the sha256 digest of the
// token is stored; the raw value is shown once at issue time.
type StaffToken struct {
	ID         int64      `json:"id"`
	Label      string     `json:"label"`
	TokenHash  string     `json:"-"`
	IssuedAt   time.Time  `json:"issued_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	Active     bool       `json:"active"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// Usable reports whether the token authenticates at the given moment.
func (t *StaffToken) Usable(now time.Time) bool {
	if !t.Active {
		return false
	}
	if t.ExpiresAt != nil && now.After(*t.ExpiresAt) {
		return false
	}
	return true
}
