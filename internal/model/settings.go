package model

import "time"

// Settings is the single mutable runtime row (id=1). Clock policy (timezone,
// cutoff, meal windows) lives in the environment; what must survive restarts
// and change at runtime is the QR secret version, bumped by bulk regeneration.
type Settings struct {
	ID              int64     `json:"id"`
	QRSecretVersion int       `json:"qr_secret_version"`
	UpdatedAt       time.Time `json:"updated_at"`
}
