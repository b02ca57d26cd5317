package service

import "errors"

// Domain errors surfaced to the bot and the HTTP API.
var (
	ErrStudentNotFound    = errors.New("student not found")
	ErrAlreadyRegistered  = errors.New("telegram account already registered")
	ErrRollNoTaken        = errors.New("roll number already registered")
	ErrNotApproved        = errors.New("student is not approved")
	ErrAlreadyReviewed    = errors.New("already reviewed")
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrOverlappingPayment = errors.New("overlapping payment cycle")
	ErrOverlappingCut     = errors.New("overlapping mess cut")
	ErrOverlappingClosure = errors.New("overlapping mess closure")
	ErrPastDate           = errors.New("date is in the past")
	ErrInvalidRange       = errors.New("invalid date range")
	ErrCutoffPassed       = errors.New("cutoff time passed for tomorrow")
	ErrInvalidQR          = errors.New("invalid qr code")
	ErrStaleQR            = errors.New("qr code superseded")
	ErrNoActiveMeal       = errors.New("no meal being served")
	ErrTokenNotFound      = errors.New("staff token not found")
	ErrTokenLabelTaken    = errors.New("staff token label already exists")
	ErrValidation         = errors.New("validation failed")
)
