package common

import (
	"errors"
	"strings"

	"github.com/saharamess/messbot/internal/service"
)

// ErrorMessage maps a service error to the text shown to the user.
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		return "❌ Student not found"
	case errors.Is(err, service.ErrAlreadyRegistered):
		return "⚠️ You are already registered. Check /status"
	case errors.Is(err, service.ErrRollNoTaken):
		return "❌ This roll number is already registered"
	case errors.Is(err, service.ErrNotApproved):
		return "⏳ Your registration is not approved yet. Check /status"
	case errors.Is(err, service.ErrAlreadyReviewed):
		return "⚠️ Already reviewed, nothing changed"
	case errors.Is(err, service.ErrPaymentNotFound):
		return "❌ Payment not found"
	case errors.Is(err, service.ErrOverlappingPayment),
		errors.Is(err, service.ErrOverlappingCut),
		errors.Is(err, service.ErrOverlappingClosure):
		return "⚠️ These dates overlap an existing entry"
	case errors.Is(err, service.ErrPastDate):
		return "❌ That date is already over"
	case errors.Is(err, service.ErrInvalidRange):
		return "❌ Invalid date range"
	case errors.Is(err, service.ErrCutoffPassed):
		return "🌙 The cutoff for tomorrow has passed. The earliest cut now starts the day after tomorrow"
	case errors.Is(err, service.ErrValidation):
		return "❌ " + validationDetail(err)
	default:
		return "❌ Something went wrong. Try again later"
	}
}

// validationDetail pulls the readable part out of a validation error.
func validationDetail(err error) string {
	msg := err.Error()
	if idx := strings.LastIndex(msg, ": "); idx >= 0 {
		return msg[idx+2:]
	}
	return msg
}
