package handlers

// Dialog validation bounds.
const (
	// Payment amount in paise
	MinPaymentAmount = 100       // ₹1
	MaxPaymentAmount = 5_000_000 // ₹50,000

	// Closure reason
	ClosureReasonMaxLength = 200
)

// datePrompt is appended wherever a date is asked for.
const datePrompt = "(DD-MM-YYYY, e.g. 05-09-2026)"
