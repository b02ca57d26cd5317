package state

// UserState is where a user currently is in a bot dialog.
type UserState string

const (
	StateNone UserState = "" // No active dialog

	// Registration dialog
	StateRegName  UserState = "reg_name"
	StateRegRoll  UserState = "reg_roll"
	StateRegRoom  UserState = "reg_room"
	StateRegPhone UserState = "reg_phone"

	// Payment upload dialog
	StatePayCustomFrom UserState = "pay_custom_from"
	StatePayCustomTo   UserState = "pay_custom_to"
	StatePayAmount     UserState = "pay_amount"
	StatePayScreenshot UserState = "pay_screenshot"

	// Mess cut dialog
	StateCutFrom UserState = "cut_from"
	StateCutTo   UserState = "cut_to"

	// Admin: closure declaration dialog
	StateClosureFrom   UserState = "closure_from"
	StateClosureTo     UserState = "closure_to"
	StateClosureReason UserState = "closure_reason"

	// Admin: offline payment dialog
	StateOfflineRoll   UserState = "offline_roll"
	StateOfflineFrom   UserState = "offline_from"
	StateOfflineTo     UserState = "offline_to"
	StateOfflineAmount UserState = "offline_amount"
)

// UserData holds a user's dialog position and any values collected so far.
type UserData struct {
	State UserState
	Data  map[string]interface{}
}
