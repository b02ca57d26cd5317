package service

import "time"

// Button is one inline keyboard option attached to an admin prompt.
type Button struct {
	Label string
	Data  string
}

// Notifier delivers Telegram messages without blocking the caller.
// Implementations queue and retry; a nil-safe no-op is fine in tests.
type Notifier interface {
	// Text sends a plain message to one chat.
	Text(chatID int64, text string)
	// Photo sends a PNG with a caption to one chat.
	Photo(chatID int64, photo []byte, caption string)
	// NotifyAdmins sends a plain message to every configured admin.
	NotifyAdmins(text string)
	// AdminsPrompt sends admins a message with one row of inline buttons.
	AdminsPrompt(text string, buttons []Button)
}

// Recorder appends audit rows to an external spreadsheet.
type Recorder interface {
	Record(sheet string, row []any)
}

// ScanFeedEvent is pushed to live scanner dashboards after every scan.
type ScanFeedEvent struct {
	StudentName string    `json:"student_name"`
	RollNo      string    `json:"roll_no"`
	Meal        string    `json:"meal"`
	Result      string    `json:"result"`
	ScannedAt   time.Time `json:"scanned_at"`
}

// Broadcaster fans scan events out to connected dashboard clients.
type Broadcaster interface {
	BroadcastScan(ev ScanFeedEvent)
}
