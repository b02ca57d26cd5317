package model

import "time"

// Dead letter operations.
const (
	OpTelegramSend = "telegram_send"
	OpSheetsAppend = "sheets_append"
)

// DeadLetter is a failed side effect parked for later retry. Domain writes
// never roll back because of these; the queue keeps them from being lost.
type DeadLetter struct {
	ID          int64          `json:"id"`
	Operation   string         `json:"operation"`
	Payload     map[string]any `json:"payload"`
	ErrorMsg    string         `json:"error_message"`
	RetryCount  int            `json:"retry_count"`
	MaxRetries  int            `json:"max_retries"`
	Resolved    bool           `json:"resolved"`
	LastRetryAt *time.Time     `json:"last_retry_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// CanRetry reports whether the letter has retry budget left.
func (d *DeadLetter) CanRetry() bool {
	return !d.Resolved && d.RetryCount < d.MaxRetries
}
