package formatting

import (
	"github.com/saharamess/messbot/internal/model"
)

// StatusDisplay pairs an emoji with a short label for chat messages.
type StatusDisplay struct {
	Emoji string
	Text  string
}

// StudentStatusDisplay returns the chat rendering of a registration status.
func StudentStatusDisplay(status model.StudentStatus) StatusDisplay {
	switch status {
	case model.StudentStatusPending:
		return StatusDisplay{Emoji: "⏳", Text: "Awaiting approval"}
	case model.StudentStatusApproved:
		return StatusDisplay{Emoji: "✅", Text: "Approved"}
	case model.StudentStatusDenied:
		return StatusDisplay{Emoji: "❌", Text: "Denied"}
	default:
		return StatusDisplay{Emoji: "❓", Text: string(status)}
	}
}

// PaymentStatusDisplay returns the chat rendering of a payment status.
func PaymentStatusDisplay(status model.PaymentStatus) StatusDisplay {
	switch status {
	case model.PaymentStatusUploaded:
		return StatusDisplay{Emoji: "⏳", Text: "Awaiting review"}
	case model.PaymentStatusVerified:
		return StatusDisplay{Emoji: "✅", Text: "Verified"}
	case model.PaymentStatusDenied:
		return StatusDisplay{Emoji: "❌", Text: "Denied"}
	case model.PaymentStatusNone:
		return StatusDisplay{Emoji: "➖", Text: "No payment"}
	default:
		return StatusDisplay{Emoji: "❓", Text: string(status)}
	}
}

// ScanResultDisplay returns the chat rendering of a scan verdict.
func ScanResultDisplay(result model.ScanResult) StatusDisplay {
	switch result {
	case model.ScanAllowed:
		return StatusDisplay{Emoji: "✅", Text: "Allowed"}
	case model.ScanBlockedStatus:
		return StatusDisplay{Emoji: "🚫", Text: "Not approved"}
	case model.ScanBlockedNoPayment:
		return StatusDisplay{Emoji: "💳", Text: "No payment"}
	case model.ScanBlockedCut:
		return StatusDisplay{Emoji: "✂️", Text: "On mess cut"}
	case model.ScanBlockedClosure:
		return StatusDisplay{Emoji: "🔒", Text: "Mess closed"}
	case model.ScanBlockedDuplicate:
		return StatusDisplay{Emoji: "🔁", Text: "Already served"}
	default:
		return StatusDisplay{Emoji: "❓", Text: string(result)}
	}
}
