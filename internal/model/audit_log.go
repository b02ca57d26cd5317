package model

import "time"

type ActorType string

const (
	ActorStudent ActorType = "STUDENT"
	ActorAdmin   ActorType = "ADMIN"
	ActorStaff   ActorType = "STAFF"
	ActorSystem  ActorType = "SYSTEM"
)

// Audit event types. One constant per state-changing operation.
const (
	EventRegistrationSubmitted = "REGISTRATION_SUBMITTED"
	EventStudentApproved       = "STUDENT_APPROVED"
	EventStudentDenied         = "STUDENT_DENIED"
	EventPaymentUploaded       = "PAYMENT_UPLOADED"
	EventPaymentVerified       = "PAYMENT_VERIFIED"
	EventPaymentDenied         = "PAYMENT_DENIED"
	EventPaymentOffline        = "PAYMENT_OFFLINE_RECORDED"
	EventMessCutApplied        = "MESS_CUT_APPLIED"
	EventMessCutLocked         = "MESS_CUT_LOCKED"
	EventClosureDeclared       = "MESS_CLOSURE_DECLARED"
	EventQRScanned             = "QR_SCANNED"
	EventQRRegenerated         = "QR_REGENERATED"
	EventQRBulkRegenerated     = "QR_BULK_REGENERATED"
	EventStaffTokenIssued      = "STAFF_TOKEN_ISSUED"
	EventStaffTokenRevoked     = "STAFF_TOKEN_REVOKED"
)

type AuditLog struct {
	ID        int64          `json:"id"`
	ActorType ActorType      `json:"actor_type"`
	ActorID   int64          `json:"actor_id"`
	EventType string         `json:"event_type"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}
