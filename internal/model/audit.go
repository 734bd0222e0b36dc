package model

import "time"

// Audit error codes for provider invocations.
const (
	// AuditErrorNone marks an invocation that completed before the deadline.
	AuditErrorNone = ""
	// AuditErrorTimeout marks an invocation that missed the deadline.
	AuditErrorTimeout = "timeout"
	// AuditErrorProvider marks a non-timeout provider failure.
	AuditErrorProvider = "provider_error"
)

// CategorizationEvent is the audit record written for every provider
// invocation, whether it completed, timed out, or errored.
type CategorizationEvent struct {
	CreatedAt   time.Time
	Confidence  *float64
	ID          string
	UserID      string
	MerchantKey string
	Provider    string
	ErrorCode   string
	Latency     time.Duration
	TimedOut    bool
}
