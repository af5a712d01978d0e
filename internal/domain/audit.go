package domain

import (
	"context"
	"time"
)

type AuditEventType string

const (
	EventOrderCreated              AuditEventType = "order_created"
	EventRateLimitExceeded         AuditEventType = "rate_limit_exceeded"
	EventPaymentVerified           AuditEventType = "payment_verified"
	EventPaymentVerificationFailed AuditEventType = "payment_verification_failed"
	EventAmountMismatch            AuditEventType = "amount_mismatch"
	EventUnauthorizedVerification  AuditEventType = "unauthorized_verification_attempt"
	EventMaxVerificationAttempts   AuditEventType = "max_verification_attempts"
	EventWebhookPaymentCaptured    AuditEventType = "webhook_payment_captured"
	EventWebhookPaymentFailed      AuditEventType = "webhook_payment_failed"
	EventWebhookRejected           AuditEventType = "webhook_rejected"
	EventSettlementFailed          AuditEventType = "settlement_failed"
)

// AuditEntry is an immutable fact about a transaction. Entries are created
// on every security-relevant action and never mutated or deleted.
type AuditEntry struct {
	ID            string
	TransactionID string
	UserID        string
	EventType     AuditEventType
	Details       map[string]any
	IPAddress     string
	Timestamp     time.Time
}

type AuditTrail interface {
	Record(ctx context.Context, entry *AuditEntry) error
	ListByTransaction(ctx context.Context, transactionID string, limit int) ([]*AuditEntry, error)
}
