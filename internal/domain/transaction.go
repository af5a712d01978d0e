package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
	StatusExpired   TransactionStatus = "expired"
)

// Terminal reports whether no further transition is permitted from s.
func (s TransactionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusExpired
}

// Transaction is one purchase attempt against the payment gateway.
type Transaction struct {
	ID     string
	UserID string

	PlanName         string
	Amount           decimal.Decimal
	Currency         string
	CreditsPurchased int64

	GatewayOrderID   string
	GatewayPaymentID string
	GatewaySignature string

	Status               TransactionStatus
	IdempotencyKey       string
	VerificationAttempts int
	IsVerified           bool
	CreditsSettled       bool

	IPAddress string
	UserAgent string

	CreatedAt   time.Time
	ExpiresAt   time.Time
	CompletedAt *time.Time
}

var minorUnitFactor = decimal.NewFromInt(100)

// AmountMinor returns the charged amount in the gateway's minor unit (paise).
func (t *Transaction) AmountMinor() int64 {
	return t.Amount.Mul(minorUnitFactor).IntPart()
}

func (t *Transaction) ExpiredAt(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
