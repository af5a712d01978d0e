package models

import (
	"time"

	"github.com/Amitsjoysm/payment-service/internal/domain"
	"github.com/shopspring/decimal"
)

type TransactionModel struct {
	ID     string `gorm:"primaryKey;type:uuid"`
	UserID string `gorm:"type:uuid;not null;index:idx_user_created"`

	PlanName         string
	Amount           decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Currency         string          `gorm:"size:3;not null"`
	CreditsPurchased int64           `gorm:"not null"`

	GatewayOrderID   string  `gorm:"uniqueIndex;not null"`
	GatewayPaymentID *string `gorm:"uniqueIndex"`
	GatewaySignature string

	Status               domain.TransactionStatus `gorm:"index:idx_status_expires;not null"`
	IdempotencyKey       string
	VerificationAttempts int  `gorm:"not null;default:0"`
	IsVerified           bool `gorm:"not null;default:false"`
	CreditsSettled       bool `gorm:"not null;default:false;index:idx_settlement"`

	IPAddress string
	UserAgent string

	CreatedAt   time.Time `gorm:"index:idx_user_created"`
	ExpiresAt   time.Time `gorm:"index:idx_status_expires"`
	CompletedAt *time.Time
}
