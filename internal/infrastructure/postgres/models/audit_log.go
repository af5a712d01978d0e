package models

import (
	"time"

	"github.com/Amitsjoysm/payment-service/internal/domain"
	"gorm.io/datatypes"
)

type AuditLogModel struct {
	ID            string `gorm:"primaryKey;type:uuid"`
	TransactionID string `gorm:"index"`
	UserID        string
	EventType     domain.AuditEventType `gorm:"not null;index"`
	Details       datatypes.JSON        `gorm:"type:jsonb"`
	IPAddress     string
	Timestamp     time.Time `gorm:"not null;index"`
}

func (AuditLogModel) TableName() string {
	return "payment_audit_logs"
}
