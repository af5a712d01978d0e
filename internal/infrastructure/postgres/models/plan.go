package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PlanModel struct {
	ID        string          `gorm:"primaryKey;type:uuid"`
	Name      string          `gorm:"uniqueIndex;not null"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Credits   int64           `gorm:"not null"`
	IsActive  bool            `gorm:"not null;default:true"`
	CreatedAt time.Time
}
