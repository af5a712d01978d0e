package repository

import (
	"context"
	"time"

	"github.com/Amitsjoysm/payment-service/internal/domain"
	"github.com/Amitsjoysm/payment-service/internal/infrastructure/postgres/mappers"
	"github.com/Amitsjoysm/payment-service/internal/infrastructure/postgres/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PGAuditTrail persists audit entries into payment_audit_logs. Append-only:
// the repository exposes no update or delete.
type PGAuditTrail struct {
	DB *gorm.DB
}

func NewPGAuditTrail(db *gorm.DB) *PGAuditTrail {
	return &PGAuditTrail{DB: db}
}

func (t *PGAuditTrail) Record(ctx context.Context, entry *domain.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	model, err := mappers.ToGORMAuditEntry(entry)
	if err != nil {
		return err
	}
	return t.DB.WithContext(ctx).Create(model).Error
}

func (t *PGAuditTrail) ListByTransaction(ctx context.Context, transactionID string, limit int) ([]*domain.AuditEntry, error) {
	var logModels []models.AuditLogModel
	if err := t.DB.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("timestamp ASC").
		Limit(limit).
		Find(&logModels).Error; err != nil {
		return nil, err
	}

	entries := make([]*domain.AuditEntry, len(logModels))
	for i, model := range logModels {
		entries[i] = mappers.ToDomainAuditEntry(&model)
	}

	return entries, nil
}
