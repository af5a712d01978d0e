package mappers

import (
	"encoding/json"

	"github.com/Amitsjoysm/payment-service/internal/domain"
	"github.com/Amitsjoysm/payment-service/internal/infrastructure/postgres/models"
	"gorm.io/datatypes"
)

func ToDomainAuditEntry(model *models.AuditLogModel) *domain.AuditEntry {
	details := map[string]any{}
	if len(model.Details) > 0 {
		// malformed rows keep an empty details map
		_ = json.Unmarshal(model.Details, &details)
	}
	return &domain.AuditEntry{
		ID:            model.ID,
		TransactionID: model.TransactionID,
		UserID:        model.UserID,
		EventType:     model.EventType,
		Details:       details,
		IPAddress:     model.IPAddress,
		Timestamp:     model.Timestamp,
	}
}

func ToGORMAuditEntry(entry *domain.AuditEntry) (*models.AuditLogModel, error) {
	var details datatypes.JSON
	if entry.Details != nil {
		raw, err := json.Marshal(entry.Details)
		if err != nil {
			return nil, err
		}
		details = raw
	}
	return &models.AuditLogModel{
		ID:            entry.ID,
		TransactionID: entry.TransactionID,
		UserID:        entry.UserID,
		EventType:     entry.EventType,
		Details:       details,
		IPAddress:     entry.IPAddress,
		Timestamp:     entry.Timestamp,
	}, nil
}

func ToDomainPlan(model *models.PlanModel) *domain.Plan {
	return &domain.Plan{
		ID:        model.ID,
		Name:      model.Name,
		Price:     model.Price,
		Credits:   model.Credits,
		IsActive:  model.IsActive,
		CreatedAt: model.CreatedAt,
	}
}
