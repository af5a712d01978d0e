package repository

import (
	"context"

	"github.com/Amitsjoysm/payment-service/internal/domain"
	"github.com/Amitsjoysm/payment-service/internal/infrastructure/postgres/mappers"
	"github.com/Amitsjoysm/payment-service/internal/infrastructure/postgres/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultPlanRepository struct {
	DB *gorm.DB
}

func NewDefaultPlanRepository(db *gorm.DB) *DefaultPlanRepository {
	return &DefaultPlanRepository{DB: db}
}

func (r *DefaultPlanRepository) SeedDefaults(ctx context.Context, plans []*domain.Plan) error {
	for _, plan := range plans {
		model := models.PlanModel{
			ID:        uuid.New().String(),
			Name:      plan.Name,
			Price:     plan.Price,
			Credits:   plan.Credits,
			IsActive:  true,
			CreatedAt: plan.CreatedAt,
		}
		if err := r.DB.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
			Create(&model).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *DefaultPlanRepository) ListActive(ctx context.Context) ([]*domain.Plan, error) {
	var planModels []models.PlanModel
	if err := r.DB.WithContext(ctx).
		Where("is_active = ?", true).
		Order("price ASC").
		Find(&planModels).Error; err != nil {
		return nil, err
	}

	plans := make([]*domain.Plan, len(planModels))
	for i, model := range planModels {
		plans[i] = mappers.ToDomainPlan(&model)
	}

	return plans, nil
}
