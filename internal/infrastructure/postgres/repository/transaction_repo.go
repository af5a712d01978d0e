package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Amitsjoysm/payment-service/internal/domain"
	"github.com/Amitsjoysm/payment-service/internal/infrastructure/postgres/mappers"
	"github.com/Amitsjoysm/payment-service/internal/infrastructure/postgres/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DefaultTransactionRepository struct {
	DB *gorm.DB
}

func NewDefaultTransactionRepository(db *gorm.DB) *DefaultTransactionRepository {
	return &DefaultTransactionRepository{DB: db}
}

func (r *DefaultTransactionRepository) Create(ctx context.Context, txn *domain.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	model := mappers.ToGORMTransaction(txn)
	if err := r.DB.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	return nil
}

func (r *DefaultTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	var model models.TransactionModel
	if err := r.DB.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return mappers.ToDomainTransaction(&model), nil
}

func (r *DefaultTransactionRepository) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*domain.Transaction, error) {
	var model models.TransactionModel
	if err := r.DB.WithContext(ctx).First(&model, "gateway_order_id = ?", gatewayOrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return mappers.ToDomainTransaction(&model), nil
}

func (r *DefaultTransactionRepository) GetByUserID(ctx context.Context, userID string, limit int) ([]*domain.Transaction, error) {
	var transactionModels []models.TransactionModel
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&transactionModels).Error; err != nil {
		return nil, err
	}

	transactions := make([]*domain.Transaction, len(transactionModels))
	for i, model := range transactionModels {
		transactions[i] = mappers.ToDomainTransaction(&model)
	}

	return transactions, nil
}

func (r *DefaultTransactionRepository) IncrementAttempts(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Where("id = ?", id).
		UpdateColumn("verification_attempts", gorm.Expr("verification_attempts + 1")).Error
}

// Complete is the single conditional write that resolves the race between
// client verification and the gateway webhook: only the writer whose update
// matches status = 'pending' wins the transition.
func (r *DefaultTransactionRepository) Complete(ctx context.Context, id, gatewayPaymentID, gatewaySignature, idempotencyKey string, completedAt time.Time) (bool, error) {
	updates := map[string]any{
		"status":             domain.StatusCompleted,
		"is_verified":        true,
		"gateway_payment_id": gatewayPaymentID,
		"completed_at":       completedAt,
	}
	if gatewaySignature != "" {
		updates["gateway_signature"] = gatewaySignature
	}
	if idempotencyKey != "" {
		updates["idempotency_key"] = idempotencyKey
	}

	result := r.DB.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Where("id = ? AND status = ?", id, domain.StatusPending).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *DefaultTransactionRepository) MarkFailed(ctx context.Context, id string) (bool, error) {
	return r.transition(ctx, id, domain.StatusFailed)
}

func (r *DefaultTransactionRepository) MarkExpired(ctx context.Context, id string) (bool, error) {
	return r.transition(ctx, id, domain.StatusExpired)
}

func (r *DefaultTransactionRepository) transition(ctx context.Context, id string, to domain.TransactionStatus) (bool, error) {
	result := r.DB.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Where("id = ? AND status = ?", id, domain.StatusPending).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *DefaultTransactionRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	result := r.DB.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Where("status = ? AND expires_at < ?", domain.StatusPending, now).
		Update("status", domain.StatusExpired)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *DefaultTransactionRepository) ClaimSettlement(ctx context.Context, id string) (bool, error) {
	result := r.DB.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Where("id = ? AND status = ? AND credits_settled = ?", id, domain.StatusCompleted, false).
		Update("credits_settled", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *DefaultTransactionRepository) ReleaseSettlement(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Where("id = ?", id).
		Update("credits_settled", false).Error
}

func (r *DefaultTransactionRepository) FindUnsettled(ctx context.Context, limit int) ([]*domain.Transaction, error) {
	var transactionModels []models.TransactionModel
	if err := r.DB.WithContext(ctx).
		Where("status = ? AND credits_settled = ?", domain.StatusCompleted, false).
		Order("completed_at ASC").
		Limit(limit).
		Find(&transactionModels).Error; err != nil {
		return nil, err
	}

	transactions := make([]*domain.Transaction, len(transactionModels))
	for i, model := range transactionModels {
		transactions[i] = mappers.ToDomainTransaction(&model)
	}

	return transactions, nil
}
