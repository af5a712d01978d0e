package mappers

import (
	"github.com/Amitsjoysm/payment-service/internal/domain"
	"github.com/Amitsjoysm/payment-service/internal/infrastructure/postgres/models"
)

func ToDomainTransaction(model *models.TransactionModel) *domain.Transaction {
	paymentID := ""
	if model.GatewayPaymentID != nil {
		paymentID = *model.GatewayPaymentID
	}
	return &domain.Transaction{
		ID:                   model.ID,
		UserID:               model.UserID,
		PlanName:             model.PlanName,
		Amount:               model.Amount,
		Currency:             model.Currency,
		CreditsPurchased:     model.CreditsPurchased,
		GatewayOrderID:       model.GatewayOrderID,
		GatewayPaymentID:     paymentID,
		GatewaySignature:     model.GatewaySignature,
		Status:               model.Status,
		IdempotencyKey:       model.IdempotencyKey,
		VerificationAttempts: model.VerificationAttempts,
		IsVerified:           model.IsVerified,
		CreditsSettled:       model.CreditsSettled,
		IPAddress:            model.IPAddress,
		UserAgent:            model.UserAgent,
		CreatedAt:            model.CreatedAt,
		ExpiresAt:            model.ExpiresAt,
		CompletedAt:          model.CompletedAt,
	}
}

func ToGORMTransaction(txn *domain.Transaction) *models.TransactionModel {
	var paymentID *string
	if txn.GatewayPaymentID != "" {
		paymentID = &txn.GatewayPaymentID
	}
	return &models.TransactionModel{
		ID:                   txn.ID,
		UserID:               txn.UserID,
		PlanName:             txn.PlanName,
		Amount:               txn.Amount,
		Currency:             txn.Currency,
		CreditsPurchased:     txn.CreditsPurchased,
		GatewayOrderID:       txn.GatewayOrderID,
		GatewayPaymentID:     paymentID,
		GatewaySignature:     txn.GatewaySignature,
		Status:               txn.Status,
		IdempotencyKey:       txn.IdempotencyKey,
		VerificationAttempts: txn.VerificationAttempts,
		IsVerified:           txn.IsVerified,
		CreditsSettled:       txn.CreditsSettled,
		IPAddress:            txn.IPAddress,
		UserAgent:            txn.UserAgent,
		CreatedAt:            txn.CreatedAt,
		ExpiresAt:            txn.ExpiresAt,
		CompletedAt:          txn.CompletedAt,
	}
}
