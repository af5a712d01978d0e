package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Amitsjoysm/payment-service/internal/domain"
	publisher "github.com/Amitsjoysm/payment-service/internal/infrastructure/kafka"
	"github.com/Amitsjoysm/payment-service/internal/infrastructure/metrics"
)

// webhookEnvelope mirrors the gateway's notification shape. Fields we do
// not act on are left out.
type webhookEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID               string `json:"id"`
				OrderID          string `json:"order_id"`
				AmountMinor      int64  `json:"amount"`
				Status           string `json:"status"`
				ErrorDescription string `json:"error_description"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

type WebhookUsecase interface {
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

// DefaultWebhookUsecase reconciles gateway notifications against local
// transactions. Webhooks are an independent confirmation channel: a
// captured notification completes a transaction the client never came
// back to verify, and replays are absorbed by the same conditional write
// the verify path uses.
type DefaultWebhookUsecase struct {
	TransactionRepo domain.TransactionRepository
	AuditTrail      domain.AuditTrail
	Gateway         domain.GatewayClient
	Settlement      *DefaultSettlementUsecase
	Publisher       PaymentEventPublisher
	Metrics         *metrics.PaymentMetrics
}

func NewDefaultWebhookUsecase(
	transactionRepo domain.TransactionRepository,
	auditTrail domain.AuditTrail,
	gateway domain.GatewayClient,
	settlement *DefaultSettlementUsecase,
	eventPublisher PaymentEventPublisher,
	paymentMetrics *metrics.PaymentMetrics) *DefaultWebhookUsecase {

	return &DefaultWebhookUsecase{
		TransactionRepo: transactionRepo,
		AuditTrail:      auditTrail,
		Gateway:         gateway,
		Settlement:      settlement,
		Publisher:       eventPublisher,
		Metrics:         paymentMetrics,
	}
}

// HandleWebhook authenticates the raw payload before parsing anything out
// of it. Notifications for unknown orders and unhandled event types are
// acknowledged without action so the gateway stops redelivering them.
func (uc *DefaultWebhookUsecase) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if !uc.Gateway.VerifyWebhookSignature(payload, signature) {
		uc.recordAudit(ctx, "", "", domain.EventWebhookRejected, map[string]any{
			"reason": "invalid signature",
		})
		uc.Metrics.RecordWebhookRejected()
		slog.Warn("webhook rejected: invalid signature")
		return domain.ErrInvalidWebhookSignature
	}

	var envelope webhookEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		uc.recordAudit(ctx, "", "", domain.EventWebhookRejected, map[string]any{
			"reason": "malformed payload",
		})
		uc.Metrics.RecordWebhookRejected()
		return fmt.Errorf("%w: %v", domain.ErrInvalidWebhookPayload, err)
	}

	uc.Metrics.RecordWebhookEvent(envelope.Event)

	switch envelope.Event {
	case "payment.captured":
		return uc.handleCaptured(ctx, &envelope)
	case "payment.failed":
		return uc.handleFailed(ctx, &envelope)
	default:
		slog.Info("ignoring webhook event", "event", envelope.Event)
		return nil
	}
}

func (uc *DefaultWebhookUsecase) handleCaptured(ctx context.Context, envelope *webhookEnvelope) error {
	entity := envelope.Payload.Payment.Entity
	txn, err := uc.TransactionRepo.GetByGatewayOrderID(ctx, entity.OrderID)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			slog.Warn("webhook for unknown gateway order", "gateway_order_id", entity.OrderID)
			return nil
		}
		return err
	}

	if entity.AmountMinor != 0 && entity.AmountMinor != txn.AmountMinor() {
		uc.recordAudit(ctx, txn.ID, txn.UserID, domain.EventAmountMismatch, map[string]any{
			"expected_minor":     txn.AmountMinor(),
			"received_minor":     entity.AmountMinor,
			"gateway_payment_id": entity.ID,
			"source":             "webhook",
		})
		uc.Metrics.RecordVerificationFailure("amount_mismatch")
		slog.Warn("webhook amount mismatch",
			"transaction_id", txn.ID,
			"expected_minor", txn.AmountMinor(),
			"received_minor", entity.AmountMinor)
		return nil
	}

	completedAt := time.Now().UTC()
	won, err := uc.TransactionRepo.Complete(ctx, txn.ID, entity.ID, "", "", completedAt)
	if err != nil {
		return fmt.Errorf("failed to complete transaction from webhook: %w", err)
	}
	if !won {
		// Already terminal: either the client verified first or an earlier
		// delivery of this webhook landed. Nothing left to do here; the
		// settlement claim below still runs in case the winner's grant failed.
		current, err := uc.TransactionRepo.GetByID(ctx, txn.ID)
		if err != nil {
			return err
		}
		if current.Status != domain.StatusCompleted {
			slog.Info("webhook capture for transaction already terminal",
				"transaction_id", txn.ID, "status", current.Status)
			return nil
		}
		txn = current
	} else {
		txn.Status = domain.StatusCompleted
		txn.IsVerified = true
		txn.GatewayPaymentID = entity.ID
		txn.CompletedAt = &completedAt

		uc.recordAudit(ctx, txn.ID, txn.UserID, domain.EventWebhookPaymentCaptured, map[string]any{
			"gateway_payment_id": entity.ID,
			"gateway_order_id":   entity.OrderID,
		})
		uc.Metrics.RecordVerification("success")
		uc.publishEvent(txn, "completed")
		slog.Info("payment completed via webhook",
			"transaction_id", txn.ID, "gateway_payment_id", entity.ID)
	}

	if err := uc.Settlement.Settle(ctx, txn); err != nil {
		slog.Error("settlement deferred to reconciler", "transaction_id", txn.ID, "error", err.Error())
	}
	return nil
}

func (uc *DefaultWebhookUsecase) handleFailed(ctx context.Context, envelope *webhookEnvelope) error {
	entity := envelope.Payload.Payment.Entity
	txn, err := uc.TransactionRepo.GetByGatewayOrderID(ctx, entity.OrderID)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			slog.Warn("webhook for unknown gateway order", "gateway_order_id", entity.OrderID)
			return nil
		}
		return err
	}
	if txn.Status.Terminal() {
		return nil
	}

	moved, err := uc.TransactionRepo.MarkFailed(ctx, txn.ID)
	if err != nil {
		return fmt.Errorf("failed to mark transaction failed: %w", err)
	}
	if !moved {
		return nil
	}
	uc.recordAudit(ctx, txn.ID, txn.UserID, domain.EventWebhookPaymentFailed, map[string]any{
		"gateway_payment_id": entity.ID,
		"error_description":  entity.ErrorDescription,
	})
	txn.Status = domain.StatusFailed
	uc.publishEvent(txn, "failed")
	slog.Info("payment failed via webhook",
		"transaction_id", txn.ID, "description", entity.ErrorDescription)
	return nil
}

func (uc *DefaultWebhookUsecase) recordAudit(ctx context.Context, transactionID, userID string, eventType domain.AuditEventType, details map[string]any) {
	if uc.AuditTrail == nil {
		return
	}
	entry := &domain.AuditEntry{
		TransactionID: transactionID,
		UserID:        userID,
		EventType:     eventType,
		Details:       details,
	}
	if err := uc.AuditTrail.Record(ctx, entry); err != nil {
		slog.Error("failed to record audit entry", "event", eventType, "error", err.Error())
	}
}

func (uc *DefaultWebhookUsecase) publishEvent(txn *domain.Transaction, status string) {
	if uc.Publisher == nil {
		return
	}
	event := publisher.PaymentEvent{
		TransactionID: txn.ID,
		UserID:        txn.UserID,
		PlanName:      txn.PlanName,
		Status:        status,
		Amount:        txn.Amount.String(),
		Currency:      txn.Currency,
		Credits:       txn.CreditsPurchased,
		OccurredAt:    time.Now().UTC(),
	}
	go func() {
		if err := uc.Publisher.PublishPayment(event); err != nil {
			slog.Error("failed to publish payment event", "status", status, "transaction_id", event.TransactionID, "error", err.Error())
		}
	}()
}
