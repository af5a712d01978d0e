package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gonanoid "github.com/jaevor/go-nanoid"

	"github.com/Amitsjoysm/payment-service/internal/domain"
	publisher "github.com/Amitsjoysm/payment-service/internal/infrastructure/kafka"
	"github.com/Amitsjoysm/payment-service/internal/infrastructure/metrics"
	paymentdto "github.com/Amitsjoysm/payment-service/internal/usecase/dto/payment"
)

type VerificationUsecase interface {
	VerifyPayment(ctx context.Context, input *paymentdto.VerifyPaymentInput) (*paymentdto.TransactionOutput, error)
}

// DefaultVerificationUsecase drives a transaction from pending to a
// terminal status based on the gateway signature the client hands back.
// The completed transition is a conditional write, so a verify call racing
// a webhook for the same order settles credits exactly once.
type DefaultVerificationUsecase struct {
	TransactionRepo domain.TransactionRepository
	AuditTrail      domain.AuditTrail
	Gateway         domain.GatewayClient
	Settlement      *DefaultSettlementUsecase
	Publisher       PaymentEventPublisher
	Metrics         *metrics.PaymentMetrics

	MaxAttempts int
	StrictFetch bool

	newIdempotencyKey func() string
}

func NewDefaultVerificationUsecase(
	transactionRepo domain.TransactionRepository,
	auditTrail domain.AuditTrail,
	gateway domain.GatewayClient,
	settlement *DefaultSettlementUsecase,
	eventPublisher PaymentEventPublisher,
	paymentMetrics *metrics.PaymentMetrics,
	maxAttempts int,
	strictFetch bool) *DefaultVerificationUsecase {

	newKey, err := gonanoid.Standard(21)
	if err != nil {
		panic(fmt.Sprintf("nanoid generator: %v", err))
	}

	return &DefaultVerificationUsecase{
		TransactionRepo:   transactionRepo,
		AuditTrail:        auditTrail,
		Gateway:           gateway,
		Settlement:        settlement,
		Publisher:         eventPublisher,
		Metrics:           paymentMetrics,
		MaxAttempts:       maxAttempts,
		StrictFetch:       strictFetch,
		newIdempotencyKey: newKey,
	}
}

// VerifyPayment checks guards in a fixed order: ownership, idempotent
// replay, terminal statuses, lazy expiry, the attempt cap. Only then is an
// attempt consumed and the signature checked. The replay check compares
// the submitted idempotency key against the stored one, so re-sending the
// same confirmation is safe while any other call against an already
// completed transaction is rejected.
func (uc *DefaultVerificationUsecase) VerifyPayment(ctx context.Context, input *paymentdto.VerifyPaymentInput) (*paymentdto.TransactionOutput, error) {
	txn, err := uc.TransactionRepo.GetByID(ctx, input.TransactionID)
	if err != nil {
		return nil, err
	}

	if txn.UserID != input.UserID {
		uc.recordAudit(ctx, txn.ID, input.UserID, domain.EventUnauthorizedVerification, map[string]any{
			"owner_id": txn.UserID,
		}, input.IPAddress)
		slog.Warn("verification attempt on foreign transaction",
			"transaction_id", txn.ID, "caller_id", input.UserID, "owner_id", txn.UserID)
		return nil, domain.ErrUnauthorizedAccess
	}

	if txn.Status == domain.StatusCompleted {
		if input.IdempotencyKey != "" && txn.IdempotencyKey == input.IdempotencyKey {
			return paymentdto.ToTransactionOutput(txn), nil
		}
		return nil, domain.ErrAlreadyVerified
	}
	if txn.Status == domain.StatusExpired {
		return nil, domain.ErrTransactionExpired
	}
	if txn.Status == domain.StatusFailed {
		return nil, domain.ErrTransactionFailed
	}

	if txn.ExpiredAt(time.Now().UTC()) {
		if moved, err := uc.TransactionRepo.MarkExpired(ctx, txn.ID); err != nil {
			slog.Error("failed to expire transaction", "transaction_id", txn.ID, "error", err.Error())
		} else if moved {
			uc.Metrics.RecordExpired(1)
		}
		return nil, domain.ErrTransactionExpired
	}

	if txn.VerificationAttempts >= uc.MaxAttempts {
		uc.recordAudit(ctx, txn.ID, txn.UserID, domain.EventMaxVerificationAttempts, map[string]any{
			"attempts": txn.VerificationAttempts,
		}, input.IPAddress)
		return nil, domain.ErrTooManyAttempts
	}
	if err := uc.TransactionRepo.IncrementAttempts(ctx, txn.ID); err != nil {
		return nil, fmt.Errorf("failed to count verification attempt: %w", err)
	}
	txn.VerificationAttempts++

	if !uc.Gateway.VerifyPaymentSignature(txn.GatewayOrderID, input.GatewayPaymentID, input.GatewaySignature) {
		uc.failVerification(ctx, txn, input, "signature mismatch")
		uc.Metrics.RecordVerificationFailure("signature")
		return nil, domain.ErrInvalidSignature
	}

	if err := uc.crossCheckPayment(ctx, txn, input); err != nil {
		return nil, err
	}

	idempotencyKey := input.IdempotencyKey
	if idempotencyKey == "" {
		idempotencyKey = uc.newIdempotencyKey()
	}

	completedAt := time.Now().UTC()
	won, err := uc.TransactionRepo.Complete(ctx, txn.ID, input.GatewayPaymentID, input.GatewaySignature, idempotencyKey, completedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to complete transaction: %w", err)
	}
	if !won {
		// A concurrent writer got there first; re-read and report what
		// actually happened instead of double-settling.
		current, err := uc.TransactionRepo.GetByID(ctx, txn.ID)
		if err != nil {
			return nil, err
		}
		if current.Status == domain.StatusCompleted && idempotencyKey == current.IdempotencyKey {
			return paymentdto.ToTransactionOutput(current), nil
		}
		switch current.Status {
		case domain.StatusCompleted:
			return nil, domain.ErrAlreadyVerified
		case domain.StatusExpired:
			return nil, domain.ErrTransactionExpired
		default:
			return nil, domain.ErrTransactionFailed
		}
	}

	txn.Status = domain.StatusCompleted
	txn.IsVerified = true
	txn.GatewayPaymentID = input.GatewayPaymentID
	txn.GatewaySignature = input.GatewaySignature
	txn.IdempotencyKey = idempotencyKey
	txn.CompletedAt = &completedAt

	uc.recordAudit(ctx, txn.ID, txn.UserID, domain.EventPaymentVerified, map[string]any{
		"gateway_payment_id": input.GatewayPaymentID,
		"plan_name":          txn.PlanName,
		"amount":             txn.Amount.String(),
	}, input.IPAddress)
	uc.Metrics.RecordVerification("success")
	uc.publishEvent(txn, "completed")

	if err := uc.Settlement.Settle(ctx, txn); err != nil {
		// The transaction stays completed; the reconciler retries the grant.
		slog.Error("settlement deferred to reconciler", "transaction_id", txn.ID, "error", err.Error())
	}

	slog.Info("payment verified",
		"transaction_id", txn.ID,
		"user_id", txn.UserID,
		"gateway_payment_id", input.GatewayPaymentID)

	return paymentdto.ToTransactionOutput(txn), nil
}

// crossCheckPayment fetches the payment from the gateway and compares
// amount and capture status. Gateway unavailability is not the client's
// fault: unless strict mode is on, a failed fetch lets a cryptographically
// valid signature through.
func (uc *DefaultVerificationUsecase) crossCheckPayment(ctx context.Context, txn *domain.Transaction, input *paymentdto.VerifyPaymentInput) error {
	payment, err := uc.Gateway.FetchPayment(ctx, input.GatewayPaymentID)
	if err != nil {
		if uc.StrictFetch {
			slog.Error("payment fetch failed in strict mode", "transaction_id", txn.ID, "error", err.Error())
			return domain.ErrGatewayUnavailable
		}
		slog.Warn("payment fetch failed, proceeding on signature alone",
			"transaction_id", txn.ID, "error", err.Error())
		return nil
	}

	if payment.AmountMinor != txn.AmountMinor() {
		uc.recordAudit(ctx, txn.ID, txn.UserID, domain.EventAmountMismatch, map[string]any{
			"expected_minor":     txn.AmountMinor(),
			"received_minor":     payment.AmountMinor,
			"gateway_payment_id": payment.ID,
		}, input.IPAddress)
		uc.Metrics.RecordVerificationFailure("amount_mismatch")
		slog.Warn("payment amount mismatch",
			"transaction_id", txn.ID,
			"expected_minor", txn.AmountMinor(),
			"received_minor", payment.AmountMinor)
		return domain.ErrAmountMismatch
	}

	if payment.Status != "captured" && payment.Status != "authorized" {
		// Leave the transaction pending: a signature-bearing call against a
		// payment the gateway has not captured yet may legitimately retry.
		uc.recordAudit(ctx, txn.ID, txn.UserID, domain.EventPaymentVerificationFailed, map[string]any{
			"reason":             fmt.Sprintf("payment status %q", payment.Status),
			"gateway_payment_id": payment.ID,
		}, input.IPAddress)
		uc.Metrics.RecordVerificationFailure("not_captured")
		return domain.ErrPaymentNotSuccessful
	}
	return nil
}

func (uc *DefaultVerificationUsecase) failVerification(ctx context.Context, txn *domain.Transaction, input *paymentdto.VerifyPaymentInput, reason string) {
	if _, err := uc.TransactionRepo.MarkFailed(ctx, txn.ID); err != nil {
		slog.Error("failed to mark transaction failed", "transaction_id", txn.ID, "error", err.Error())
	}
	uc.recordAudit(ctx, txn.ID, txn.UserID, domain.EventPaymentVerificationFailed, map[string]any{
		"reason":             reason,
		"gateway_payment_id": input.GatewayPaymentID,
	}, input.IPAddress)
	uc.Metrics.RecordVerification("failure")
	txn.Status = domain.StatusFailed
	uc.publishEvent(txn, "failed")
}

func (uc *DefaultVerificationUsecase) recordAudit(ctx context.Context, transactionID, userID string, eventType domain.AuditEventType, details map[string]any, ipAddress string) {
	if uc.AuditTrail == nil {
		return
	}
	entry := &domain.AuditEntry{
		TransactionID: transactionID,
		UserID:        userID,
		EventType:     eventType,
		Details:       details,
		IPAddress:     ipAddress,
	}
	if err := uc.AuditTrail.Record(ctx, entry); err != nil {
		slog.Error("failed to record audit entry", "event", eventType, "error", err.Error())
	}
}

func (uc *DefaultVerificationUsecase) publishEvent(txn *domain.Transaction, status string) {
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
