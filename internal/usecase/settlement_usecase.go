package usecase

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/Amitsjoysm/payment-service/internal/domain"
	"github.com/Amitsjoysm/payment-service/internal/infrastructure/metrics"
)

// DefaultSettlementUsecase grants purchased credits for completed
// transactions. The settlement claim is a conditional write on
// credits_settled, so the grant call happens at most once at a time even
// when the verification path, the webhook path and the reconciler race.
type DefaultSettlementUsecase struct {
	TransactionRepo domain.TransactionRepository
	Settler         domain.CreditSettler
	AuditTrail      domain.AuditTrail
	Metrics         *metrics.PaymentMetrics
}

func NewDefaultSettlementUsecase(
	transactionRepo domain.TransactionRepository,
	settler domain.CreditSettler,
	auditTrail domain.AuditTrail,
	paymentMetrics *metrics.PaymentMetrics) *DefaultSettlementUsecase {

	return &DefaultSettlementUsecase{
		TransactionRepo: transactionRepo,
		Settler:         settler,
		AuditTrail:      auditTrail,
		Metrics:         paymentMetrics,
	}
}

// Settle claims the transaction and invokes the external credit grant.
// Losing the claim means another writer already settled (or is settling);
// that is a no-op, not an error. A failed grant releases the claim so the
// reconciler retries later; the completed status is never rolled back.
func (uc *DefaultSettlementUsecase) Settle(ctx context.Context, txn *domain.Transaction) error {
	won, err := uc.TransactionRepo.ClaimSettlement(ctx, txn.ID)
	if err != nil {
		return err
	}
	if !won {
		return nil
	}

	if err := uc.Settler.GrantCredits(ctx, txn.UserID, txn.CreditsPurchased); err != nil {
		slog.Error("credit settlement failed",
			"transaction_id", txn.ID,
			"user_id", txn.UserID,
			"credits", txn.CreditsPurchased,
			"error", err.Error())

		if relErr := uc.TransactionRepo.ReleaseSettlement(ctx, txn.ID); relErr != nil {
			slog.Error("failed to release settlement claim", "transaction_id", txn.ID, "error", relErr.Error())
		}
		uc.recordAudit(ctx, txn, err)
		uc.Metrics.RecordSettlement("failure", 0)
		return err
	}

	uc.Metrics.RecordSettlement("success", txn.CreditsPurchased)
	slog.Info("credits settled", "transaction_id", txn.ID, "user_id", txn.UserID, "credits", txn.CreditsPurchased)
	return nil
}

func (uc *DefaultSettlementUsecase) recordAudit(ctx context.Context, txn *domain.Transaction, cause error) {
	if uc.AuditTrail == nil {
		return
	}
	entry := &domain.AuditEntry{
		TransactionID: txn.ID,
		UserID:        txn.UserID,
		EventType:     domain.EventSettlementFailed,
		Details: map[string]any{
			"credits": txn.CreditsPurchased,
			"error":   cause.Error(),
		},
	}
	if err := uc.AuditTrail.Record(ctx, entry); err != nil {
		slog.Error("failed to record audit entry", "event", entry.EventType, "error", err.Error())
	}
}

// StartReconciler retries settlement for completed transactions whose
// credits were never granted. is_verified/completed is the trigger; the
// cryptographic verification is never re-run here.
func (uc *DefaultSettlementUsecase) StartReconciler(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			transactions, err := uc.TransactionRepo.FindUnsettled(ctx, 50)
			if err != nil {
				log.Printf("Settlement reconciler scan error: %v", err)
				continue
			}
			for _, txn := range transactions {
				if err := uc.Settle(ctx, txn); err != nil {
					log.Printf("Settlement retry failed for transaction %s: %v", txn.ID, err)
				}
			}
		}
	}
}
