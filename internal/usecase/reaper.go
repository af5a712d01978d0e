package usecase

import (
	"context"
	"log"
	"time"

	"github.com/Amitsjoysm/payment-service/internal/domain"
	"github.com/Amitsjoysm/payment-service/internal/infrastructure/metrics"
)

// ExpiryReaper moves stale pending transactions to expired in the
// background. The verify path also expires lazily, so the reaper only
// bounds how long an abandoned order lingers.
type ExpiryReaper struct {
	TransactionRepo domain.TransactionRepository
	Metrics         *metrics.PaymentMetrics
	Interval        time.Duration
}

func NewExpiryReaper(transactionRepo domain.TransactionRepository, paymentMetrics *metrics.PaymentMetrics, interval time.Duration) *ExpiryReaper {
	return &ExpiryReaper{
		TransactionRepo: transactionRepo,
		Metrics:         paymentMetrics,
		Interval:        interval,
	}
}

func (r *ExpiryReaper) Start(ctx context.Context) {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := r.TransactionRepo.ExpireStale(ctx, time.Now().UTC())
			if err != nil {
				log.Printf("Auto-expire error: %v", err)
				continue
			}
			if count > 0 {
				r.Metrics.RecordExpired(count)
				log.Printf("Expired %d stale transactions", count)
			}
		}
	}
}
