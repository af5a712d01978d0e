package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gonanoid "github.com/jaevor/go-nanoid"
	"github.com/shopspring/decimal"

	"github.com/Amitsjoysm/payment-service/internal/domain"
	publisher "github.com/Amitsjoysm/payment-service/internal/infrastructure/kafka"
	"github.com/Amitsjoysm/payment-service/internal/infrastructure/metrics"
	paymentdto "github.com/Amitsjoysm/payment-service/internal/usecase/dto/payment"
)

// PaymentEventPublisher is the sink for lifecycle events. Satisfied by the
// kafka publisher; nil disables publishing.
type PaymentEventPublisher interface {
	PublishPayment(event publisher.PaymentEvent) error
}

type OrderUsecase interface {
	CreateOrder(ctx context.Context, input *paymentdto.CreateOrderInput) (*paymentdto.TransactionOutput, error)
	GetUserTransactions(ctx context.Context, userID string, limit int) ([]*paymentdto.TransactionOutput, error)
	GetTransactionAudit(ctx context.Context, userID, transactionID string) ([]*paymentdto.AuditEntryOutput, error)
	ListPlans(ctx context.Context) ([]*paymentdto.PlanOutput, error)
}

type DefaultOrderUsecase struct {
	TransactionRepo domain.TransactionRepository
	PlanRepo        domain.PlanRepository
	AuditTrail      domain.AuditTrail
	Gateway         domain.GatewayClient
	RateLimiter     domain.RateLimiter
	Publisher       PaymentEventPublisher
	Metrics         *metrics.PaymentMetrics

	Currency     string
	MaxAmount    decimal.Decimal
	OrderTimeout time.Duration

	newReceipt func() string
}

func NewDefaultOrderUsecase(
	transactionRepo domain.TransactionRepository,
	planRepo domain.PlanRepository,
	auditTrail domain.AuditTrail,
	gateway domain.GatewayClient,
	rateLimiter domain.RateLimiter,
	eventPublisher PaymentEventPublisher,
	paymentMetrics *metrics.PaymentMetrics,
	currency string,
	maxAmount decimal.Decimal,
	orderTimeout time.Duration) *DefaultOrderUsecase {

	newReceipt, err := gonanoid.Standard(21)
	if err != nil {
		panic(fmt.Sprintf("nanoid generator: %v", err))
	}

	return &DefaultOrderUsecase{
		TransactionRepo: transactionRepo,
		PlanRepo:        planRepo,
		AuditTrail:      auditTrail,
		Gateway:         gateway,
		RateLimiter:     rateLimiter,
		Publisher:       eventPublisher,
		Metrics:         paymentMetrics,
		Currency:        currency,
		MaxAmount:       maxAmount,
		OrderTimeout:    orderTimeout,
		newReceipt:      newReceipt,
	}
}

// CreateOrder registers an order with the payment gateway and persists a
// pending transaction. A gateway failure leaves no local state behind; a
// local persistence failure after the gateway call leaves an orphaned
// gateway order, which is harmless because it can never be verified.
func (uc *DefaultOrderUsecase) CreateOrder(ctx context.Context, input *paymentdto.CreateOrderInput) (*paymentdto.TransactionOutput, error) {
	now := time.Now().UTC()

	// Stale pending orders must not count against anything; reap first.
	if expired, err := uc.TransactionRepo.ExpireStale(ctx, now); err != nil {
		slog.Error("failed to reap expired transactions", "error", err.Error())
	} else if expired > 0 {
		uc.Metrics.RecordExpired(expired)
	}

	allowed, err := uc.RateLimiter.Allow(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	if !allowed {
		uc.recordAudit(ctx, "", input.UserID, domain.EventRateLimitExceeded, map[string]any{
			"plan_name": input.PlanName,
			"amount":    input.Amount.String(),
		}, input.IPAddress)
		slog.Warn("order rate limit exceeded", "user_id", input.UserID)
		return nil, domain.ErrRateLimited
	}

	if input.Amount.LessThanOrEqual(decimal.Zero) || input.Amount.GreaterThan(uc.MaxAmount) {
		return nil, domain.ErrInvalidAmount
	}
	if input.Credits <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	gatewayOrder, err := uc.Gateway.CreateOrder(ctx, &domain.CreateGatewayOrderInput{
		AmountMinor: input.Amount.Mul(decimal.NewFromInt(100)).IntPart(),
		Currency:    uc.Currency,
		Receipt:     uc.newReceipt(),
		Notes: map[string]string{
			"user_id":   input.UserID,
			"plan_name": input.PlanName,
		},
	})
	if err != nil {
		slog.Error("gateway order creation failed", "user_id", input.UserID, "error", err.Error())
		return nil, domain.ErrGatewayUnavailable
	}

	txn := &domain.Transaction{
		UserID:           input.UserID,
		PlanName:         input.PlanName,
		Amount:           input.Amount,
		Currency:         uc.Currency,
		CreditsPurchased: input.Credits,
		GatewayOrderID:   gatewayOrder.OrderID,
		Status:           domain.StatusPending,
		IPAddress:        input.IPAddress,
		UserAgent:        input.UserAgent,
		CreatedAt:        now,
		ExpiresAt:        now.Add(uc.OrderTimeout),
	}
	if err := uc.TransactionRepo.Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to persist transaction: %w", err)
	}

	uc.recordAudit(ctx, txn.ID, txn.UserID, domain.EventOrderCreated, map[string]any{
		"gateway_order_id": txn.GatewayOrderID,
		"plan_name":        txn.PlanName,
		"amount":           txn.Amount.String(),
		"credits":          txn.CreditsPurchased,
	}, input.IPAddress)

	uc.publishEvent(txn, "created")
	uc.Metrics.RecordOrderCreated(txn.PlanName, txn.Currency, txn.Amount.InexactFloat64())

	slog.Info("payment order created",
		"transaction_id", txn.ID,
		"user_id", txn.UserID,
		"plan_name", txn.PlanName,
		"gateway_order_id", txn.GatewayOrderID)

	return paymentdto.ToTransactionOutput(txn), nil
}

func (uc *DefaultOrderUsecase) GetUserTransactions(ctx context.Context, userID string, limit int) ([]*paymentdto.TransactionOutput, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	transactions, err := uc.TransactionRepo.GetByUserID(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	outputs := make([]*paymentdto.TransactionOutput, 0, len(transactions))
	for _, txn := range transactions {
		outputs = append(outputs, paymentdto.ToTransactionOutput(txn))
	}
	return outputs, nil
}

// GetTransactionAudit returns the audit trail of a transaction the caller
// owns. Foreign transactions look the same as missing ones.
func (uc *DefaultOrderUsecase) GetTransactionAudit(ctx context.Context, userID, transactionID string) ([]*paymentdto.AuditEntryOutput, error) {
	txn, err := uc.TransactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.UserID != userID {
		return nil, domain.ErrTransactionNotFound
	}
	entries, err := uc.AuditTrail.ListByTransaction(ctx, transactionID, 100)
	if err != nil {
		return nil, err
	}
	outputs := make([]*paymentdto.AuditEntryOutput, 0, len(entries))
	for _, entry := range entries {
		outputs = append(outputs, paymentdto.ToAuditEntryOutput(entry))
	}
	return outputs, nil
}

func (uc *DefaultOrderUsecase) ListPlans(ctx context.Context) ([]*paymentdto.PlanOutput, error) {
	plans, err := uc.PlanRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	outputs := make([]*paymentdto.PlanOutput, 0, len(plans))
	for _, plan := range plans {
		outputs = append(outputs, paymentdto.ToPlanOutput(plan))
	}
	return outputs, nil
}

func (uc *DefaultOrderUsecase) recordAudit(ctx context.Context, transactionID, userID string, eventType domain.AuditEventType, details map[string]any, ipAddress string) {
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

func (uc *DefaultOrderUsecase) publishEvent(txn *domain.Transaction, status string) {
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
