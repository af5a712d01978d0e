package paymentdto

import (
	"time"

	"github.com/Amitsjoysm/payment-service/internal/domain"
)

type TransactionOutput struct {
	ID                   string     `json:"id"`
	PlanName             string     `json:"plan_name"`
	Amount               string     `json:"amount"`
	Currency             string     `json:"currency"`
	CreditsPurchased     int64      `json:"credits_purchased"`
	GatewayOrderID       string     `json:"gateway_order_id"`
	Status               string     `json:"status"`
	IsVerified           bool       `json:"is_verified"`
	VerificationAttempts int        `json:"verification_attempts"`
	CreatedAt            time.Time  `json:"created_at"`
	ExpiresAt            time.Time  `json:"expires_at"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
}

func ToTransactionOutput(txn *domain.Transaction) *TransactionOutput {
	return &TransactionOutput{
		ID:                   txn.ID,
		PlanName:             txn.PlanName,
		Amount:               txn.Amount.StringFixed(2),
		Currency:             txn.Currency,
		CreditsPurchased:     txn.CreditsPurchased,
		GatewayOrderID:       txn.GatewayOrderID,
		Status:               string(txn.Status),
		IsVerified:           txn.IsVerified,
		VerificationAttempts: txn.VerificationAttempts,
		CreatedAt:            txn.CreatedAt,
		ExpiresAt:            txn.ExpiresAt,
		CompletedAt:          txn.CompletedAt,
	}
}

type PlanOutput struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Price   string `json:"price"`
	Credits int64  `json:"credits"`
}

func ToPlanOutput(plan *domain.Plan) *PlanOutput {
	return &PlanOutput{
		ID:      plan.ID,
		Name:    plan.Name,
		Price:   plan.Price.StringFixed(2),
		Credits: plan.Credits,
	}
}

type AuditEntryOutput struct {
	EventType string         `json:"event_type"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

func ToAuditEntryOutput(entry *domain.AuditEntry) *AuditEntryOutput {
	return &AuditEntryOutput{
		EventType: string(entry.EventType),
		Details:   entry.Details,
		Timestamp: entry.Timestamp,
	}
}
