package publisher

import "time"

// PaymentEvent is published to the payment-events topic on every
// transaction lifecycle change. Downstream consumers (CRM sync,
// notifications) key on the user id.
type PaymentEvent struct {
	TransactionID string    `json:"transaction_id"`
	UserID        string    `json:"user_id"`
	PlanName      string    `json:"plan_name"`
	Status        string    `json:"status"`
	Amount        string    `json:"amount"`
	Currency      string    `json:"currency"`
	Credits       int64     `json:"credits"`
	OccurredAt    time.Time `json:"occurred_at"`
}
