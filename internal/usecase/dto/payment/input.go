package paymentdto

import "github.com/shopspring/decimal"

type CreateOrderInput struct {
	UserID    string
	PlanName  string
	Amount    decimal.Decimal
	Credits   int64
	IPAddress string
	UserAgent string
}

type VerifyPaymentInput struct {
	TransactionID    string
	GatewayPaymentID string
	GatewaySignature string
	IdempotencyKey   string
	UserID           string
	IPAddress        string
}
