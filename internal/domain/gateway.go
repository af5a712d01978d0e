package domain

import "context"

type GatewayOrder struct {
	OrderID string
}

type GatewayPayment struct {
	ID          string
	OrderID     string
	AmountMinor int64
	Currency    string
	Status      string
}

type CreateGatewayOrderInput struct {
	AmountMinor int64
	Currency    string
	Receipt     string
	Notes       map[string]string
}

// GatewayClient is the adapter to the external payment gateway.
type GatewayClient interface {
	CreateOrder(ctx context.Context, in *CreateGatewayOrderInput) (*GatewayOrder, error)
	FetchPayment(ctx context.Context, gatewayPaymentID string) (*GatewayPayment, error)

	// VerifyPaymentSignature checks the signature the gateway produced over
	// (order id, payment id) with the shared key secret.
	VerifyPaymentSignature(gatewayOrderID, gatewayPaymentID, signature string) bool

	// VerifyWebhookSignature checks the HMAC over the raw webhook body.
	// Returns false for every payload when no webhook secret is configured.
	VerifyWebhookSignature(payload []byte, signature string) bool

	KeyID() string
}
