package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Amitsjoysm/payment-service/internal/config"
	"github.com/Amitsjoysm/payment-service/internal/domain"
	"github.com/Amitsjoysm/payment-service/internal/infrastructure/metrics"
)

// Client talks to the Razorpay Orders and Payments REST API and owns both
// shared secrets: the key secret (payment signatures) and the webhook secret.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	keyID         string
	keySecret     string
	webhookSecret string
	metrics       *metrics.PaymentMetrics
}

func NewClient(cfg *config.Gateway, paymentMetrics *metrics.PaymentMetrics) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:       cfg.BaseURL,
		keyID:         cfg.KeyID,
		keySecret:     cfg.KeySecret,
		webhookSecret: cfg.WebhookSecret,
		metrics:       paymentMetrics,
	}
}

func (c *Client) KeyID() string {
	return c.keyID
}

type createOrderRequest struct {
	Amount         int64             `json:"amount"`
	Currency       string            `json:"currency"`
	Receipt        string            `json:"receipt,omitempty"`
	PaymentCapture int               `json:"payment_capture"`
	Notes          map[string]string `json:"notes,omitempty"`
}

type orderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

type paymentResponse struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (c *Client) CreateOrder(ctx context.Context, in *domain.CreateGatewayOrderInput) (*domain.GatewayOrder, error) {
	body, err := json.Marshal(createOrderRequest{
		Amount:         in.AmountMinor,
		Currency:       in.Currency,
		Receipt:        in.Receipt,
		PaymentCapture: 1,
		Notes:          in.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	response, err := c.httpClient.Do(req)
	c.metrics.ObserveGatewayRequest("create_order", time.Since(started).Seconds())
	if err != nil {
		return nil, fmt.Errorf("gateway create order: %w", err)
	}
	defer response.Body.Close()
	responseBodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, gatewayError(response.StatusCode, responseBodyBytes)
	}

	var order orderResponse
	if err := json.Unmarshal(responseBodyBytes, &order); err != nil {
		return nil, fmt.Errorf("decode order response: %w", err)
	}

	return &domain.GatewayOrder{OrderID: order.ID}, nil
}

func (c *Client) FetchPayment(ctx context.Context, gatewayPaymentID string) (*domain.GatewayPayment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v1/payments/%s", c.baseURL, gatewayPaymentID), nil)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)

	started := time.Now()
	response, err := c.httpClient.Do(req)
	c.metrics.ObserveGatewayRequest("fetch_payment", time.Since(started).Seconds())
	if err != nil {
		return nil, fmt.Errorf("gateway fetch payment: %w", err)
	}
	defer response.Body.Close()
	responseBodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, gatewayError(response.StatusCode, responseBodyBytes)
	}

	var payment paymentResponse
	if err := json.Unmarshal(responseBodyBytes, &payment); err != nil {
		return nil, fmt.Errorf("decode payment response: %w", err)
	}

	return &domain.GatewayPayment{
		ID:          payment.ID,
		OrderID:     payment.OrderID,
		AmountMinor: payment.Amount,
		Currency:    payment.Currency,
		Status:      payment.Status,
	}, nil
}

// VerifyPaymentSignature checks the checkout signature: HMAC-SHA256 of
// "<order_id>|<payment_id>" under the key secret, hex encoded.
func (c *Client) VerifyPaymentSignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	if c.keySecret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(c.keySecret))
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyWebhookSignature checks the HMAC the gateway sends with each
// webhook. Without a configured secret every webhook is refused.
func (c *Client) VerifyWebhookSignature(payload []byte, signature string) bool {
	if c.webhookSecret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func gatewayError(statusCode int, body []byte) error {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Description != "" {
		return fmt.Errorf("gateway responded %d: %s", statusCode, errResp.Error.Description)
	}
	return fmt.Errorf("gateway responded %d", statusCode)
}
