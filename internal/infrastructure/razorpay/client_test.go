package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Amitsjoysm/payment-service/internal/config"
	"github.com/Amitsjoysm/payment-service/internal/domain"
)

func testClient(baseURL string) *Client {
	return NewClient(&config.Gateway{
		BaseURL:       baseURL,
		KeyID:         "rzp_test_key",
		KeySecret:     "key_secret",
		WebhookSecret: "webhook_secret",
	}, nil)
}

func sign(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestCreateOrder(t *testing.T) {
	var gotRequest createOrderRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/orders" {
			t.Errorf("path = %s", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "rzp_test_key" || pass != "key_secret" {
			t.Error("missing or wrong basic auth")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(orderResponse{
			ID:       "order_abc",
			Amount:   gotRequest.Amount,
			Currency: gotRequest.Currency,
			Status:   "created",
		})
	}))
	defer server.Close()

	client := testClient(server.URL)
	order, err := client.CreateOrder(context.Background(), &domain.CreateGatewayOrderInput{
		AmountMinor: 99900,
		Currency:    "INR",
		Receipt:     "rcpt_1",
		Notes:       map[string]string{"user_id": "user_1"},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.OrderID != "order_abc" {
		t.Errorf("order id = %q", order.OrderID)
	}
	if gotRequest.Amount != 99900 {
		t.Errorf("amount sent = %d", gotRequest.Amount)
	}
	if gotRequest.PaymentCapture != 1 {
		t.Error("payment_capture not set to auto")
	}
}

func TestCreateOrderGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount must be at least 100"}}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).CreateOrder(context.Background(), &domain.CreateGatewayOrderInput{
		AmountMinor: 1,
		Currency:    "INR",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "amount must be at least 100") {
		t.Errorf("error lost gateway description: %v", err)
	}
}

func TestFetchPayment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payments/pay_1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(paymentResponse{
			ID:       "pay_1",
			OrderID:  "order_abc",
			Amount:   99900,
			Currency: "INR",
			Status:   "captured",
		})
	}))
	defer server.Close()

	payment, err := testClient(server.URL).FetchPayment(context.Background(), "pay_1")
	if err != nil {
		t.Fatalf("FetchPayment: %v", err)
	}
	if payment.AmountMinor != 99900 || payment.Status != "captured" {
		t.Errorf("payment = %+v", payment)
	}
}

func TestVerifyPaymentSignature(t *testing.T) {
	client := testClient("")

	valid := sign("key_secret", "order_abc|pay_1")
	if !client.VerifyPaymentSignature("order_abc", "pay_1", valid) {
		t.Error("valid signature rejected")
	}
	if client.VerifyPaymentSignature("order_abc", "pay_1", "deadbeef") {
		t.Error("bogus signature accepted")
	}
	if client.VerifyPaymentSignature("order_abc", "pay_2", valid) {
		t.Error("signature accepted for a different payment id")
	}
	if client.VerifyPaymentSignature("order_abc", "pay_1", "") {
		t.Error("empty signature accepted")
	}
}

func TestVerifyPaymentSignatureNoSecret(t *testing.T) {
	client := NewClient(&config.Gateway{}, nil)
	if client.VerifyPaymentSignature("order_abc", "pay_1", sign("", "order_abc|pay_1")) {
		t.Error("signature accepted without a configured secret")
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	client := testClient("")
	payload := []byte(`{"event":"payment.captured"}`)

	if !client.VerifyWebhookSignature(payload, sign("webhook_secret", string(payload))) {
		t.Error("valid webhook signature rejected")
	}
	if client.VerifyWebhookSignature(payload, sign("webhook_secret", "tampered")) {
		t.Error("signature over different bytes accepted")
	}
	if client.VerifyWebhookSignature(payload, "") {
		t.Error("empty signature accepted")
	}
}

func TestVerifyWebhookSignatureNoSecret(t *testing.T) {
	client := NewClient(&config.Gateway{KeySecret: "key_secret"}, nil)
	payload := []byte(`{}`)
	if client.VerifyWebhookSignature(payload, sign("", string(payload))) {
		t.Error("webhook accepted without a configured webhook secret")
	}
}
