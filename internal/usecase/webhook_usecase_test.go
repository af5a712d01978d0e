package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Amitsjoysm/payment-service/internal/domain"
)

type webhookFixture struct {
	repo    *memTransactionRepo
	audit   *memAuditTrail
	gateway *fakeGateway
	settler *fakeSettler
	uc      *DefaultWebhookUsecase
}

func newWebhookFixture() *webhookFixture {
	repo := newMemTransactionRepo()
	audit := &memAuditTrail{}
	settler := &fakeSettler{}
	gateway := &fakeGateway{webhookOK: true}
	settlement := NewDefaultSettlementUsecase(repo, settler, audit, nil)
	uc := NewDefaultWebhookUsecase(repo, audit, gateway, settlement, nil, nil)
	return &webhookFixture{repo: repo, audit: audit, gateway: gateway, settler: settler, uc: uc}
}

func capturedPayload(orderID string, amountMinor int64) []byte {
	return fmt.Appendf(nil,
		`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":%q,"amount":%d,"status":"captured"}}}}`,
		orderID, amountMinor)
}

func failedPayload(orderID string) []byte {
	return fmt.Appendf(nil,
		`{"event":"payment.failed","payload":{"payment":{"entity":{"id":"pay_1","order_id":%q,"status":"failed","error_description":"card declined"}}}}`,
		orderID)
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	f := newWebhookFixture()
	f.gateway.webhookOK = false

	err := f.uc.HandleWebhook(context.Background(), capturedPayload("order_1", 99900), "bogus")
	if !errors.Is(err, domain.ErrInvalidWebhookSignature) {
		t.Fatalf("err = %v, want ErrInvalidWebhookSignature", err)
	}
	if !f.audit.has(domain.EventWebhookRejected) {
		t.Error("missing webhook_rejected audit entry")
	}
}

func TestHandleWebhookMalformedPayload(t *testing.T) {
	f := newWebhookFixture()
	err := f.uc.HandleWebhook(context.Background(), []byte("{not json"), "sig")
	if !errors.Is(err, domain.ErrInvalidWebhookPayload) {
		t.Fatalf("err = %v, want ErrInvalidWebhookPayload", err)
	}
}

func TestHandleWebhookCapturedCompletesAndSettles(t *testing.T) {
	f := newWebhookFixture()
	f.repo.put(pendingTransaction())

	if err := f.uc.HandleWebhook(context.Background(), capturedPayload("order_1", 99900), "sig"); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}

	stored, _ := f.repo.GetByID(context.Background(), "txn_1")
	if stored.Status != domain.StatusCompleted {
		t.Errorf("status = %s, want completed", stored.Status)
	}
	if stored.GatewayPaymentID != "pay_1" {
		t.Errorf("gateway payment id = %q", stored.GatewayPaymentID)
	}
	if got := f.settler.grantCount(); got != 1 {
		t.Errorf("grant calls = %d, want 1", got)
	}
	if !f.audit.has(domain.EventWebhookPaymentCaptured) {
		t.Error("missing webhook_payment_captured audit entry")
	}
}

func TestHandleWebhookCapturedReplay(t *testing.T) {
	f := newWebhookFixture()
	f.repo.put(pendingTransaction())

	payload := capturedPayload("order_1", 99900)
	for i := 0; i < 3; i++ {
		if err := f.uc.HandleWebhook(context.Background(), payload, "sig"); err != nil {
			t.Fatalf("delivery %d: %v", i, err)
		}
	}
	if got := f.settler.grantCount(); got != 1 {
		t.Errorf("grant calls = %d, want exactly 1", got)
	}
}

func TestHandleWebhookCapturedUnknownOrder(t *testing.T) {
	f := newWebhookFixture()
	if err := f.uc.HandleWebhook(context.Background(), capturedPayload("order_missing", 99900), "sig"); err != nil {
		t.Fatalf("unknown order must be acknowledged, got %v", err)
	}
}

func TestHandleWebhookCapturedAmountMismatch(t *testing.T) {
	f := newWebhookFixture()
	f.repo.put(pendingTransaction())

	if err := f.uc.HandleWebhook(context.Background(), capturedPayload("order_1", 100), "sig"); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	stored, _ := f.repo.GetByID(context.Background(), "txn_1")
	if stored.Status != domain.StatusPending {
		t.Errorf("status = %s, want pending", stored.Status)
	}
	if f.settler.grantCount() != 0 {
		t.Error("credits granted despite amount mismatch")
	}
	if !f.audit.has(domain.EventAmountMismatch) {
		t.Error("missing amount_mismatch audit entry")
	}
}

func TestHandleWebhookCapturedRetriesFailedSettlement(t *testing.T) {
	f := newWebhookFixture()
	txn := pendingTransaction()
	f.repo.put(txn)

	f.settler.grantErr = errors.New("credits service down")
	if err := f.uc.HandleWebhook(context.Background(), capturedPayload("order_1", 99900), "sig"); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	stored, _ := f.repo.GetByID(context.Background(), "txn_1")
	if stored.Status != domain.StatusCompleted {
		t.Fatalf("status = %s, want completed", stored.Status)
	}
	if stored.CreditsSettled {
		t.Fatal("settlement claim not released after failed grant")
	}

	// The next delivery settles once the credits service is back.
	f.settler.grantErr = nil
	if err := f.uc.HandleWebhook(context.Background(), capturedPayload("order_1", 99900), "sig"); err != nil {
		t.Fatalf("second delivery: %v", err)
	}
	if got := f.settler.grantCount(); got != 1 {
		t.Errorf("grant calls = %d, want 1", got)
	}
}

func TestHandleWebhookFailed(t *testing.T) {
	f := newWebhookFixture()
	f.repo.put(pendingTransaction())

	if err := f.uc.HandleWebhook(context.Background(), failedPayload("order_1"), "sig"); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	stored, _ := f.repo.GetByID(context.Background(), "txn_1")
	if stored.Status != domain.StatusFailed {
		t.Errorf("status = %s, want failed", stored.Status)
	}
	if !f.audit.has(domain.EventWebhookPaymentFailed) {
		t.Error("missing webhook_payment_failed audit entry")
	}
}

func TestHandleWebhookFailedDoesNotDemoteCompleted(t *testing.T) {
	f := newWebhookFixture()
	f.repo.put(pendingTransaction())

	if err := f.uc.HandleWebhook(context.Background(), capturedPayload("order_1", 99900), "sig"); err != nil {
		t.Fatalf("capture: %v", err)
	}
	if err := f.uc.HandleWebhook(context.Background(), failedPayload("order_1"), "sig"); err != nil {
		t.Fatalf("late failure: %v", err)
	}
	stored, _ := f.repo.GetByID(context.Background(), "txn_1")
	if stored.Status != domain.StatusCompleted {
		t.Errorf("status = %s, completed must stick", stored.Status)
	}
}

func TestHandleWebhookIgnoresUnknownEvent(t *testing.T) {
	f := newWebhookFixture()
	payload := []byte(`{"event":"refund.processed","payload":{"payment":{"entity":{}}}}`)
	if err := f.uc.HandleWebhook(context.Background(), payload, "sig"); err != nil {
		t.Fatalf("unknown event must be acknowledged, got %v", err)
	}
}
