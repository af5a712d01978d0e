package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestStatusTerminal(t *testing.T) {
	if StatusPending.Terminal() {
		t.Error("pending must not be terminal")
	}
	for _, s := range []TransactionStatus{StatusCompleted, StatusFailed, StatusExpired} {
		if !s.Terminal() {
			t.Errorf("%s must be terminal", s)
		}
	}
}

func TestAmountMinor(t *testing.T) {
	cases := []struct {
		amount string
		want   int64
	}{
		{"999", 99900},
		{"999.50", 99950},
		{"0.01", 1},
		{"100000", 10000000},
	}
	for _, tc := range cases {
		amount, err := decimal.NewFromString(tc.amount)
		if err != nil {
			t.Fatal(err)
		}
		txn := &Transaction{Amount: amount}
		if got := txn.AmountMinor(); got != tc.want {
			t.Errorf("AmountMinor(%s) = %d, want %d", tc.amount, got, tc.want)
		}
	}
}

func TestExpiredAt(t *testing.T) {
	now := time.Now().UTC()
	txn := &Transaction{ExpiresAt: now}
	if txn.ExpiredAt(now) {
		t.Error("deadline itself is not yet expired")
	}
	if !txn.ExpiredAt(now.Add(time.Nanosecond)) {
		t.Error("past deadline must be expired")
	}
}
