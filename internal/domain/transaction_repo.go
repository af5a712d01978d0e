package domain

import (
	"context"
	"time"
)

// TransactionRepository is the single source of truth for transaction state.
// Every state transition is a conditional write keyed on the current status;
// the bool result reports whether this writer won the transition.
type TransactionRepository interface {
	Create(ctx context.Context, txn *Transaction) error
	GetByID(ctx context.Context, id string) (*Transaction, error)
	GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*Transaction, error)
	GetByUserID(ctx context.Context, userID string, limit int) ([]*Transaction, error)

	// IncrementAttempts bumps verification_attempts by one in SQL,
	// not via read-modify-write.
	IncrementAttempts(ctx context.Context, id string) error

	// Complete performs pending -> completed. Losing the race is not an error.
	Complete(ctx context.Context, id, gatewayPaymentID, gatewaySignature, idempotencyKey string, completedAt time.Time) (bool, error)

	// MarkFailed performs pending -> failed.
	MarkFailed(ctx context.Context, id string) (bool, error)

	// MarkExpired performs pending -> expired.
	MarkExpired(ctx context.Context, id string) (bool, error)

	// ExpireStale marks every pending transaction past its deadline as
	// expired and returns how many rows were transitioned.
	ExpireStale(ctx context.Context, now time.Time) (int64, error)

	// ClaimSettlement flips credits_settled false -> true on a completed
	// transaction. The winner is the only caller allowed to invoke the
	// credit grant; ReleaseSettlement reverts the claim after a failed grant.
	ClaimSettlement(ctx context.Context, id string) (bool, error)
	ReleaseSettlement(ctx context.Context, id string) error
	FindUnsettled(ctx context.Context, limit int) ([]*Transaction, error)
}
