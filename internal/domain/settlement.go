package domain

import "context"

// CreditSettler grants purchased credits to a user account. It is an
// external collaborator; this core guarantees at most one grant per
// completed transaction.
type CreditSettler interface {
	GrantCredits(ctx context.Context, userID string, credits int64) error
}
