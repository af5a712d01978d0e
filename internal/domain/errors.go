package domain

import "errors"

var (
	ErrRateLimited        = errors.New("payment order rate limit exceeded")
	ErrInvalidAmount      = errors.New("invalid payment amount")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrUnauthorizedAccess   = errors.New("unauthorized transaction access")
	ErrAlreadyVerified      = errors.New("payment already verified")
	ErrTransactionExpired   = errors.New("transaction has expired")
	ErrTransactionFailed    = errors.New("transaction already failed")
	ErrTooManyAttempts      = errors.New("maximum verification attempts exceeded")
	ErrInvalidSignature     = errors.New("payment signature verification failed")
	ErrAmountMismatch       = errors.New("payment amount mismatch")
	ErrPaymentNotSuccessful = errors.New("payment not successful")

	ErrInvalidWebhookSignature = errors.New("invalid webhook signature")
	ErrInvalidWebhookPayload   = errors.New("invalid webhook payload")
)
