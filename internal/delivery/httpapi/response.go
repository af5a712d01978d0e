package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Amitsjoysm/payment-service/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondError(c *gin.Context, code int, message string) {
	c.JSON(code, errorResponse{Error: message})
}

// respondDomainError maps domain sentinels to HTTP statuses. Anything
// unrecognized is an internal error and is logged with its cause; the
// client only sees a generic message.
func respondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		respondError(c, http.StatusTooManyRequests, "too many order attempts, try again later")
	case errors.Is(err, domain.ErrInvalidAmount):
		respondError(c, http.StatusBadRequest, "invalid amount or credits")
	case errors.Is(err, domain.ErrGatewayUnavailable):
		respondError(c, http.StatusServiceUnavailable, "payment gateway unavailable")
	case errors.Is(err, domain.ErrTransactionNotFound):
		respondError(c, http.StatusNotFound, "transaction not found")
	case errors.Is(err, domain.ErrUnauthorizedAccess):
		respondError(c, http.StatusForbidden, "transaction does not belong to caller")
	case errors.Is(err, domain.ErrAlreadyVerified):
		respondError(c, http.StatusConflict, "transaction already verified")
	case errors.Is(err, domain.ErrTransactionExpired):
		respondError(c, http.StatusGone, "transaction expired")
	case errors.Is(err, domain.ErrTransactionFailed):
		respondError(c, http.StatusConflict, "transaction already failed")
	case errors.Is(err, domain.ErrTooManyAttempts):
		respondError(c, http.StatusTooManyRequests, "verification attempt limit reached")
	case errors.Is(err, domain.ErrInvalidSignature):
		respondError(c, http.StatusBadRequest, "payment signature verification failed")
	case errors.Is(err, domain.ErrAmountMismatch):
		respondError(c, http.StatusBadRequest, "payment amount does not match order")
	case errors.Is(err, domain.ErrPaymentNotSuccessful):
		respondError(c, http.StatusBadRequest, "payment not captured by gateway")
	case errors.Is(err, domain.ErrInvalidWebhookSignature):
		respondError(c, http.StatusBadRequest, "invalid webhook signature")
	case errors.Is(err, domain.ErrInvalidWebhookPayload):
		respondError(c, http.StatusBadRequest, "invalid webhook payload")
	default:
		slog.Error("unhandled error in http layer", "path", c.FullPath(), "error", err.Error())
		respondError(c, http.StatusInternalServerError, "internal error")
	}
}
