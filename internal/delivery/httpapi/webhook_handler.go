package httpapi

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Amitsjoysm/payment-service/internal/usecase"
)

const webhookSignatureHeader = "X-Razorpay-Signature"

type WebhookHandler struct {
	webhookUC usecase.WebhookUsecase
}

func NewWebhookHandler(webhookUC usecase.WebhookUsecase) *WebhookHandler {
	return &WebhookHandler{webhookUC: webhookUC}
}

// Handle authenticates and processes a gateway notification. The raw body
// is passed through untouched because the signature covers the exact
// bytes the gateway sent.
func (h *WebhookHandler) Handle(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, http.StatusBadRequest, "unreadable body")
		return
	}

	signature := c.GetHeader(webhookSignatureHeader)
	if signature == "" {
		respondError(c, http.StatusBadRequest, "missing webhook signature")
		return
	}

	if err := h.webhookUC.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
