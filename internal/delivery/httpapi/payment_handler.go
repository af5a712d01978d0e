package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Amitsjoysm/payment-service/internal/domain"
	"github.com/Amitsjoysm/payment-service/internal/usecase"
	paymentdto "github.com/Amitsjoysm/payment-service/internal/usecase/dto/payment"
)

type PaymentHandler struct {
	orderUC  usecase.OrderUsecase
	verifyUC usecase.VerificationUsecase
	gateway  domain.GatewayClient
}

func NewPaymentHandler(orderUC usecase.OrderUsecase, verifyUC usecase.VerificationUsecase, gateway domain.GatewayClient) *PaymentHandler {
	return &PaymentHandler{
		orderUC:  orderUC,
		verifyUC: verifyUC,
		gateway:  gateway,
	}
}

type createOrderRequest struct {
	PlanName string `json:"plan_name" binding:"required"`
	Amount   string `json:"amount" binding:"required"`
	Credits  int64  `json:"credits" binding:"required"`
}

type verifyPaymentRequest struct {
	TransactionID    string `json:"transaction_id" binding:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" binding:"required"`
	GatewaySignature string `json:"gateway_signature" binding:"required"`
	IdempotencyKey   string `json:"idempotency_key"`
}

func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		respondError(c, http.StatusBadRequest, "amount must be a decimal string")
		return
	}

	output, err := h.orderUC.CreateOrder(c.Request.Context(), &paymentdto.CreateOrderInput{
		UserID:    c.GetString("user_id"),
		PlanName:  req.PlanName,
		Amount:    amount,
		Credits:   req.Credits,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, output)
}

func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	var req verifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	output, err := h.verifyUC.VerifyPayment(c.Request.Context(), &paymentdto.VerifyPaymentInput{
		TransactionID:    req.TransactionID,
		GatewayPaymentID: req.GatewayPaymentID,
		GatewaySignature: req.GatewaySignature,
		IdempotencyKey:   req.IdempotencyKey,
		UserID:           c.GetString("user_id"),
		IPAddress:        c.ClientIP(),
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, output)
}

func (h *PaymentHandler) ListTransactions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	outputs, err := h.orderUC.GetUserTransactions(c.Request.Context(), c.GetString("user_id"), limit)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": outputs})
}

func (h *PaymentHandler) GetTransactionAudit(c *gin.Context) {
	outputs, err := h.orderUC.GetTransactionAudit(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"audit": outputs})
}

func (h *PaymentHandler) ListPlans(c *gin.Context) {
	outputs, err := h.orderUC.ListPlans(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": outputs})
}

// GetGatewayKey exposes the public key id the frontend checkout widget
// needs. The secret never leaves the service.
func (h *PaymentHandler) GetGatewayKey(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"key_id": h.gateway.KeyID()})
}
