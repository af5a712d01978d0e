package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	httpServer *http.Server
}

func NewRouter(paymentHandler *PaymentHandler, webhookHandler *WebhookHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/payment")
	{
		// The gateway signs its own requests; no user identity there.
		api.POST("/webhook", webhookHandler.Handle)
		api.GET("/plans", paymentHandler.ListPlans)
		api.GET("/gateway-key", paymentHandler.GetGatewayKey)

		authed := api.Group("")
		authed.Use(IdentityMiddleware())
		{
			authed.POST("/orders", paymentHandler.CreateOrder)
			authed.POST("/verify", paymentHandler.VerifyPayment)
			authed.GET("/transactions", paymentHandler.ListTransactions)
			authed.GET("/transactions/:id/audit", paymentHandler.GetTransactionAudit)
		}
	}

	return router
}

func NewServer(address string, paymentHandler *PaymentHandler, webhookHandler *WebhookHandler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         address,
			Handler:      NewRouter(paymentHandler, webhookHandler),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
	}
}

func (s *Server) Run() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
