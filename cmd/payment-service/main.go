package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/Amitsjoysm/payment-service/internal/config"
	"github.com/Amitsjoysm/payment-service/internal/delivery/http/handlers"
	"github.com/Amitsjoysm/payment-service/internal/delivery/httpapi"
	"github.com/Amitsjoysm/payment-service/internal/domain"
	publisher "github.com/Amitsjoysm/payment-service/internal/infrastructure/kafka"
	"github.com/Amitsjoysm/payment-service/internal/infrastructure/metrics"
	"github.com/Amitsjoysm/payment-service/internal/infrastructure/migrate"
	"github.com/Amitsjoysm/payment-service/internal/infrastructure/postgres"
	"github.com/Amitsjoysm/payment-service/internal/infrastructure/postgres/repository"
	"github.com/Amitsjoysm/payment-service/internal/infrastructure/razorpay"
	"github.com/Amitsjoysm/payment-service/internal/infrastructure/redis"
	"github.com/Amitsjoysm/payment-service/internal/usecase"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()
	setupLogger(&cfg.LogConfig)
	// Init database
	db := postgres.MustInitDB(cfg)

	if cfg.PaymentDB.MigrationsPath != "" {
		if err := migrate.RunMigrations(db, cfg.PaymentDB.MigrationsPath); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	brokers := []string{fmt.Sprintf("%s:%s", cfg.KafkaService.Host, cfg.KafkaService.Port)}
	pub := publisher.NewDefaultKafkaPublisher(brokers, cfg.KafkaService.Topic)
	defer pub.Close()

	paymentMetrics := metrics.NewPaymentMetrics()

	// Init repos
	transactionRepo := repository.NewDefaultTransactionRepository(db)
	auditTrail := repository.NewPGAuditTrail(db)
	planRepo := repository.NewDefaultPlanRepository(db)

	// Init gateway client
	gateway := razorpay.NewClient(&cfg.Gateway, paymentMetrics)

	// Init rate limiter
	rateLimiter := redis.NewSlidingWindowLimiter(&cfg.Redis, cfg.Payment.OrderRateLimitHour, time.Hour)

	// Init credits handler
	httpCreditsHandler, err := handlers.NewHTTPCreditsHandler(fmt.Sprintf("%s:%s", cfg.CreditsService.Host, cfg.CreditsService.Port))
	if err != nil {
		log.Fatalf("failed to init credits handler: %v", err)
	}

	if err := seedPlans(planRepo, cfg); err != nil {
		log.Fatalf("failed to seed plans: %v", err)
	}

	// Init usecases
	settlementUc := usecase.NewDefaultSettlementUsecase(transactionRepo, httpCreditsHandler, auditTrail, paymentMetrics)
	orderUc := usecase.NewDefaultOrderUsecase(
		transactionRepo,
		planRepo,
		auditTrail,
		gateway,
		rateLimiter,
		pub,
		paymentMetrics,
		cfg.Payment.Currency,
		cfg.Payment.MaxAmount,
		time.Duration(cfg.Payment.OrderTimeoutMinutes)*time.Minute,
	)
	verifyUc := usecase.NewDefaultVerificationUsecase(
		transactionRepo,
		auditTrail,
		gateway,
		settlementUc,
		pub,
		paymentMetrics,
		cfg.Payment.MaxVerifyAttempts,
		cfg.Payment.StrictFetch,
	)
	webhookUc := usecase.NewDefaultWebhookUsecase(transactionRepo, auditTrail, gateway, settlementUc, pub, paymentMetrics)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	// Expire abandoned pending orders
	reaper := usecase.NewExpiryReaper(transactionRepo, paymentMetrics, time.Minute)
	go reaper.Start(workerCtx)

	// Retry credit grants that failed after completion
	go settlementUc.StartReconciler(workerCtx, time.Minute)

	paymentHandler := httpapi.NewPaymentHandler(orderUc, verifyUc, gateway)
	webhookHandler := httpapi.NewWebhookHandler(webhookUc)
	server := httpapi.NewServer(fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port), paymentHandler, webhookHandler)

	go func() {
		log.Printf("HTTP server started on %s:%s\n", cfg.HTTPServer.Host, cfg.HTTPServer.Port)
		if err := server.Run(); err != nil {
			log.Printf("http server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	stopWorkers()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("server stopped")
}

func setupLogger(cfg *config.LogConfig) {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func seedPlans(planRepo *repository.DefaultPlanRepository, cfg *config.PaymentConfig) error {
	starterPrice, err := decimal.NewFromString(cfg.Plans.StarterPrice)
	if err != nil {
		return fmt.Errorf("invalid starter price: %w", err)
	}
	proPrice, err := decimal.NewFromString(cfg.Plans.ProPrice)
	if err != nil {
		return fmt.Errorf("invalid pro price: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return planRepo.SeedDefaults(ctx, []*domain.Plan{
		{Name: "free", Price: decimal.Zero, Credits: cfg.Plans.FreeCredits, IsActive: true},
		{Name: "starter", Price: starterPrice, Credits: cfg.Plans.StarterCredits, IsActive: true},
		{Name: "pro", Price: proPrice, Credits: cfg.Plans.ProCredits, IsActive: true},
	})
}
