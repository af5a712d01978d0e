package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/shopspring/decimal"
)

type PaymentConfig struct {
	Env            string `yaml:"env"`
	HTTPServer     `yaml:"http_server"`
	PaymentDB      `yaml:"payment_db"`
	Redis          `yaml:"redis"`
	KafkaService   `yaml:"kafka-service"`
	Gateway        `yaml:"gateway"`
	CreditsService `yaml:"credits-service"`
	Payment        `yaml:"payment"`
	Plans          `yaml:"plans"`
	LogConfig      `yaml:"log_config"`
}

type HTTPServer struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type PaymentDB struct {
	Dsn            string `yaml:"dsn"`
	MigrationsPath string `yaml:"migrations_path"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaService struct {
	Host  string `yaml:"host"`
	Port  string `yaml:"port"`
	Topic string `yaml:"topic" env-default:"payment-events"`
}

type Gateway struct {
	BaseURL       string        `yaml:"base_url" env:"GATEWAY_BASE_URL" env-default:"https://api.razorpay.com"`
	KeyID         string        `yaml:"key_id" env:"GATEWAY_KEY_ID"`
	KeySecret     string        `yaml:"key_secret" env:"GATEWAY_KEY_SECRET"`
	WebhookSecret string        `yaml:"webhook_secret" env:"GATEWAY_WEBHOOK_SECRET"`
	Timeout       time.Duration `yaml:"timeout" env-default:"10s"`
}

type CreditsService struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type Payment struct {
	Currency            string `yaml:"currency" env-default:"INR"`
	OrderRateLimitHour  int    `yaml:"order_rate_limit_hour" env-default:"10"`
	MaxVerifyAttempts   int    `yaml:"max_verify_attempts" env-default:"5"`
	MaxAmountRaw        string `yaml:"max_amount" env-default:"100000"`
	OrderTimeoutMinutes int    `yaml:"order_timeout_minutes" env-default:"30"`
	StrictFetch         bool   `yaml:"strict_fetch" env-default:"false"`

	MaxAmount decimal.Decimal `yaml:"-"`
}

type Plans struct {
	FreeCredits    int64  `yaml:"free_credits" env-default:"10"`
	StarterPrice   string `yaml:"starter_price" env-default:"999"`
	StarterCredits int64  `yaml:"starter_credits" env-default:"500"`
	ProPrice       string `yaml:"pro_price" env-default:"2499"`
	ProCredits     int64  `yaml:"pro_credits" env-default:"2000"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogOutput string `yaml:"log_output"`
}

func MustLoad() *PaymentConfig {

	// Processing env config variable and file
	configPath := os.Getenv("PAYMENT_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("PAYMENT_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	// YAML to struct object
	var cfg PaymentConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	maxAmount, err := decimal.NewFromString(cfg.Payment.MaxAmountRaw)
	if err != nil {
		log.Fatalf("invalid payment.max_amount: %v", err)
	}
	cfg.Payment.MaxAmount = maxAmount

	return &cfg
}
