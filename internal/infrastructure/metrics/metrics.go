package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PaymentMetrics holds every payment counter. A nil *PaymentMetrics is a
// valid no-op receiver, so usecases stay testable without a registry.
type PaymentMetrics struct {
	OrdersCreatedTotal       prometheus.CounterVec
	OrdersCreatedAmountTotal prometheus.CounterVec

	VerificationsTotal        prometheus.CounterVec
	VerificationFailuresTotal prometheus.CounterVec

	WebhookEventsTotal   prometheus.CounterVec
	WebhookRejectedTotal prometheus.Counter

	TransactionsExpiredTotal prometheus.Counter

	SettlementsTotal    prometheus.CounterVec
	CreditsGrantedTotal prometheus.Counter

	GatewayRequestDuration prometheus.HistogramVec
}

func NewPaymentMetrics() *PaymentMetrics {
	return &PaymentMetrics{
		OrdersCreatedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_orders_created_total",
				Help: "Total created payment orders",
			},
			[]string{"plan", "currency"},
		),

		OrdersCreatedAmountTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_orders_created_amount_total",
				Help: "Total amount of created payment orders",
			},
			[]string{"currency"},
		),

		VerificationsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_verifications_total",
				Help: "Total verification calls by result",
			},
			[]string{"result"},
		),

		VerificationFailuresTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_verification_failures_total",
				Help: "Total failed verification calls by reason",
			},
			[]string{"reason"},
		),

		WebhookEventsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_webhook_events_total",
				Help: "Total processed webhook events by type",
			},
			[]string{"event"},
		),

		WebhookRejectedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "payment_webhook_rejected_total",
				Help: "Total webhooks rejected for a bad signature",
			},
		),

		TransactionsExpiredTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "payment_transactions_expired_total",
				Help: "Total transactions moved to expired",
			},
		),

		SettlementsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_settlements_total",
				Help: "Total credit settlement calls by result",
			},
			[]string{"result"},
		),

		CreditsGrantedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "payment_credits_granted_total",
				Help: "Total credits granted through settlements",
			},
		),

		GatewayRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "payment_gateway_request_duration_seconds",
				Help:    "Latency of gateway REST calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (m *PaymentMetrics) RecordOrderCreated(plan, currency string, amount float64) {
	if m == nil {
		return
	}
	m.OrdersCreatedTotal.WithLabelValues(plan, currency).Inc()
	m.OrdersCreatedAmountTotal.WithLabelValues(currency).Add(amount)
}

func (m *PaymentMetrics) RecordVerification(result string) {
	if m == nil {
		return
	}
	m.VerificationsTotal.WithLabelValues(result).Inc()
}

func (m *PaymentMetrics) RecordVerificationFailure(reason string) {
	if m == nil {
		return
	}
	m.VerificationFailuresTotal.WithLabelValues(reason).Inc()
}

func (m *PaymentMetrics) RecordWebhookEvent(event string) {
	if m == nil {
		return
	}
	m.WebhookEventsTotal.WithLabelValues(event).Inc()
}

func (m *PaymentMetrics) RecordWebhookRejected() {
	if m == nil {
		return
	}
	m.WebhookRejectedTotal.Inc()
}

func (m *PaymentMetrics) RecordExpired(count int64) {
	if m == nil || count <= 0 {
		return
	}
	m.TransactionsExpiredTotal.Add(float64(count))
}

func (m *PaymentMetrics) ObserveGatewayRequest(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.GatewayRequestDuration.WithLabelValues(operation).Observe(seconds)
}

func (m *PaymentMetrics) RecordSettlement(result string, credits int64) {
	if m == nil {
		return
	}
	m.SettlementsTotal.WithLabelValues(result).Inc()
	if result == "success" {
		m.CreditsGrantedTotal.Add(float64(credits))
	}
}
