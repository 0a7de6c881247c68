// Package metrics объявляет Prometheus-метрики BookEase. Методы безопасны
// для nil-получателя, поэтому сервисы могут работать без метрик (в тестах).
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bookease"

// Metrics набор метрик приложения.
type Metrics struct {
	httpRequests         *prometheus.CounterVec
	httpDuration         *prometheus.HistogramVec
	subscriptionsActive  *prometheus.CounterVec
	subscriptionsExpired prometheus.Counter
	paymentVerifications *prometheus.CounterVec
	paymentOrders        *prometheus.CounterVec
	signInFailures       prometheus.Counter
}

// New создаёт метрики и регистрирует их в reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		subscriptionsActive: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscriptions_activated_total",
			Help:      "Subscriptions activated after a verified payment.",
		}, []string{"package_type", "billing_cycle"}),
		subscriptionsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscriptions_expired_total",
			Help:      "Subscriptions moved to expired by the status sweep.",
		}),
		paymentVerifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_verifications_total",
			Help:      "Payment verification attempts by result.",
		}, []string{"result"}),
		paymentOrders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_orders_total",
			Help:      "Payment orders requested from the gateway by result.",
		}, []string{"result"}),
		signInFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signin_failures_total",
			Help:      "Failed sign-in attempts.",
		}),
	}
	reg.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.subscriptionsActive,
		m.subscriptionsExpired,
		m.paymentVerifications,
		m.paymentOrders,
		m.signInFailures,
	)
	return m
}

// ObserveHTTP учитывает завершённый HTTP-запрос.
func (m *Metrics) ObserveHTTP(route, method string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// SubscriptionActivated учитывает новую подписку.
func (m *Metrics) SubscriptionActivated(packageType, billingCycle string) {
	if m == nil {
		return
	}
	m.subscriptionsActive.WithLabelValues(packageType, billingCycle).Inc()
}

// SubscriptionsExpired учитывает n истёкших подписок.
func (m *Metrics) SubscriptionsExpired(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.subscriptionsExpired.Add(float64(n))
}

// PaymentVerification учитывает результат проверки оплаты: ok, replay, rejected.
func (m *Metrics) PaymentVerification(result string) {
	if m == nil {
		return
	}
	m.paymentVerifications.WithLabelValues(result).Inc()
}

// PaymentOrder учитывает результат создания заказа: ok или failed.
func (m *Metrics) PaymentOrder(result string) {
	if m == nil {
		return
	}
	m.paymentOrders.WithLabelValues(result).Inc()
}

// SignInFailure учитывает неудачную попытку входа.
func (m *Metrics) SignInFailure() {
	if m == nil {
		return
	}
	m.signInFailures.Inc()
}
