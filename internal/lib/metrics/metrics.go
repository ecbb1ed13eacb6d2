// Package metrics описывает прикладные метрики Prometheus.
//
// Методы безопасно вызывать на nil *Metrics: это позволяет не передавать
// метрики в тестах и утилитах.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taskshare"

// Metrics — набор счётчиков бизнес-операций.
type Metrics struct {
	shareGrants      *prometheus.CounterVec
	trialActivations prometheus.Counter
	webhookEvents    *prometheus.CounterVec
	checkoutSessions *prometheus.CounterVec
	notifications    *prometheus.CounterVec
}

// New регистрирует метрики в reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		shareGrants: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "share_grants_total",
			Help:      "Share grant attempts by outcome.",
		}, []string{"outcome"}),
		trialActivations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trial_activations_total",
			Help:      "Premium trials activated.",
		}),
		webhookEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_events_total",
			Help:      "Payment webhook events by kind and outcome.",
		}, []string{"kind", "outcome"}),
		checkoutSessions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_sessions_total",
			Help:      "Checkout session requests by outcome.",
		}, []string{"outcome"}),
		notifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notifications by kind and outcome.",
		}, []string{"kind", "outcome"}),
	}
}

// ShareGrant учитывает попытку открыть доступ; outcome — "ok" или код причины отказа.
func (m *Metrics) ShareGrant(outcome string) {
	if m == nil {
		return
	}
	m.shareGrants.WithLabelValues(outcome).Inc()
}

// TrialActivated учитывает активацию пробного периода.
func (m *Metrics) TrialActivated() {
	if m == nil {
		return
	}
	m.trialActivations.Inc()
}

// WebhookEvent учитывает обработанное событие платёжного провайдера.
func (m *Metrics) WebhookEvent(kind, outcome string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(kind, outcome).Inc()
}

// CheckoutSession учитывает попытку создать сессию оплаты.
func (m *Metrics) CheckoutSession(outcome string) {
	if m == nil {
		return
	}
	m.checkoutSessions.WithLabelValues(outcome).Inc()
}

// Notification учитывает отправку уведомления.
func (m *Metrics) Notification(kind, outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind, outcome).Inc()
}
