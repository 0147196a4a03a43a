// Package metrics регистрирует счётчики Prometheus сервиса.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Registry = prometheus.NewRegistry()

	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nobridge",
		Name:      "http_requests_total",
		Help:      "Количество HTTP запросов.",
	}, []string{"method", "route", "status"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "nobridge",
		Name:      "http_request_duration_seconds",
		Help:      "Длительность обработки HTTP запросов.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	InquiryTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nobridge",
		Name:      "inquiry_transitions_total",
		Help:      "Переходы запросов между статусами.",
	}, []string{"from", "to"})

	VerificationActions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nobridge",
		Name:      "verification_actions_total",
		Help:      "Действия с заявками на верификацию и их результат.",
	}, []string{"action", "outcome"})

	NotificationFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "nobridge",
		Name:      "notification_failures_total",
		Help:      "Уведомления, которые не удалось доставить.",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		HTTPRequests,
		HTTPDuration,
		InquiryTransitions,
		VerificationActions,
		NotificationFailures,
	)
}

// Handler отдаёт метрики в формате Prometheus.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

// InquiryTransition учитывает переход запроса. Для созданного запроса from пустой.
func InquiryTransition(from, to string) {
	if from == "" {
		from = "none"
	}
	InquiryTransitions.WithLabelValues(from, to).Inc()
}

// VerificationAction учитывает действие с заявкой: outcome - "ok" или код ошибки.
func VerificationAction(action, outcome string) {
	VerificationActions.WithLabelValues(action, outcome).Inc()
}
