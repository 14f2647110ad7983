// Package metrics описывает метрики prometheus, которые пишет магазин.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор счётчиков и гистограмм приложения.
type Metrics struct {
	OrderTransitions *prometheus.CounterVec
	LoginAttempts    *prometheus.CounterVec
	Notifications    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
}

// New регистрирует метрики в reg. nil означает глобальный регистратор.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		OrderTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vpnstore_order_transitions_total",
			Help: "Order status transitions.",
		}, []string{"from", "to"}),
		LoginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vpnstore_login_attempts_total",
			Help: "Login attempts by scope and result.",
		}, []string{"scope", "result"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vpnstore_notifications_total",
			Help: "Delivery notifications by result.",
		}, []string{"result"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vpnstore_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}
	reg.MustRegister(m.OrderTransitions, m.LoginAttempts, m.Notifications, m.RequestDuration)
	return m
}

// Transition учитывает переход заказа. Безопасен для nil.
func (m *Metrics) Transition(from, to string) {
	if m == nil {
		return
	}
	m.OrderTransitions.WithLabelValues(from, to).Inc()
}

// Login учитывает попытку входа.
func (m *Metrics) Login(scope, result string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(scope, result).Inc()
}

// Notification учитывает результат отправки уведомления.
func (m *Metrics) Notification(result string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(result).Inc()
}

// Middleware замеряет длительность запросов.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.RequestDuration.WithLabelValues(r.Method, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
