// Package metrics содержит prometheus-коллекторы сервиса.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Исходы регистрации и событий аутентификации.
const (
	OutcomeSuccess        = "success"
	OutcomeRejected       = "rejected"
	OutcomeManualFollowup = "manual_followup"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "callassist",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "callassist",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	// RegistrationTotal итоги регистрации по сценарию.
	RegistrationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "callassist",
			Name:      "registration_total",
			Help:      "Registration attempts by flow and outcome",
		},
		[]string{"flow", "outcome"},
	)

	// RegistrationStageFailures этапы, на которых оборвалась регистрация.
	RegistrationStageFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "callassist",
			Name:      "registration_stage_failures_total",
			Help:      "Registration failures by flow and the stage that failed",
		},
		[]string{"flow", "stage"},
	)

	authEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "callassist",
			Name:      "auth_events_total",
			Help:      "Login, refresh, logout and password change events",
		},
		[]string{"event", "outcome"},
	)

	// ManualFollowupClaims число платежей, ждущих ручной активации.
	ManualFollowupClaims = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "callassist",
			Name:      "manual_followup_claims",
			Help:      "Payment claims waiting for manual activation",
		},
	)

	// RevokedTokensPurged сколько записей отзыва удалено планировщиком.
	RevokedTokensPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "callassist",
			Name:      "revoked_tokens_purged_total",
			Help:      "Expired revocation records removed by the scheduler",
		},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware считает запросы и их длительность по шаблону маршрута chi.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		routePattern := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			routePattern = rctx.RoutePattern()
		}

		httpRequestsTotal.WithLabelValues(r.Method, routePattern, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, routePattern).Observe(time.Since(start).Seconds())
	})
}

// Handler отдаёт метрики в формате prometheus.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordRegistration фиксирует итог регистрации.
func RecordRegistration(flow, outcome string) {
	RegistrationTotal.WithLabelValues(flow, outcome).Inc()
}

// RecordStageFailure фиксирует этап, на котором оборвалась регистрация.
func RecordStageFailure(flow, stage string) {
	RegistrationStageFailures.WithLabelValues(flow, stage).Inc()
}

// RecordAuthEvent фиксирует событие аутентификации.
func RecordAuthEvent(event, outcome string) {
	authEventsTotal.WithLabelValues(event, outcome).Inc()
}

// SetManualFollowupClaims выставляет число платежей, ждущих ручной активации.
func SetManualFollowupClaims(count int) {
	ManualFollowupClaims.Set(float64(count))
}

// AddPurgedRevokedTokens увеличивает счётчик удалённых записей отзыва.
func AddPurgedRevokedTokens(n int64) {
	RevokedTokensPurged.Add(float64(n))
}
