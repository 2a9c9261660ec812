// Package metrics регистрирует метрики Prometheus сервиса календаря.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// CalendarBuildDuration время построения сводки календаря.
	CalendarBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "calendar_build_duration_seconds",
		Help:    "Time spent building calendar summaries",
		Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5},
	})

	// CalendarWindowDays длина запрошенных окон в днях.
	CalendarWindowDays = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "calendar_window_days",
		Help:    "Number of days in requested calendar windows",
		Buckets: []float64{1, 7, 31, 92, 366},
	})

	// MalformedRules число подписок, исключенных из расчета из-за некорректного правила.
	MalformedRules = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "billing_malformed_rules_total",
		Help: "Subscriptions excluded from calculations because of a malformed billing rule",
	}, []string{"field"})

	// CacheRequests обращения к кешу подписок.
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "subscription_cache_requests_total",
		Help: "Subscription snapshot cache lookups",
	}, []string{"result"}) // hit, miss, error
)

// Middleware считает запросы и их длительность по шаблону маршрута chi.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
