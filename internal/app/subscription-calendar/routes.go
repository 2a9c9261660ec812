package subscriptioncalendar

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	// Регистрация описания API для swagger UI.
	_ "github.com/magabrotheeeer/subscription-calendar/docs"
	"github.com/magabrotheeeer/subscription-calendar/internal/config"
	"github.com/magabrotheeeer/subscription-calendar/internal/http/handlers/calendar"
	"github.com/magabrotheeeer/subscription-calendar/internal/http/handlers/subscription/create"
	"github.com/magabrotheeeer/subscription-calendar/internal/http/handlers/subscription/health"
	"github.com/magabrotheeeer/subscription-calendar/internal/http/handlers/subscription/list"
	"github.com/magabrotheeeer/subscription-calendar/internal/http/handlers/subscription/offers"
	"github.com/magabrotheeeer/subscription-calendar/internal/http/handlers/subscription/read"
	"github.com/magabrotheeeer/subscription-calendar/internal/http/handlers/subscription/remove"
	"github.com/magabrotheeeer/subscription-calendar/internal/http/handlers/subscription/update"
	"github.com/magabrotheeeer/subscription-calendar/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-calendar/internal/metrics"
	subservice "github.com/magabrotheeeer/subscription-calendar/internal/services/subscription"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(
	r chi.Router,
	logger *slog.Logger,
	cfg *config.Config,
	subscriptionService *subservice.SubscriptionService,
	tokens middlewarectx.TokenParser,
	checker health.Checker,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		metrics.Middleware,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.JWTMiddleware(tokens, logger))
		r.Use(middlewarectx.RateLimitMiddleware(logger, cfg.RPS, cfg.Burst))

		r.Post("/subscriptions", create.New(logger, subscriptionService).ServeHTTP)
		r.Get("/subscriptions", list.New(logger, subscriptionService).ServeHTTP)
		r.Get("/subscriptions/{id}", read.New(logger, subscriptionService).ServeHTTP)
		r.Put("/subscriptions/{id}", update.New(logger, subscriptionService).ServeHTTP)
		r.Delete("/subscriptions/{id}", remove.New(logger, subscriptionService).ServeHTTP)
		r.Get("/subscriptions/{id}/offers", offers.New(logger, subscriptionService, cfg.OffersLimit).ServeHTTP)

		calendarHandler := calendar.New(logger, subscriptionService, calendar.Options{
			WeekStart: cfg.FirstWeekday(),
			MaxDays:   cfg.MaxWindowDays,
		})
		r.Get("/calendar", calendarHandler.ServeHTTP)
		r.Post("/calendar", calendarHandler.ServeHTTP)
	})

	r.Get("/health", health.New(logger, checker).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
