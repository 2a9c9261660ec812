// Package subscriptioncalendar собирает HTTP-приложение календаря подписок:
// хранилище, кеш, сервис и маршруты.
package subscriptioncalendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"golang.org/x/sync/errgroup"

	"github.com/magabrotheeeer/subscription-calendar/internal/cache"
	"github.com/magabrotheeeer/subscription-calendar/internal/config"
	"github.com/magabrotheeeer/subscription-calendar/internal/http/handlers/subscription/health"
	"github.com/magabrotheeeer/subscription-calendar/internal/lib/jwt"
	"github.com/magabrotheeeer/subscription-calendar/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-calendar/internal/migrations"
	subservice "github.com/magabrotheeeer/subscription-calendar/internal/services/subscription"
	"github.com/magabrotheeeer/subscription-calendar/internal/storage/memory"
	"github.com/magabrotheeeer/subscription-calendar/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

// store хранилище подписок вместе с поиском предложений.
type store interface {
	subservice.SubscriptionRepository
	subservice.OfferFinder
}

type App struct {
	server  *http.Server
	logger  *slog.Logger
	closers []func() error
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.New"

	a := &App{logger: logger}

	var (
		subs    store
		checker health.Checker
	)
	switch cfg.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory storage, data is lost on restart")
		memStore := memory.New()
		if err := memStore.Seed(memory.DefaultCatalog); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		subs = memStore
	default:
		db, err := repository.New(ctx, cfg.StorageConnectionString)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.closers = append(a.closers, db.Close)
		if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
			a.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		subs, checker = db, db
	}

	var snapshots subservice.Cache = cache.Nop{}
	if cfg.AddressRedis != "" {
		redisCache, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.closers = append(a.closers, redisCache.Close)
		snapshots = redisCache
	} else {
		logger.Info("redis address is empty, cache disabled")
	}

	subscriptionService := subservice.NewSubscriptionService(subs, subs, snapshots, cfg.CacheTTL, logger)
	tokens := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, subscriptionService, tokens, checker)

	a.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return a, nil
}

// Handler возвращает корневой обработчик приложения.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run запускает HTTP-сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		return a.server.Shutdown(timeoutCtx)
	})
	return g.Wait()
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("failed to close resource", sl.Err(err))
		}
	}
	a.closers = nil
}
