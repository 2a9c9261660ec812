// Package services содержит бизнес-логику управления подписками и построения календаря.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/subscription-calendar/internal/aggregation"
	"github.com/magabrotheeeer/subscription-calendar/internal/billing"
	"github.com/magabrotheeeer/subscription-calendar/internal/lib/calendar"
	"github.com/magabrotheeeer/subscription-calendar/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-calendar/internal/metrics"
	"github.com/magabrotheeeer/subscription-calendar/internal/models"
	"github.com/magabrotheeeer/subscription-calendar/internal/storage"
)

// SubscriptionRepository определяет методы для работы с подписками в хранилище.
type SubscriptionRepository interface {
	// Create добавляет новую подписку и возвращает её ID.
	Create(ctx context.Context, sub models.Subscription) (int64, error)
	// Read возвращает подписку пользователя по ID.
	Read(ctx context.Context, userID string, id int64) (*models.Subscription, error)
	// Update перезаписывает подписку и возвращает количество изменённых записей.
	Update(ctx context.Context, sub models.Subscription) (int, error)
	// Remove удаляет подписку и возвращает количество удалённых записей.
	Remove(ctx context.Context, userID string, id int64) (int, error)
	// List возвращает снимок всех подписок пользователя.
	List(ctx context.Context, userID string) ([]models.Subscription, error)
}

// OfferFinder ищет предложения, похожие на подписку.
type OfferFinder interface {
	FindSimilar(ctx context.Context, q models.OfferQuery) ([]models.Offer, error)
}

// Cache описывает методы для кеширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(ctx context.Context, key string) error
}

// SubscriptionService реализует бизнес-логику работы с подписками, включая кеширование
// снимка подписок пользователя.
type SubscriptionService struct {
	repo     SubscriptionRepository
	offers   OfferFinder
	cache    Cache
	cacheTTL time.Duration
	log      *slog.Logger
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(repo SubscriptionRepository, offers OfferFinder, cache Cache, cacheTTL time.Duration, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:     repo,
		offers:   offers,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

func listCacheKey(userID string) string {
	return "subscriptions:" + userID
}

// Create проверяет запрос, сохраняет подписку и возвращает её ID.
func (s *SubscriptionService) Create(ctx context.Context, userID string, req models.SubscriptionRequest) (int64, error) {
	sub, err := billing.NewSubscription(userID, req)
	if err != nil {
		return 0, err
	}

	id, err := s.repo.Create(ctx, sub)
	if err != nil {
		return 0, err
	}
	s.log.Info("created new subscription", slog.Int64("id", id))

	s.invalidate(ctx, userID)
	return id, nil
}

// Read возвращает подписку пользователя по ID.
func (s *SubscriptionService) Read(ctx context.Context, userID string, id int64) (*models.Subscription, error) {
	return s.repo.Read(ctx, userID, id)
}

// Update проверяет запрос и перезаписывает подписку.
// Если подписки нет у пользователя, возвращает storage.ErrNotFound.
func (s *SubscriptionService) Update(ctx context.Context, userID string, id int64, req models.SubscriptionRequest) error {
	sub, err := billing.NewSubscription(userID, req)
	if err != nil {
		return err
	}
	sub.ID = id

	n, err := s.repo.Update(ctx, sub)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("subscription %d: %w", id, storage.ErrNotFound)
	}
	s.log.Info("updated subscription", slog.Int64("id", id))

	s.invalidate(ctx, userID)
	return nil
}

// Remove удаляет подписку пользователя.
// Если подписки нет у пользователя, возвращает storage.ErrNotFound.
func (s *SubscriptionService) Remove(ctx context.Context, userID string, id int64) error {
	n, err := s.repo.Remove(ctx, userID, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("subscription %d: %w", id, storage.ErrNotFound)
	}
	s.log.Info("removed subscription", slog.Int64("id", id))

	s.invalidate(ctx, userID)
	return nil
}

// List возвращает снимок подписок пользователя, используя кеш или репозиторий.
func (s *SubscriptionService) List(ctx context.Context, userID string) ([]models.Subscription, error) {
	cacheKey := listCacheKey(userID)

	var cached []models.Subscription
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	switch {
	case err != nil:
		metrics.CacheRequests.WithLabelValues("error").Inc()
		s.log.Warn("failed to read from cache", slog.String("key", cacheKey), sl.Err(err))
	case found:
		metrics.CacheRequests.WithLabelValues("hit").Inc()
		return cached, nil
	default:
		metrics.CacheRequests.WithLabelValues("miss").Inc()
	}

	subs, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, subs, s.cacheTTL); err != nil {
		s.log.Warn("failed to add to cache", slog.String("key", cacheKey), sl.Err(err))
	}
	return subs, nil
}

// Calendar строит сводку календаря пользователя по окну window относительно дня today.
// Подписки с некорректным правилом не прерывают расчет: они попадают в
// Summary.Excluded и пишутся в лог, а сводка по остальным возвращается без ошибки.
func (s *SubscriptionService) Calendar(ctx context.Context, userID string, window calendar.Window, today time.Time) (aggregation.Summary, error) {
	subs, err := s.List(ctx, userID)
	if err != nil {
		return aggregation.Summary{}, err
	}

	start := time.Now()
	summary, err := aggregation.Summarize(subs, window, today)
	metrics.CalendarBuildDuration.Observe(time.Since(start).Seconds())
	metrics.CalendarWindowDays.Observe(float64(len(window)))

	if err != nil {
		malformed := billing.MalformedRules(err)
		if len(malformed) == 0 {
			return aggregation.Summary{}, err
		}
		for _, m := range malformed {
			metrics.MalformedRules.WithLabelValues(m.Field).Inc()
			s.log.Warn("subscription excluded from calendar",
				slog.Int64("subscription_id", m.SubscriptionID),
				slog.String("field", m.Field),
				sl.Err(m))
		}
	}
	return summary, nil
}

// SimilarOffers возвращает до limit предложений той же категории или компании,
// которые дешевле текущей подписки. Если цена подписки не задана, ограничения по цене нет.
func (s *SubscriptionService) SimilarOffers(ctx context.Context, userID string, id int64, limit int) ([]models.Offer, error) {
	sub, err := s.repo.Read(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.offers.FindSimilar(ctx, models.OfferQuery{
		Title:    sub.Title,
		Category: sub.Category,
		Company:  sub.Company,
		MaxPrice: sub.Price,
		Limit:    limit,
	})
}

func (s *SubscriptionService) invalidate(ctx context.Context, userID string) {
	cacheKey := listCacheKey(userID)
	if err := s.cache.Invalidate(ctx, cacheKey); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", cacheKey), sl.Err(err))
	}
}

