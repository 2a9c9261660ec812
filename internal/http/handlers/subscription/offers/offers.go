// Package offers реализует HTTP-обработчик поиска более дешёвых похожих предложений
// для подписки пользователя.
package offers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-calendar/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-calendar/internal/http/response"
	"github.com/magabrotheeeer/subscription-calendar/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-calendar/internal/models"
	"github.com/magabrotheeeer/subscription-calendar/internal/storage"
)

// MaxLimit верхняя граница параметра limit.
const MaxLimit = 50

type Handler struct {
	log          *slog.Logger
	service      Service
	defaultLimit int
}

type Service interface {
	SimilarOffers(ctx context.Context, userID string, id int64, limit int) ([]models.Offer, error)
}

// New создает Handler. defaultLimit используется, если limit не передан в запросе.
func New(log *slog.Logger, service Service, defaultLimit int) *Handler {
	if defaultLimit <= 0 || defaultLimit > MaxLimit {
		defaultLimit = 5
	}
	return &Handler{
		log:          log,
		service:      service,
		defaultLimit: defaultLimit,
	}
}

// ServeHTTP godoc
// @Summary Похожие предложения дешевле подписки
// @Tags Subscriptions
// @Produce  json
// @Param id path int true "ID подписки"
// @Param limit query int false "Количество предложений (1..50)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Router /subscriptions/{id}/offers [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.offers"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	limit := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > MaxLimit {
			log.Info("invalid limit", slog.String("limit", limitStr))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("limit must be a number from 1 to 50"))
			return
		}
	}

	userID, ok := middlewarectx.UserID(r.Context())
	if !ok {
		log.Error("user_uid not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	res, err := h.service.SimilarOffers(r.Context(), userID, id, limit)
	if errors.Is(err, storage.ErrNotFound) {
		log.Info("subscription not found", slog.Int64("id", id))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("subscription not found"))
		return
	}
	if err != nil {
		log.Error("failed to find offers", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not find offers"))
		return
	}
	if res == nil {
		res = []models.Offer{}
	}

	log.Info("similar offers found", slog.Int64("id", id), slog.Int("count", len(res)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"offers": res,
	}))
}
