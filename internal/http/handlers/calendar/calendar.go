// Package calendar реализует HTTP-обработчик календаря списаний: разбирает
// окно дат из запроса и возвращает сводку по нему.
//
// GET принимает либо view=month|week|day и date, либо from и to.
// POST принимает явный список дней в теле запроса.
// В обоих случаях today по умолчанию равен текущему дню сервера.
package calendar

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/subscription-calendar/internal/aggregation"
	"github.com/magabrotheeeer/subscription-calendar/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-calendar/internal/http/response"
	cal "github.com/magabrotheeeer/subscription-calendar/internal/lib/calendar"
	"github.com/magabrotheeeer/subscription-calendar/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-calendar/internal/models"
)

const (
	ViewMonth = "month"
	ViewWeek  = "week"
	ViewDay   = "day"
)

// MaxBodyBytes ограничение на размер тела POST-запроса.
const MaxBodyBytes = 64 << 10

type Service interface {
	Calendar(ctx context.Context, userID string, window cal.Window, today time.Time) (aggregation.Summary, error)
}

// Options настройки окна календаря.
type Options struct {
	WeekStart time.Weekday
	// MaxDays максимальная длина окна, 0 снимает ограничение.
	MaxDays int
	// Now источник текущего времени, по умолчанию time.Now.
	Now func() time.Time
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
	opts     Options
}

func New(log *slog.Logger, service Service, opts Options) *Handler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
		opts:     opts,
	}
}

// requestError ошибка разбора окна с HTTP-статусом ответа.
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string {
	return e.msg
}

func badRequest(msg string) *requestError {
	return &requestError{status: http.StatusBadRequest, msg: msg}
}

// ServeHTTP godoc
// @Summary Календарь списаний
// @Tags Calendar
// @Accept  json
// @Produce  json
// @Param view query string false "month, week или day"
// @Param date query string false "День внутри окна, YYYY-MM-DD"
// @Param from query string false "Начало диапазона, YYYY-MM-DD"
// @Param to query string false "Конец диапазона, YYYY-MM-DD"
// @Param today query string false "Текущий день, YYYY-MM-DD"
// @Param request body models.CalendarRequest false "Явный список дней (POST)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 413 {object} response.ErrorResponse "Слишком большое тело запроса"
// @Failure 422 {object} response.ErrorResponse "Некорректное окно дат"
// @Router /calendar [get]
// @Router /calendar [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.calendar"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var (
		window cal.Window
		today  time.Time
		err    error
	)
	if r.Method == http.MethodPost {
		var req models.CalendarRequest
		if err := render.DecodeJSON(http.MaxBytesReader(w, r.Body, MaxBodyBytes), &req); err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				render.Status(r, http.StatusRequestEntityTooLarge)
				render.JSON(w, r, response.Error("request body is too large"))
				return
			}
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))
			return
		}
		if err := cal.CheckLength(len(req.Dates), h.opts.MaxDays); err != nil {
			log.Info("invalid calendar window", sl.Err(err))
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error(windowMessage(err)))
			return
		}
		if err := h.validate.Struct(req); err != nil {
			log.Error("validation failed", sl.Err(err))
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
			return
		}
		window, today, err = h.windowFromBody(req)
	} else {
		window, today, err = h.windowFromQuery(r)
	}
	if err == nil {
		err = window.Limit(h.opts.MaxDays)
	}
	if err != nil {
		status := http.StatusUnprocessableEntity
		var reqErr *requestError
		if errors.As(err, &reqErr) {
			status = reqErr.status
		}
		log.Info("invalid calendar window", sl.Err(err))
		render.Status(r, status)
		render.JSON(w, r, response.Error(windowMessage(err)))
		return
	}

	userID, ok := middlewarectx.UserID(r.Context())
	if !ok {
		log.Error("user_uid not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	summary, err := h.service.Calendar(r.Context(), userID, window, today)
	if err != nil {
		log.Error("failed to build calendar", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not build calendar"))
		return
	}

	log.Info("calendar built",
		sl.Day("from", window.First()),
		sl.Day("to", window.Last()),
		slog.Int("excluded", len(summary.Excluded)),
	)
	render.JSON(w, r, response.StatusOKWithData(newView(summary)))
}

func (h *Handler) windowFromQuery(r *http.Request) (cal.Window, time.Time, error) {
	q := r.URL.Query()

	today, err := h.parseToday(q.Get("today"))
	if err != nil {
		return nil, time.Time{}, err
	}

	from, to := q.Get("from"), q.Get("to")
	if from != "" || to != "" {
		if from == "" || to == "" {
			return nil, time.Time{}, badRequest("from and to must be given together")
		}
		first, err := cal.ParseDay(from)
		if err != nil {
			return nil, time.Time{}, badRequest("from must be a date in format YYYY-MM-DD")
		}
		last, err := cal.ParseDay(to)
		if err != nil {
			return nil, time.Time{}, badRequest("to must be a date in format YYYY-MM-DD")
		}
		if err := cal.CheckLength(cal.Span(first, last), h.opts.MaxDays); err != nil {
			return nil, time.Time{}, err
		}
		window, err := cal.Range(first, last)
		return window, today, err
	}

	date := today
	if s := q.Get("date"); s != "" {
		date, err = cal.ParseDay(s)
		if err != nil {
			return nil, time.Time{}, badRequest("date must be a date in format YYYY-MM-DD")
		}
	}

	switch view := q.Get("view"); view {
	case "", ViewMonth:
		return cal.MonthOf(date), today, nil
	case ViewWeek:
		return cal.WeekOf(date, h.opts.WeekStart), today, nil
	case ViewDay:
		return cal.Single(date), today, nil
	default:
		return nil, time.Time{}, badRequest("view must be one of: month week day")
	}
}

func (h *Handler) windowFromBody(req models.CalendarRequest) (cal.Window, time.Time, error) {
	today, err := h.parseToday(req.Today)
	if err != nil {
		return nil, time.Time{}, err
	}
	window, err := cal.ParseWindow(req.Dates)
	return window, today, err
}

func (h *Handler) parseToday(s string) (time.Time, error) {
	if s == "" {
		return cal.Day(h.opts.Now()), nil
	}
	today, err := cal.ParseDay(s)
	if err != nil {
		return time.Time{}, badRequest("today must be a date in format YYYY-MM-DD")
	}
	return today, nil
}

func windowMessage(err error) string {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return reqErr.msg
	case errors.Is(err, cal.ErrWindowTooLong):
		return cal.ErrWindowTooLong.Error()
	case errors.Is(err, cal.ErrNotContiguous):
		return cal.ErrNotContiguous.Error()
	case errors.Is(err, cal.ErrEmptyWindow):
		return cal.ErrEmptyWindow.Error()
	default:
		return "invalid date window"
	}
}
