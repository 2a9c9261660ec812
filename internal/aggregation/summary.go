package aggregation

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/subscription-calendar/internal/billing"
	"github.com/magabrotheeeer/subscription-calendar/internal/lib/calendar"
	"github.com/magabrotheeeer/subscription-calendar/internal/models"
)

// Exclusion подписка, исключённая из расчёта, и причина исключения.
type Exclusion struct {
	SubscriptionID int64  `json:"subscription_id"`
	Title          string `json:"title"`
	Reason         string `json:"reason"`
}

// Summary сводка по окну календаря.
//
// Суммы за сегодня, завтра и месяц считаются по реальным списаниям,
// WindowTotal учитывает каждое списание окна. Categories строится по списаниям окна.
// Excluded перечисляет подписки с некорректным правилом: если список не пуст,
// суммы частичные.
type Summary struct {
	Window        calendar.Window
	Today         time.Time
	TodayTotal    decimal.Decimal
	TomorrowTotal decimal.Decimal
	MonthTotal    decimal.Decimal
	WindowTotal   decimal.Decimal
	Buckets       DailyBuckets
	Categories    map[string]CategoryTotal
	Relative      RelativeDays
	Excluded      []Exclusion
}

// Partial сообщает, что часть подписок исключена из сводки.
func (s Summary) Partial() bool {
	return len(s.Excluded) > 0
}

// Summarize строит сводку по окну window относительно дня today.
// Ошибки некорректных правил возвращаются через errors.Join вместе с полной
// сводкой по остальным подпискам; каждая такая подписка перечислена в Excluded.
func Summarize(subs []models.Subscription, window calendar.Window, today time.Time) (Summary, error) {
	today = calendar.Day(today)

	valid := make([]models.Subscription, 0, len(subs))
	var errs []error
	excluded := make([]Exclusion, 0)
	for _, sub := range subs {
		if err := billing.Check(sub); err != nil {
			errs = append(errs, err)
			excluded = append(excluded, Exclusion{SubscriptionID: sub.ID, Title: sub.Title, Reason: err.Error()})
			continue
		}
		valid = append(valid, sub)
	}

	// Дальше работаем только с проверенными подписками, ошибок быть не может.
	buckets, err := BuildDailyBuckets(valid, window)
	if err != nil {
		return Summary{}, err
	}
	month, err := BuildDailyBuckets(valid, calendar.MonthOf(today))
	if err != nil {
		return Summary{}, err
	}
	dueToday, err := billing.SubscriptionsDueOn(valid, today)
	if err != nil {
		return Summary{}, err
	}
	dueTomorrow, err := billing.SubscriptionsDueOn(valid, calendar.Tomorrow(today))
	if err != nil {
		return Summary{}, err
	}
	relative, err := PartitionByRelativeDay(buckets.Subscriptions(), today)
	if err != nil {
		return Summary{}, err
	}

	var inWindow []models.Subscription
	for _, occ := range buckets.Occurrences() {
		inWindow = append(inWindow, occ.Subscription)
	}

	return Summary{
		Window:        window,
		Today:         today,
		TodayTotal:    TotalFor(dueToday),
		TomorrowTotal: TotalFor(dueTomorrow),
		MonthTotal:    month.Total(),
		WindowTotal:   buckets.Total(),
		Buckets:       buckets,
		Categories:    Categorize(inWindow),
		Relative:      relative,
		Excluded:      excluded,
	}, errors.Join(errs...)
}
