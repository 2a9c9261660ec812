// Package aggregation превращает списания подписок в сводки для календаря:
// списки по дням, суммы, суммы по категориям и разбивку на сегодня/завтра.
// Все функции чистые и не меняют входные срезы.
package aggregation

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/subscription-calendar/internal/billing"
	"github.com/magabrotheeeer/subscription-calendar/internal/lib/calendar"
	"github.com/magabrotheeeer/subscription-calendar/internal/models"
)

// Bucket подписки, списание по которым приходится на день Date.
type Bucket struct {
	Date          time.Time
	Subscriptions []models.Subscription
}

// DailyBuckets списки подписок по дням окна в порядке окна.
type DailyBuckets []Bucket

// BuildDailyBuckets для каждого дня окна собирает подписки, которые в этот день списываются.
// Дни без списаний получают пустой список. Внутри дня порядок совпадает с порядком subs.
// Подписки с некорректным правилом пропускаются, их ошибки возвращаются через errors.Join
// вместе с частичным результатом.
func BuildDailyBuckets(subs []models.Subscription, window calendar.Window) (DailyBuckets, error) {
	buckets := make(DailyBuckets, len(window))
	index := make(map[time.Time]int, len(window))
	for i, d := range window {
		day := calendar.Day(d)
		buckets[i] = Bucket{Date: day, Subscriptions: []models.Subscription{}}
		index[day] = i
	}

	var errs []error
	for _, sub := range subs {
		if err := billing.Check(sub); err != nil {
			errs = append(errs, err)
			continue
		}
		days, err := billing.OccurrencesIn(sub.BillingRule, window)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, d := range days {
			i := index[d]
			buckets[i].Subscriptions = append(buckets[i].Subscriptions, sub)
		}
	}
	return buckets, errors.Join(errs...)
}

// On возвращает подписки дня date или nil, если день не входит в окно.
func (b DailyBuckets) On(date time.Time) []models.Subscription {
	day := calendar.Day(date)
	for _, bucket := range b {
		if bucket.Date.Equal(day) {
			return bucket.Subscriptions
		}
	}
	return nil
}

// Map возвращает списки подписок по ISO-ключам дней.
func (b DailyBuckets) Map() map[string][]models.Subscription {
	m := make(map[string][]models.Subscription, len(b))
	for _, bucket := range b {
		m[calendar.Format(bucket.Date)] = bucket.Subscriptions
	}
	return m
}

// Occurrences разворачивает корзины в список списаний по возрастанию дат.
func (b DailyBuckets) Occurrences() []models.Occurrence {
	var out []models.Occurrence
	for _, bucket := range b {
		for _, sub := range bucket.Subscriptions {
			out = append(out, models.Occurrence{Date: bucket.Date, Subscription: sub})
		}
	}
	return out
}

// Subscriptions возвращает подписки, у которых есть хотя бы одно списание в окне,
// каждую один раз (по ID), в порядке первого появления.
func (b DailyBuckets) Subscriptions() []models.Subscription {
	seen := make(map[int64]struct{})
	out := make([]models.Subscription, 0)
	for _, bucket := range b {
		for _, sub := range bucket.Subscriptions {
			if _, ok := seen[sub.ID]; ok {
				continue
			}
			seen[sub.ID] = struct{}{}
			out = append(out, sub)
		}
	}
	return out
}

// Total сумма всех списаний окна: подписка учитывается столько раз, сколько раз она списывается.
func (b DailyBuckets) Total() decimal.Decimal {
	total := decimal.Zero
	for _, bucket := range b {
		total = total.Add(TotalFor(bucket.Subscriptions))
	}
	return total
}
