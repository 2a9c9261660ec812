package aggregation

import (
	"errors"
	"time"

	"github.com/magabrotheeeer/subscription-calendar/internal/billing"
	"github.com/magabrotheeeer/subscription-calendar/internal/lib/calendar"
	"github.com/magabrotheeeer/subscription-calendar/internal/models"
)

// RelativeDays разбивка подписок окна относительно сегодняшнего дня.
type RelativeDays struct {
	Today        []models.Subscription `json:"today"`
	Tomorrow     []models.Subscription `json:"tomorrow"`
	RestOfWindow []models.Subscription `json:"rest_of_window"`
}

// PartitionByRelativeDay делит подписки на три группы по совпадению DueDay
// с числом сегодняшнего и завтрашнего дня. subs это подписки текущего окна,
// а не все подписки пользователя, поэтому RestOfWindow ограничена окном.
// Подписки с некорректным правилом не попадают ни в одну группу.
func PartitionByRelativeDay(subs []models.Subscription, today time.Time) (RelativeDays, error) {
	todayDay := calendar.Day(today).Day()
	tomorrowDay := calendar.Tomorrow(today).Day()

	out := RelativeDays{
		Today:        []models.Subscription{},
		Tomorrow:     []models.Subscription{},
		RestOfWindow: []models.Subscription{},
	}
	var errs []error
	for _, sub := range subs {
		if err := billing.Check(sub); err != nil {
			errs = append(errs, err)
			continue
		}
		switch sub.DueDay {
		case todayDay:
			out.Today = append(out.Today, sub)
		case tomorrowDay:
			out.Tomorrow = append(out.Tomorrow, sub)
		default:
			out.RestOfWindow = append(out.RestOfWindow, sub)
		}
	}
	return out, errors.Join(errs...)
}
