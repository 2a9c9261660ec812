package billing

import (
	"errors"
	"iter"
	"time"

	"github.com/magabrotheeeer/subscription-calendar/internal/lib/calendar"
	"github.com/magabrotheeeer/subscription-calendar/internal/models"
)

// ValidateRule проверяет структурную корректность сохранённого правила.
func ValidateRule(rule models.BillingRule) error {
	return checkRule(0, rule)
}

// Check проверяет правило подписки и помечает ошибку её идентификатором.
func Check(sub models.Subscription) error {
	return checkRule(sub.ID, sub.BillingRule)
}

func checkRule(id int64, rule models.BillingRule) error {
	switch {
	case !rule.DueType.Valid():
		return &MalformedRuleError{SubscriptionID: id, Field: "due_type", Reason: "is not monthly or yearly: " + string(rule.DueType)}
	case rule.DueDay < 1 || rule.DueDay > 31:
		return &MalformedRuleError{SubscriptionID: id, Field: "due_day", Reason: "is out of range 1..31"}
	case rule.StartDatetime.IsZero():
		return &MalformedRuleError{SubscriptionID: id, Field: "start_datetime", Reason: "is missing"}
	}
	return nil
}

// OccursOn сообщает, выставляется ли счёт по правилу в день date.
// Время суток игнорируется. Для некорректного правила возвращает *MalformedRuleError.
func OccursOn(rule models.BillingRule, date time.Time) (bool, error) {
	if err := ValidateRule(rule); err != nil {
		return false, err
	}
	return occursOn(rule, calendar.Day(date)), nil
}

// occursOn ожидает проверенное правило и нормализованный день.
func occursOn(rule models.BillingRule, day time.Time) bool {
	start := calendar.Day(rule.StartDatetime)
	if day.Before(start) {
		return false
	}
	if rule.EndDatetime != nil && day.After(calendar.Day(*rule.EndDatetime)) {
		return false
	}
	// Без подгонки к концу месяца: день 31 не срабатывает в 30-дневных месяцах.
	if day.Day() != rule.DueDay {
		return false
	}
	if rule.DueType == models.DueYearly && day.Month() != start.Month() {
		return false
	}
	return true
}

// Occurrences возвращает ленивую последовательность дней окна, в которые
// срабатывает правило. Последовательность можно обходить повторно.
func Occurrences(rule models.BillingRule, window calendar.Window) (iter.Seq[time.Time], error) {
	if err := ValidateRule(rule); err != nil {
		return nil, err
	}
	return func(yield func(time.Time) bool) {
		for _, d := range window {
			day := calendar.Day(d)
			if occursOn(rule, day) && !yield(day) {
				return
			}
		}
	}, nil
}

// OccurrencesIn возвращает дни окна по возрастанию, в которые срабатывает правило.
func OccurrencesIn(rule models.BillingRule, window calendar.Window) ([]time.Time, error) {
	seq, err := Occurrences(rule, window)
	if err != nil {
		return nil, err
	}
	days := make([]time.Time, 0)
	for d := range seq {
		days = append(days, d)
	}
	return days, nil
}

// SubscriptionsDueOn отбирает подписки, у которых есть списание в день date,
// сохраняя порядок входа. Подписки с некорректным правилом не попадают в результат,
// а их ошибки возвращаются вместе через errors.Join: остальные подписки
// при этом всё равно проверяются.
func SubscriptionsDueOn(subs []models.Subscription, date time.Time) ([]models.Subscription, error) {
	day := calendar.Day(date)
	due := make([]models.Subscription, 0)
	var errs []error
	for _, sub := range subs {
		if err := Check(sub); err != nil {
			errs = append(errs, err)
			continue
		}
		if occursOn(sub.BillingRule, day) {
			due = append(due, sub)
		}
	}
	return due, errors.Join(errs...)
}

// MalformedRules извлекает все *MalformedRuleError из ошибки, в том числе из errors.Join.
func MalformedRules(err error) []*MalformedRuleError {
	if err == nil {
		return nil
	}
	var out []*MalformedRuleError
	var walk func(error)
	walk = func(e error) {
		if mr, ok := e.(*MalformedRuleError); ok {
			out = append(out, mr)
			return
		}
		switch u := e.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			if inner := u.Unwrap(); inner != nil {
				walk(inner)
			}
		}
	}
	walk(err)
	return out
}
