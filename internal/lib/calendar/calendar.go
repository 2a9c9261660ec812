// Package calendar содержит функции для работы с календарными днями
// без учёта времени суток: нормализацию дат, разбор ISO-дат и построение
// окон дат (день, неделя, месяц, произвольный диапазон).
package calendar

import (
	"errors"
	"fmt"
	"time"
)

// Layout формат календарной даты YYYY-MM-DD.
const Layout = "2006-01-02"

var (
	// ErrEmptyWindow возвращается, если окно не содержит ни одного дня.
	ErrEmptyWindow = errors.New("date window is empty")
	// ErrNotContiguous возвращается, если даты окна идут не подряд.
	ErrNotContiguous = errors.New("date window is not contiguous")
	// ErrWindowTooLong возвращается, если окно длиннее допустимого.
	ErrWindowTooLong = errors.New("date window is too long")
)

// Day приводит момент времени к полуночи того же календарного дня.
// Календарные поля берутся в зоне t, результат всегда в UTC,
// поэтому даты можно сравнивать через Equal/Before/After и использовать как ключи.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date строит календарный день по году, месяцу и числу.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDay разбирает дату в формате YYYY-MM-DD.
func ParseDay(s string) (time.Time, error) {
	const op = "calendar.ParseDay"
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// Format возвращает ключ дня в формате YYYY-MM-DD.
func Format(t time.Time) string {
	return Day(t).Format(Layout)
}

// DaysIn возвращает количество дней в месяце.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Tomorrow возвращает следующий календарный день.
func Tomorrow(t time.Time) time.Time {
	return Day(t).AddDate(0, 0, 1)
}
