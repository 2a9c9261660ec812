package calendar

import (
	"fmt"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// Window упорядоченная непрерывная последовательность календарных дней.
type Window []time.Time

// Range строит окно от from до to включительно.
func Range(from, to time.Time) (Window, error) {
	const op = "calendar.Range"
	from, to = Day(from), Day(to)
	if to.Before(from) {
		return nil, fmt.Errorf("%s: %w: %s is before %s", op, ErrEmptyWindow, Format(to), Format(from))
	}

	var w Window
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		w = append(w, d)
	}
	return w, nil
}

// Single окно из одного дня.
func Single(t time.Time) Window {
	return Window{Day(t)}
}

// MonthOf окно всех дней месяца, в котором лежит t.
func MonthOf(t time.Time) Window {
	y, m, _ := t.Date()
	n := DaysIn(y, m)
	w := make(Window, 0, n)
	for d := 1; d <= n; d++ {
		w = append(w, Date(y, m, d))
	}
	return w
}

// WeekOf окно из семи дней недели, содержащей t. Неделя начинается с weekStart.
func WeekOf(t time.Time, weekStart time.Weekday) Window {
	day := Day(t)
	shift := (int(day.Weekday()) - int(weekStart) + 7) % 7
	first := day.AddDate(0, 0, -shift)
	w := make(Window, 0, 7)
	for i := range 7 {
		w = append(w, first.AddDate(0, 0, i))
	}
	return w
}

// ParseWindow разбирает окно из списка ISO-дат.
// Даты должны идти по возрастанию без пропусков и повторов.
func ParseWindow(dates []string) (Window, error) {
	const op = "calendar.ParseWindow"
	if len(dates) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyWindow)
	}

	w := make(Window, 0, len(dates))
	for i, s := range dates {
		d, err := ParseDay(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if i > 0 && !w[i-1].AddDate(0, 0, 1).Equal(d) {
			return nil, fmt.Errorf("%s: %w: %s follows %s", op, ErrNotContiguous, s, Format(w[i-1]))
		}
		w = append(w, d)
	}
	return w, nil
}

// Limit проверяет, что окно не длиннее maxDays дней. maxDays <= 0 снимает ограничение.
func (w Window) Limit(maxDays int) error {
	return CheckLength(len(w), maxDays)
}

// CheckLength проверяет длину окна в днях до его построения.
// maxDays <= 0 снимает ограничение.
func CheckLength(days, maxDays int) error {
	if maxDays > 0 && days > maxDays {
		return fmt.Errorf("%w: %d days, max %d", ErrWindowTooLong, days, maxDays)
	}
	return nil
}

// Span число дней от from до to включительно, 0 если to раньше from.
// Считается по Unix-секундам: time.Duration переполняется на диапазонах длиннее 292 лет.
func Span(from, to time.Time) int {
	from, to = Day(from), Day(to)
	if to.Before(from) {
		return 0
	}
	return int((to.Unix()-from.Unix())/secondsPerDay) + 1
}

// First первый день окна.
func (w Window) First() time.Time {
	if len(w) == 0 {
		return time.Time{}
	}
	return w[0]
}

// Last последний день окна.
func (w Window) Last() time.Time {
	if len(w) == 0 {
		return time.Time{}
	}
	return w[len(w)-1]
}

// Contains сообщает, входит ли день t в окно.
func (w Window) Contains(t time.Time) bool {
	if len(w) == 0 {
		return false
	}
	d := Day(t)
	return !d.Before(w.First()) && !d.After(w.Last())
}

// Keys возвращает ISO-ключи всех дней окна в порядке окна.
func (w Window) Keys() []string {
	keys := make([]string, 0, len(w))
	for _, d := range w {
		keys = append(keys, d.Format(Layout))
	}
	return keys
}
