// Package sl содержит вспомогательные функции для формирования полей лога slog.
package sl

import (
	"log/slog"
	"time"

	"github.com/magabrotheeeer/subscription-calendar/internal/lib/calendar"
)

// Err возвращает slog.Attr с ключом "error" и значением текста ошибки.
//
// Пример:
//
//	log.Error("failed to do something", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Day возвращает атрибут с календарным днем в формате YYYY-MM-DD.
func Day(key string, t time.Time) slog.Attr {
	return slog.String(key, calendar.Format(t))
}
