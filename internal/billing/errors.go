// Package billing реализует правила списания подписок: нормализацию
// пользовательского ввода в BillingRule и вычисление дней, в которые
// правило срабатывает.
package billing

import "fmt"

// ValidationError ошибка пользовательского ввода правила или подписки.
// Показывается пользователю как есть, повторять запрос бессмысленно.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// MalformedRuleError сохранённое правило не проходит структурную проверку
// (день вне 1..31, неизвестный тип, нет даты начала). Это нарушение целостности
// данных: подписка исключается из расчёта только вместе с этой ошибкой.
type MalformedRuleError struct {
	SubscriptionID int64
	Field          string
	Reason         string
}

func (e *MalformedRuleError) Error() string {
	return fmt.Sprintf("subscription %d: malformed billing rule: %s %s", e.SubscriptionID, e.Field, e.Reason)
}
