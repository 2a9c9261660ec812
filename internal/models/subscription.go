// Package models содержит доменные структуры, описывающие подписку,
// правило списания и ссылки на категорию и компанию, а также типы
// для приёма данных из JSON-запросов.
package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout формат календарной даты в JSON.
const DateLayout = "2006-01-02"

// DueType тип периодичности списания.
type DueType string

const (
	// DueMonthly ежемесячное списание в день DueDay.
	DueMonthly DueType = "monthly"
	// DueYearly ежегодное списание в день DueDay месяца StartDatetime.
	DueYearly DueType = "yearly"
)

// Valid сообщает, входит ли тип в известный набор.
func (t DueType) Valid() bool {
	return t == DueMonthly || t == DueYearly
}

// BillingRule правило, по которому подписка выставляет счёт.
// StartDatetime и EndDatetime хранятся как календарные дни (полночь UTC),
// EndDatetime == nil означает бессрочную подписку.
type BillingRule struct {
	DueType       DueType    `json:"due_type"`
	DueDay        int        `json:"due_day"`
	StartDatetime time.Time  `json:"start_datetime"`
	EndDatetime   *time.Time `json:"end_datetime,omitempty"`
}

// Subscription подписка пользователя.
// Price может отсутствовать (Valid == false), в суммах такая цена считается нулём.
type Subscription struct {
	ID     int64               `json:"id"`
	UserID string              `json:"user_id"`
	Title  string              `json:"title"`
	Price  decimal.NullDecimal `json:"price"`
	BillingRule
	Category Category `json:"category"`
	Company  Company  `json:"company"`
}

// MarshalJSON кодирует start_datetime и end_datetime как YYYY-MM-DD.
func (s Subscription) MarshalJSON() ([]byte, error) {
	type plain Subscription
	out := struct {
		plain
		StartDatetime string  `json:"start_datetime"`
		EndDatetime   *string `json:"end_datetime,omitempty"`
	}{
		plain:         plain(s),
		StartDatetime: s.StartDatetime.Format(DateLayout),
	}
	if s.EndDatetime != nil {
		end := s.EndDatetime.Format(DateLayout)
		out.EndDatetime = &end
	}
	return json.Marshal(out)
}

// UnmarshalJSON читает подписку в формате MarshalJSON.
func (s *Subscription) UnmarshalJSON(data []byte) error {
	type plain Subscription
	var in struct {
		plain
		StartDatetime string  `json:"start_datetime"`
		EndDatetime   *string `json:"end_datetime,omitempty"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	sub := Subscription(in.plain)
	if in.StartDatetime != "" {
		start, err := time.Parse(DateLayout, in.StartDatetime)
		if err != nil {
			return fmt.Errorf("start_datetime: %w", err)
		}
		sub.StartDatetime = start
	}
	if in.EndDatetime != nil {
		end, err := time.Parse(DateLayout, *in.EndDatetime)
		if err != nil {
			return fmt.Errorf("end_datetime: %w", err)
		}
		sub.EndDatetime = &end
	}
	*s = sub
	return nil
}

// Occurrence списание подписки в конкретный день. Не хранится, вычисляется по запросу.
type Occurrence struct {
	Date         time.Time
	Subscription Subscription
}

// SubscriptionRequest используется для приёма данных из JSON-запроса
// до нормализации в Subscription. Даты и цена приходят строками,
// чтобы их можно было проверить и разобрать вручную.
type SubscriptionRequest struct {
	Title         string `json:"title" validate:"required"`                                   // Название подписки
	Price         string `json:"price,omitempty" validate:"omitempty,numeric"`                // Цена, например "9.99"
	DueType       string `json:"due_type" validate:"required,oneof=monthly yearly"`           // monthly или yearly
	DueDate       string `json:"due_date" validate:"required,datetime=2006-01-02"`            // Дата списания в формате YYYY-MM-DD
	EndDate       string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"` // Дата окончания в формате YYYY-MM-DD
	CategoryID    *int64 `json:"category_id,omitempty"`
	CompanyID     *int64 `json:"company_id,omitempty"`
	CustomCompany string `json:"custom_company,omitempty"` // Название компании, если её нет в каталоге
}

// CalendarRequest явный список дней окна календаря.
type CalendarRequest struct {
	Dates []string `json:"dates" validate:"required,min=1,dive,datetime=2006-01-02"`
	Today string   `json:"today,omitempty" validate:"omitempty,datetime=2006-01-02"`
}
