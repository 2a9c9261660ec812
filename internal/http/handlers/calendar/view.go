package calendar

import (
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/subscription-calendar/internal/aggregation"
	cal "github.com/magabrotheeeer/subscription-calendar/internal/lib/calendar"
	"github.com/magabrotheeeer/subscription-calendar/internal/models"
)

// view JSON-представление сводки: дни как ключи YYYY-MM-DD, суммы как десятичные строки.
type view struct {
	From          string                               `json:"from"`
	To            string                               `json:"to"`
	Today         string                               `json:"today"`
	TodayTotal    decimal.Decimal                      `json:"today_total"`
	TomorrowTotal decimal.Decimal                      `json:"tomorrow_total"`
	MonthTotal    decimal.Decimal                      `json:"month_total"`
	WindowTotal   decimal.Decimal                      `json:"window_total"`
	Days          []dayView                            `json:"days"`
	Categories    map[string]aggregation.CategoryTotal `json:"categories"`
	Relative      aggregation.RelativeDays             `json:"relative"`
	Partial       bool                                 `json:"partial"`
	Excluded      []aggregation.Exclusion              `json:"excluded"`
}

type dayView struct {
	Date          string                `json:"date"`
	Total         decimal.Decimal       `json:"total"`
	Subscriptions []models.Subscription `json:"subscriptions"`
}

func newView(s aggregation.Summary) view {
	days := make([]dayView, 0, len(s.Buckets))
	for _, b := range s.Buckets {
		subs := b.Subscriptions
		if subs == nil {
			subs = []models.Subscription{}
		}
		days = append(days, dayView{
			Date:          cal.Format(b.Date),
			Total:         aggregation.TotalFor(subs),
			Subscriptions: subs,
		})
	}

	excluded := s.Excluded
	if excluded == nil {
		excluded = []aggregation.Exclusion{}
	}

	return view{
		From:          cal.Format(s.Window.First()),
		To:            cal.Format(s.Window.Last()),
		Today:         cal.Format(s.Today),
		TodayTotal:    s.TodayTotal,
		TomorrowTotal: s.TomorrowTotal,
		MonthTotal:    s.MonthTotal,
		WindowTotal:   s.WindowTotal,
		Days:          days,
		Categories:    s.Categories,
		Relative:      s.Relative,
		Partial:       s.Partial(),
		Excluded:      excluded,
	}
}
