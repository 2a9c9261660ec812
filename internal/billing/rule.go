package billing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/subscription-calendar/internal/lib/calendar"
	"github.com/magabrotheeeer/subscription-calendar/internal/models"
)

// NormalizeRule строит BillingRule из даты, в которую пользователь платит.
//
// DueDay берётся из числа referenceDate без поправок на длину месяца:
// правило с днём 31 хранится как есть и не срабатывает в коротких месяцах.
// referenceDate становится датой начала (включительно), для годового правила
// она же задаёт месяц списания.
func NormalizeRule(dueType models.DueType, referenceDate time.Time, endDate *time.Time) (models.BillingRule, error) {
	if !dueType.Valid() {
		return models.BillingRule{}, invalid("due_type", "must be monthly or yearly")
	}
	if referenceDate.IsZero() {
		return models.BillingRule{}, invalid("due_date", "is required")
	}

	start := calendar.Day(referenceDate)
	rule := models.BillingRule{
		DueType:       dueType,
		DueDay:        start.Day(),
		StartDatetime: start,
	}

	if endDate != nil {
		end := calendar.Day(*endDate)
		if end.Before(start) {
			return models.BillingRule{}, invalid("end_date", "must not precede due_date")
		}
		rule.EndDatetime = &end
	}
	return rule, nil
}

// ParsePrice разбирает цену. Пустая строка означает отсутствие цены.
func ParsePrice(s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, invalid("price", "must be a number")
	}
	if d.IsNegative() {
		return decimal.NullDecimal{}, invalid("price", "must not be negative")
	}
	return decimal.NewNullDecimal(d), nil
}

// NewSubscription проверяет запрос и собирает из него подписку пользователя userID.
// Названия категории и компании каталога заполняет хранилище при чтении.
func NewSubscription(userID string, req models.SubscriptionRequest) (models.Subscription, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return models.Subscription{}, invalid("title", "must not be empty")
	}

	price, err := ParsePrice(req.Price)
	if err != nil {
		return models.Subscription{}, err
	}

	dueDate, err := calendar.ParseDay(req.DueDate)
	if err != nil {
		return models.Subscription{}, invalid("due_date", "must be a date in format YYYY-MM-DD")
	}

	var endDate *time.Time
	if req.EndDate != "" {
		end, err := calendar.ParseDay(req.EndDate)
		if err != nil {
			return models.Subscription{}, invalid("end_date", "must be a date in format YYYY-MM-DD")
		}
		endDate = &end
	}

	rule, err := NormalizeRule(models.DueType(req.DueType), dueDate, endDate)
	if err != nil {
		return models.Subscription{}, err
	}

	company, err := companyFromRequest(req)
	if err != nil {
		return models.Subscription{}, err
	}

	category := models.NoCategory()
	if req.CategoryID != nil {
		category = models.HasCategory(*req.CategoryID, "")
	}

	return models.Subscription{
		UserID:      userID,
		Title:       title,
		Price:       price,
		BillingRule: rule,
		Category:    category,
		Company:     company,
	}, nil
}

func companyFromRequest(req models.SubscriptionRequest) (models.Company, error) {
	custom := strings.TrimSpace(req.CustomCompany)
	switch {
	case req.CompanyID != nil && custom != "":
		return models.Company{}, invalid("company", "company_id and custom_company are mutually exclusive")
	case req.CompanyID != nil:
		return models.FormalCompany(*req.CompanyID, ""), nil
	case custom != "":
		return models.CustomCompanyName(custom), nil
	default:
		return models.NoCompany(), nil
	}
}
