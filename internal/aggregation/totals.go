package aggregation

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/subscription-calendar/internal/models"
)

// OtherKey ключ корзины для подписок без категории.
const OtherKey = "other"

// OtherCategory категория-заглушка для подписок без категории.
var OtherCategory = models.Category{Kind: models.CategoryNone, Name: "Other"}

// CategoryTotal сумма по одной категории.
type CategoryTotal struct {
	Category   models.Category `json:"category"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Count      int             `json:"count"`
}

// TotalFor сумма цен подписок. Отсутствующая цена считается нулём, пустой список даёт ноль.
func TotalFor(subs []models.Subscription) decimal.Decimal {
	total := decimal.Zero
	for _, sub := range subs {
		if sub.Price.Valid {
			total = total.Add(sub.Price.Decimal)
		}
	}
	return total
}

// CategoryKey ключ корзины категории.
func CategoryKey(c models.Category) string {
	if !c.Assigned() {
		return OtherKey
	}
	return "category:" + strconv.FormatInt(c.ID, 10)
}

// Categorize группирует подписки по категории и суммирует цены.
// Подписки без категории попадают в корзину OtherKey, даже если у них есть
// компания: название компании категорию не заменяет.
func Categorize(subs []models.Subscription) map[string]CategoryTotal {
	out := make(map[string]CategoryTotal)
	for _, sub := range subs {
		key := CategoryKey(sub.Category)
		ct, ok := out[key]
		if !ok {
			ct = CategoryTotal{Category: sub.Category, TotalPrice: decimal.Zero}
			if key == OtherKey {
				ct.Category = OtherCategory
			}
		}
		if sub.Price.Valid {
			ct.TotalPrice = ct.TotalPrice.Add(sub.Price.Decimal)
		}
		ct.Count++
		out[key] = ct
	}
	return out
}
