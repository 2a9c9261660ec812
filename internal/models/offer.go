package models

import "github.com/shopspring/decimal"

// Offer предложение, которое можно подписать вместо текущей подписки.
type Offer struct {
	ID       int64           `json:"id"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	Category Category        `json:"category"`
	Company  Company         `json:"company"`
	URL      string          `json:"url,omitempty"`
}

// OfferQuery параметры поиска похожих предложений.
// Предложение подходит, если совпадает категория или компания каталога
// либо его название содержит Title. MaxPrice, если задана, ограничивает цену сверху (строго).
type OfferQuery struct {
	Title    string
	Category Category
	Company  Company
	MaxPrice decimal.NullDecimal
	Limit    int
}
